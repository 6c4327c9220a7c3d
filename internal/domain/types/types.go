// Package types contains the read models served by the API.
package types

// Entry is one row of the leaderboard.
type Entry struct {
	Rank      int     `json:"rank"`
	BeatmapID string  `json:"beatmap_id"`
	Title     string  `json:"title,omitempty"`
	Stars     float64 `json:"stars"`
}

// Before reports whether a ranks ahead of b: higher stars first, then the
// smaller beatmap id.
func Before(aStars float64, aID string, bStars float64, bID string) bool {
	if aStars != bStars {
		return aStars > bStars
	}
	return aID < bID
}
