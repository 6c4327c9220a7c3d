// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/okian/juicerank/internal/domain/beatmap"
	"github.com/okian/juicerank/internal/domain/difficulty"
)

// Job is one beatmap waiting to be rated.
type Job struct {
	ID        string           // uuid handed back to the submitter
	BeatmapID string           // caller supplied or derived from the checksum
	Checksum  string           // content hash used for dedupe
	Beatmap   *beatmap.Beatmap // validated, read-only
	Submitted time.Time
}

// NewJob wraps a validated beatmap. An empty b.ID is replaced by the first
// 16 hex characters of the checksum.
func NewJob(b *beatmap.Beatmap, checksum string) Job {
	id := b.ID
	if id == "" {
		id = checksum
		if len(id) > 16 {
			id = id[:16]
		}
	}
	return Job{
		ID:        uuid.NewString(),
		BeatmapID: id,
		Checksum:  checksum,
		Beatmap:   b,
		Submitted: time.Now(),
	}
}

// Rating is a stored calculation result.
type Rating struct {
	BeatmapID string    `json:"beatmap_id"`
	Checksum  string    `json:"checksum"`
	Title     string    `json:"title,omitempty"`
	Artist    string    `json:"artist,omitempty"`
	Version   string    `json:"version,omitempty"`
	Stars     float64   `json:"stars"`
	Movement  float64   `json:"movement"`
	Density   float64   `json:"density"`
	MaxCombo  int       `json:"max_combo"`
	Objects   int       `json:"objects"`
	RatedAt   time.Time `json:"rated_at"`
}

// NewRating builds the stored form of a finished job.
func NewRating(j *Job, attrs *difficulty.Attributes) Rating {
	r := Rating{
		BeatmapID: j.BeatmapID,
		Checksum:  j.Checksum,
		Stars:     attrs.Stars,
		Movement:  attrs.Movement,
		Density:   attrs.Density,
		MaxCombo:  attrs.MaxCombo,
		Objects:   attrs.Objects(),
		RatedAt:   time.Now().UTC(),
	}
	if j.Beatmap != nil {
		r.Title = j.Beatmap.Metadata.Title
		r.Artist = j.Beatmap.Metadata.Artist
		r.Version = j.Beatmap.Metadata.Version
	}
	return r
}
