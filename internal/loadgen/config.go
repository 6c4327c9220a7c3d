// Package loadgen drives a running juicerank service with synthetic beatmaps
// and checks that the leaderboard it builds is consistent.
package loadgen

import "time"

// Config holds the load test settings.
type Config struct {
	BaseURL    string        // service base URL
	Maps       int           // distinct maps to generate
	Objects    int           // hit objects per map
	Duplicates float64       // share of maps submitted a second time, in [0,1]
	TopN       int           // leaderboard rows to fetch
	Workers    int           // concurrent submitters
	Timeout    time.Duration // per request
	Wait       time.Duration // how long to wait for jobs to finish
	Seed       uint64        // generator seed; equal seeds give equal maps
	OutputFile string        // optional JSON dump of the generated maps
	Verbose    bool
}

// Stats holds the outcome of a run.
type Stats struct {
	MapsGenerated int
	Submitted     int
	Accepted      int
	Duplicate     int
	Refused       int
	Failed        int
	Rated         int
	RateFailed    int
	Pending       int
	Ranked        int
	StartTime     time.Time
	Duration      time.Duration
}

// submission is the service answer to POST /beatmaps.
type submission struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	JobID     string `json:"job_id"`
	BeatmapID string `json:"beatmap_id"`
	Checksum  string `json:"checksum"`
}

// submit outcomes
const (
	outcomeAccepted  = "accepted"
	outcomeDuplicate = "duplicate"
	outcomeRefused   = "refused"
	outcomeFailed    = "failed"
)
