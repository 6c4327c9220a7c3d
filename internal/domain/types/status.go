package types

// Job states.
const (
	JobQueued = "queued"
	JobDone   = "done"
	JobFailed = "failed"
)

// JobStatus is what GET /jobs/{id} reports.
type JobStatus struct {
	ID        string  `json:"id"`
	BeatmapID string  `json:"beatmap_id"`
	State     string  `json:"state"`
	Stars     float64 `json:"stars,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// Stats is the service summary served on /stats.
type Stats struct {
	Started       bool   `json:"started"`
	Workers       int    `json:"workers"`
	QueueLength   int    `json:"queue_length"`
	QueueCapacity int    `json:"queue_capacity"`
	DedupeSize    int64  `json:"dedupe_size"`
	RatedBeatmaps int    `json:"rated_beatmaps"`
	Store         string `json:"store"`
	JobsDone      int64  `json:"jobs_done"`
	JobsFailed    int64  `json:"jobs_failed"`
}
