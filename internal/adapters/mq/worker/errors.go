package worker

import "errors"

// ErrEmptyJob is returned for a job without a beatmap.
var ErrEmptyJob = errors.New("job has no beatmap")
