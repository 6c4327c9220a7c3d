package worker

import (
	"time"

	"github.com/okian/juicerank/internal/domain/model"
	"github.com/okian/juicerank/pkg/logger"
)

// ResultHook observes every finished job. rating is the zero value when err
// is set.
type ResultHook func(j *model.Job, rating *model.Rating, err error)

// Option configures a Worker.
type Option func(*Worker)

// WithName sets the worker name used in logs.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets the parent logger; the worker name is appended.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithJobTimeout bounds a single calculation. Zero means no bound.
func WithJobTimeout(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.jobTimeout = d
		}
	}
}

// WithResultHook registers a callback run after each job.
func WithResultHook(h ResultHook) Option {
	return func(w *Worker) {
		w.hook = h
	}
}
