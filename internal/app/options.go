package service

import (
	"time"

	"github.com/okian/juicerank/internal/adapters/mq/worker"
	"github.com/okian/juicerank/internal/adapters/repository"
	"github.com/okian/juicerank/internal/domain/difficulty"
	"github.com/okian/juicerank/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of calculation workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of waiting jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the checksum cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithJobHistory bounds how many job states GET /jobs/{id} remembers.
func WithJobHistory(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.jobHistory = n
		}
	}
}

// WithJobTimeout bounds a single calculation.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.jobTimeout = d
		}
	}
}

// WithStore replaces the default in-memory store. The service closes it on Stop.
func WithStore(store repository.Store, name string) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
			s.storeName = name
		}
	}
}

// WithRater replaces the calculator built from WithCalculatorOptions.
func WithRater(r worker.Rater) Option {
	return func(s *Service) {
		if r != nil {
			s.rater = r
		}
	}
}

// WithCalculatorOptions configures the default calculator.
func WithCalculatorOptions(opts ...difficulty.Option) Option {
	return func(s *Service) {
		s.calcOpts = append(s.calcOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
