// Package service wires the queue, the workers and the rating store into
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/juicerank/internal/adapters/mq/queue"
	"github.com/okian/juicerank/internal/adapters/mq/worker"
	"github.com/okian/juicerank/internal/adapters/repository"
	"github.com/okian/juicerank/internal/config"
	"github.com/okian/juicerank/internal/domain/dedupe"
	"github.com/okian/juicerank/internal/domain/difficulty"
	"github.com/okian/juicerank/internal/domain/model"
	"github.com/okian/juicerank/internal/domain/types"
	"github.com/okian/juicerank/pkg/logger"
	"github.com/okian/juicerank/pkg/metrics"
)

// Service implements the API dependencies for the rating system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	rater   worker.Rater
	pool    *worker.Pool
	jobs    *jobBook

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	jobHistory  int
	jobTimeout  time.Duration
	storeName   string
	calcOpts    []difficulty.Option

	// cancel stops the workers once Stop has drained or given up
	cancel context.CancelFunc

	started bool
	logger  logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   10_000,
		dedupeSize:  50_000,
		jobHistory:  10_000,
		jobTimeout:  30 * time.Second,
		storeName:   config.StoreTreap,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the components and launches the workers. The workers outlive
// ctx; they run until Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting rating service...")

	if s.store == nil {
		s.store = repository.NewTreapStore()
		s.storeName = config.StoreTreap
	}
	if s.rater == nil {
		s.rater = difficulty.NewCalculator(s.calcOpts...)
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.jobs = newJobBook(s.jobHistory)

	s.pool = worker.NewPool(s.workerCount, s.queue, s.rater, s.store,
		worker.WithLogger(s.logger),
		worker.WithJobTimeout(s.jobTimeout),
		worker.WithResultHook(s.onResult),
	)
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "rating service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("store", s.storeName),
	)
	return nil
}

// Stop drains the queue within ctx and closes the store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping rating service...")

	var firstErr error
	if err := s.pool.Shutdown(ctx); err != nil {
		firstErr = err
	}
	s.cancel()
	if err := s.store.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close store: %w", err)
	}

	s.started = false
	s.logger.Info(ctx, "rating service stopped")
	return firstErr
}

func (s *Service) onResult(j *model.Job, r *model.Rating, err error) {
	s.jobs.finish(j.ID, r.Stars, err)
	if err != nil {
		// the map can be submitted again
		s.deduper.Unrecord(context.Background(), j.Checksum)
	}
}

func (s *Service) running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// SeenAndRecord reports whether checksum was already submitted and records
// it if not.
func (s *Service) SeenAndRecord(ctx context.Context, checksum string) bool {
	if !s.running() {
		return false
	}
	return s.deduper.SeenAndRecord(ctx, checksum)
}

// Unrecord forgets a checksum so the map can be submitted again.
func (s *Service) Unrecord(ctx context.Context, checksum string) {
	if !s.running() {
		return
	}
	s.deduper.Unrecord(ctx, checksum)
}

// Size returns the number of remembered checksums.
func (s *Service) Size() int64 {
	if !s.running() {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue queues j for rating and starts tracking its state.
func (s *Service) Enqueue(ctx context.Context, j model.Job) error { //nolint:gocritic // jobs travel by value
	if !s.running() {
		return ErrNotStarted
	}
	s.jobs.queued(j.ID, j.BeatmapID)
	if err := s.queue.Enqueue(ctx, j); err != nil {
		s.jobs.forget(j.ID)
		return err
	}
	s.logger.Debug(ctx, "job queued",
		logger.String("job_id", j.ID),
		logger.String("beatmap_id", j.BeatmapID),
	)
	return nil
}

// TopN returns the top n leaderboard rows.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	if !s.running() {
		return nil, ErrNotStarted
	}
	return s.store.TopN(ctx, n)
}

// Rank returns the leaderboard row of a beatmap.
func (s *Service) Rank(ctx context.Context, beatmapID string) (types.Entry, error) {
	if !s.running() {
		return types.Entry{}, ErrNotStarted
	}
	return s.store.Rank(ctx, beatmapID)
}

// Rating returns the full stored rating of a beatmap.
func (s *Service) Rating(ctx context.Context, beatmapID string) (model.Rating, error) {
	if !s.running() {
		return model.Rating{}, ErrNotStarted
	}
	return s.store.Get(ctx, beatmapID)
}

// Job returns the state of a submitted job. States stay readable after Stop.
func (s *Service) Job(id string) (types.JobStatus, bool) {
	s.mu.RLock()
	jobs := s.jobs
	s.mu.RUnlock()
	if jobs == nil {
		return types.JobStatus{}, false
	}
	return jobs.get(id)
}

// Stats returns service statistics and refreshes the matching gauges.
func (s *Service) Stats(ctx context.Context) types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := types.Stats{
		Started:       s.started,
		Workers:       s.workerCount,
		QueueCapacity: s.queueSize,
		Store:         s.storeName,
	}
	if !s.started {
		return st
	}

	st.Workers = s.pool.Size()
	st.QueueLength = s.queue.Len(ctx)
	st.DedupeSize = s.deduper.Size()
	st.RatedBeatmaps = s.store.Count(ctx)
	st.JobsDone, st.JobsFailed = s.jobs.counts()

	metrics.UpdateQueueSize(st.QueueLength)
	metrics.UpdateRatedBeatmaps(st.RatedBeatmaps)
	return st
}
