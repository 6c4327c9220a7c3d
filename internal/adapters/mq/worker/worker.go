// Package worker rates queued beatmaps and stores the results.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/juicerank/internal/domain/beatmap"
	"github.com/okian/juicerank/internal/domain/difficulty"
	"github.com/okian/juicerank/internal/domain/model"
	"github.com/okian/juicerank/pkg/logger"
	"github.com/okian/juicerank/pkg/metrics"
)

// Rater computes difficulty attributes. *difficulty.Calculator implements it.
type Rater interface {
	Calculate(ctx context.Context, b *beatmap.Beatmap) (difficulty.Attributes, error)
}

// Updater stores a rating.
type Updater interface {
	Upsert(ctx context.Context, r model.Rating) error
}

// Queue is where workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Job
}

// Worker rates jobs one at a time until its channel closes or it is stopped.
type Worker struct {
	queue   Queue
	rater   Rater
	updater Updater

	name       string
	jobTimeout time.Duration
	hook       ResultHook
	logger     logger.Logger

	stop chan struct{}
	done chan struct{}
}

// NewWorker creates a worker.
func NewWorker(q Queue, rater Rater, updater Updater, opts ...Option) *Worker {
	w := &Worker{
		queue:   q,
		rater:   rater,
		updater: updater,
		name:    "worker",
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get()
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run processes jobs until ctx is done, Stop is called or the queue closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, &j); err != nil {
				w.logger.Error(ctx, "job failed",
					logger.String("job_id", j.ID),
					logger.String("beatmap_id", j.BeatmapID),
					logger.Error(err),
				)
			}
		}
	}
}

// Stop makes Run return after the current job.
func (w *Worker) Stop() {
	select {
	case <-w.stop:
	default:
		close(w.stop)
	}
}

// Done is closed when Run has returned.
func (w *Worker) Done() <-chan struct{} { return w.done }

func (w *Worker) process(ctx context.Context, j *model.Job) (err error) {
	metrics.AddWorkerBusy(1)
	start := time.Now()
	var rating model.Rating
	defer func() {
		metrics.AddWorkerBusy(-1)
		if err != nil {
			metrics.RecordWorkerError()
			metrics.RecordCalculation("error")
		}
		if w.hook != nil {
			w.hook(j, &rating, err)
		}
	}()

	if j.Beatmap == nil {
		metrics.RecordErrorByComponent("worker", "empty_job")
		return fmt.Errorf("job %s: %w", j.ID, ErrEmptyJob)
	}

	calcCtx := ctx
	if w.jobTimeout > 0 {
		var cancel context.CancelFunc
		calcCtx, cancel = context.WithTimeout(ctx, w.jobTimeout)
		defer cancel()
	}

	attrs, err := w.rater.Calculate(calcCtx, j.Beatmap)
	metrics.RecordCalculationLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordErrorByComponent("worker", "calculation")
		return fmt.Errorf("rate %s: %w", j.BeatmapID, err)
	}
	recordAttributes(j.Beatmap, &attrs)

	r := model.NewRating(j, &attrs)
	if err := w.updater.Upsert(ctx, r); err != nil {
		metrics.RecordErrorByComponent("worker", "store")
		return fmt.Errorf("store %s: %w", j.BeatmapID, err)
	}
	rating = r
	metrics.RecordCalculation("ok")

	w.logger.Debug(ctx, "beatmap rated",
		logger.String("beatmap_id", j.BeatmapID),
		logger.Float64("stars", attrs.Stars),
		logger.Int("objects", attrs.Objects()),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

func recordAttributes(b *beatmap.Beatmap, a *difficulty.Attributes) {
	_, sliders, _ := b.Count()
	metrics.RecordSlidersDecomposed(sliders)
	metrics.RecordNestedObjects("fruit", a.Fruits)
	metrics.RecordNestedObjects("droplet", a.Droplets)
	metrics.RecordNestedObjects("tiny_droplet", a.TinyDroplets)
	metrics.RecordStars(a.Stars)
}

// Pool runs a fixed set of workers over one queue.
type Pool struct {
	workers []*Worker
	queue   Queue
	logger  logger.Logger
	start   sync.Once
}

// NewPool creates workerCount workers. workerCount < 1 means one per CPU.
// opts are applied to every worker.
func NewPool(workerCount int, q Queue, rater Rater, updater Updater, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*Worker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewWorker(q, rater, updater, wopts...)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start launches every worker once.
func (p *Pool) Start(ctx context.Context) {
	p.start.Do(func() {
		for _, w := range p.workers {
			go w.Run(ctx)
		}
	})
}

// Shutdown closes the queue and waits for workers to drain it. Workers still
// running when ctx is done are stopped after their current job.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "closing queue", logger.Error(err))
		}
	}

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.Done():
		case <-ctx.Done():
			timedOut = true
			w.Stop()
			p.logger.Warn(ctx, "worker did not drain in time", logger.Int("worker_id", i))
		}
	}
	if timedOut {
		return fmt.Errorf("pool shutdown: %w", ctx.Err())
	}
	return nil
}
