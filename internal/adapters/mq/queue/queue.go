// Package queue holds rating jobs between submission and the worker pool.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/juicerank/internal/domain/model"
	"github.com/okian/juicerank/pkg/metrics"
)

const defaultCapacity = 10_000

// Queue is a bounded, non-blocking job queue.
type Queue interface {
	// Enqueue adds a job without blocking. It returns ErrQueueFull when the
	// queue is at capacity and ErrQueueClosed after Close.
	Enqueue(ctx context.Context, j model.Job) error

	// Dequeue returns a channel of jobs that is closed once the queue is
	// closed and drained, or ctx is done.
	Dequeue(ctx context.Context) <-chan model.Job

	Len(ctx context.Context) int
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue over a buffered channel.
type InMemoryQueue struct {
	jobs     chan model.Job
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a queue holding at most WithCapacity jobs.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan model.Job, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	q.observe()
	return q
}

func (q *InMemoryQueue) Enqueue(ctx context.Context, j model.Job) error { //nolint:gocritic // jobs travel by value
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.refuse("closed")
		return ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		q.refuse("context_cancelled")
		return err
	}

	select {
	case q.jobs <- j:
		metrics.RecordQueueEnqueue()
		q.observe()
		return nil
	default:
		q.refuse("queue_full")
		return ErrQueueFull
	}
}

func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan model.Job {
	out := make(chan model.Job)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case j, ok := <-q.jobs:
				if !ok {
					return
				}
				select {
				case out <- j:
					metrics.RecordQueueDequeue()
					metrics.RecordQueueWait(float64(time.Since(j.Submitted).Milliseconds()))
					q.observe()
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.jobs)
}

// Close stops accepting jobs. Jobs already queued are still delivered.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) refuse(reason string) {
	metrics.RecordQueueEnqueueError()
	metrics.RecordErrorByComponent("queue", reason)
}

func (q *InMemoryQueue) observe() {
	size := len(q.jobs)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
