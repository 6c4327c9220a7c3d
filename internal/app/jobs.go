package service

import (
	"sync"

	"github.com/okian/juicerank/internal/domain/types"
)

// jobBook remembers the latest state of the most recent jobs. The oldest
// job is forgotten once more than size jobs have been queued.
type jobBook struct {
	mu     sync.RWMutex
	states map[string]types.JobStatus
	order  []string
	next   int
	done   int64
	failed int64
}

func newJobBook(size int) *jobBook {
	return &jobBook{
		states: make(map[string]types.JobStatus, size),
		order:  make([]string, size),
	}
}

func (b *jobBook) queued(id, beatmapID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if old := b.order[b.next]; old != "" {
		delete(b.states, old)
	}
	b.order[b.next] = id
	b.next = (b.next + 1) % len(b.order)
	b.states[id] = types.JobStatus{ID: id, BeatmapID: beatmapID, State: types.JobQueued}
}

// forget drops a job that never made it into the queue.
func (b *jobBook) forget(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.states, id)
}

func (b *jobBook) finish(id string, stars float64, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.states[id]
	if err != nil {
		b.failed++
	} else {
		b.done++
	}
	if !ok {
		return
	}
	if err != nil {
		st.State = types.JobFailed
		st.Error = err.Error()
	} else {
		st.State = types.JobDone
		st.Stars = stars
	}
	b.states[id] = st
}

func (b *jobBook) get(id string) (types.JobStatus, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	st, ok := b.states[id]
	return st, ok
}

func (b *jobBook) counts() (done, failed int64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.done, b.failed
}
