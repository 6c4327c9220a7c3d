// Package dedupe remembers which beatmap checksums were already submitted.
package dedupe

import (
	"context"
	"sync"
)

const defaultMaxSize = 50_000

// Deduper records seen checksums so a map is rated at most once.
type Deduper interface {
	// SeenAndRecord reports whether key was already recorded and records it
	// if not. The check and the insert are atomic.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so a later submission is accepted again. Used
	// when a recorded submission could not be queued.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

type slot struct {
	key string
	gen uint64
}

// ringDeduper forgets the oldest recording once maxSize keys were recorded.
// Each recording gets a generation so a slot left behind by Unrecord never
// evicts a newer recording of the same key.
type ringDeduper struct {
	mu      sync.Mutex
	seen    map[string]uint64
	ring    []slot
	next    int
	gen     uint64
	maxSize int
}

// NewInMemoryDeduper creates a deduper. See WithMaxSize for bounds.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &ringDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]uint64)
	if d.maxSize > 0 {
		d.ring = make([]slot, 0, d.maxSize)
	}
	return d
}

func (d *ringDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	d.gen++
	d.seen[key] = d.gen

	if d.maxSize <= 0 {
		return false
	}
	s := slot{key: key, gen: d.gen}
	if len(d.ring) < d.maxSize {
		d.ring = append(d.ring, s)
		return false
	}
	old := d.ring[d.next]
	if g, ok := d.seen[old.key]; ok && g == old.gen {
		delete(d.seen, old.key)
	}
	d.ring[d.next] = s
	d.next = (d.next + 1) % d.maxSize
	return false
}

func (d *ringDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	delete(d.seen, key)
	d.mu.Unlock()
}

func (d *ringDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
