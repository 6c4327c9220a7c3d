package repository

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/okian/juicerank/internal/domain/model"
	"github.com/okian/juicerank/internal/domain/types"
	"github.com/okian/juicerank/pkg/metrics"
)

// TreapStore is an in-memory Store. The treap is ordered by leaderboard
// position and every node knows its subtree size, so Rank and TopN are
// O(log n + k).
type TreapStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]model.Rating
	rnd  *rand.Rand
}

type node struct {
	id    string
	stars float64
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func (n *node) fix() {
	n.size = 1 + nsize(n.left) + nsize(n.right)
}

func (n *node) before(stars float64, id string) bool {
	return types.Before(n.stars, n.id, stars, id)
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	y.fix()
	x.fix()
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	x.fix()
	y.fix()
	return y
}

func insert(n, nn *node) *node {
	if n == nil {
		nn.size = 1
		return nn
	}
	if n.before(nn.stars, nn.id) {
		n.right = insert(n.right, nn)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	} else {
		n.left = insert(n.left, nn)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	}
	n.fix()
	return n
}

func remove(n *node, stars float64, id string) *node {
	if n == nil {
		return nil
	}
	switch {
	case n.id == id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = remove(n.right, stars, id)
		} else {
			n = rotateLeft(n)
			n.left = remove(n.left, stars, id)
		}
	case n.before(stars, id):
		n.right = remove(n.right, stars, id)
	default:
		n.left = remove(n.left, stars, id)
	}
	n.fix()
	return n
}

// position counts the nodes ranked ahead of (stars, id).
func position(n *node, stars float64, id string) int {
	pos := 0
	for n != nil {
		if n.before(stars, id) {
			pos += nsize(n.left) + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return pos
}

func collect(n *node, limit int, out *[]*node) {
	if n == nil || len(*out) >= limit {
		return
	}
	collect(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n)
		collect(n.right, limit, out)
	}
}

// NewTreapStore creates an empty store.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		byID: make(map[string]model.Rating),
		rnd:  rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec // tree balance only
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validRating(r *model.Rating) error {
	if r.BeatmapID == "" {
		return fmt.Errorf("%w: empty beatmap id", ErrInvalidRating)
	}
	if math.IsNaN(r.Stars) || math.IsInf(r.Stars, 0) {
		return fmt.Errorf("%w: stars %v", ErrInvalidRating, r.Stars)
	}
	return nil
}

func (s *TreapStore) Upsert(_ context.Context, r model.Rating) error { //nolint:gocritic // stored by value
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()
	if err := validRating(&r); err != nil {
		metrics.RecordErrorByComponent("repository", "invalid_rating")
		return err
	}

	s.mu.Lock()
	if old, ok := s.byID[r.BeatmapID]; ok {
		s.root = remove(s.root, old.Stars, old.BeatmapID)
	}
	s.byID[r.BeatmapID] = r
	s.root = insert(s.root, &node{id: r.BeatmapID, stars: r.Stars, prio: s.rnd.Uint64()})
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateRatedBeatmaps(count)
	return nil
}

func (s *TreapStore) Get(_ context.Context, beatmapID string) (model.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[beatmapID]
	if !ok {
		return model.Rating{}, ErrNotFound
	}
	return r, nil
}

func (s *TreapStore) Rank(_ context.Context, beatmapID string) (types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[beatmapID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return types.Entry{}, ErrNotFound
	}
	return types.Entry{
		Rank:      position(s.root, r.Stars, r.BeatmapID) + 1,
		BeatmapID: r.BeatmapID,
		Title:     r.Title,
		Stars:     r.Stars,
	}, nil
}

func (s *TreapStore) TopN(_ context.Context, n int) ([]types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	nodes := make([]*node, 0, min(n, len(s.byID)))
	collect(s.root, n, &nodes)

	out := make([]types.Entry, len(nodes))
	for i, nd := range nodes {
		out[i] = types.Entry{
			Rank:      i + 1,
			BeatmapID: nd.id,
			Title:     s.byID[nd.id].Title,
			Stars:     nd.stars,
		}
	}
	return out, nil
}

func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Close is a no-op; the store holds no resources.
func (s *TreapStore) Close() error { return nil }
