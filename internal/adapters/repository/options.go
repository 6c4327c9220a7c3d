package repository

import "math/rand/v2"

// Option configures a TreapStore.
type Option func(*TreapStore)

// WithRand sets the priority source, for reproducible tree shapes in tests.
func WithRand(r *rand.Rand) Option {
	return func(s *TreapStore) {
		if r != nil {
			s.rnd = r
		}
	}
}
