// Package repository stores ratings and ranks beatmaps by stars.
package repository

import (
	"context"

	"github.com/okian/juicerank/internal/domain/model"
	"github.com/okian/juicerank/internal/domain/types"
)

// Store holds one rating per beatmap. Ranks are 1-based positions in
// leaderboard order: stars descending, then beatmap id ascending.
type Store interface {
	// Upsert stores r, replacing any earlier rating of the same beatmap.
	Upsert(ctx context.Context, r model.Rating) error

	// Get returns the stored rating or ErrNotFound.
	Get(ctx context.Context, beatmapID string) (model.Rating, error)

	// Rank returns the leaderboard row of a beatmap or ErrNotFound.
	Rank(ctx context.Context, beatmapID string) (types.Entry, error)

	// TopN returns up to n rows from the top. n < 1 is ErrInvalidLimit.
	TopN(ctx context.Context, n int) ([]types.Entry, error)

	Count(ctx context.Context) int
	Close() error
}
