package repository

import "errors"

// Sentinel errors for rating stores.
var (
	ErrNotFound      = errors.New("beatmap not rated")
	ErrInvalidLimit  = errors.New("invalid leaderboard limit")
	ErrInvalidRating = errors.New("invalid rating")
)
