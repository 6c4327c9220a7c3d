// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - Errors returned from this package wrap ErrInvalidConfig or ErrLoadConfig.
package config

import (
	"context"
	"fmt"
	"runtime"

	"github.com/okian/juicerank/internal/domain/timing"
)

// Store backends.
const (
	StoreTreap  = "treap"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory calculation queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of calculation workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the beatmap checksum cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// Store selects the rating store: treap (in memory) or sqlite.
	Store string `koanf:"store"`

	// SQLitePath is the database file used by the sqlite store.
	SQLitePath string `koanf:"sqlite_path"`

	// DefaultBeatLength and DefaultSliderVelocity apply where no control
	// point governs a time.
	DefaultBeatLength     float64 `koanf:"default_beat_length"`
	DefaultSliderVelocity float64 `koanf:"default_slider_velocity"`

	// SectionLength is the strain section length in milliseconds.
	SectionLength float64 `koanf:"section_length"`

	// DecayWeight discounts each successively easier strain section.
	DecayWeight float64 `koanf:"decay_weight"`

	// LastTickAnchor lets the legacy last tick bound tiny droplet gaps.
	LastTickAnchor bool `koanf:"last_tick_anchor"`

	// GridAlignedSections ends strain sections on multiples of SectionLength
	// instead of counting from the first object.
	GridAlignedSections bool `koanf:"grid_aligned_sections"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		QueueSize:             10_000,
		WorkerCount:           runtime.NumCPU(),
		DedupeSize:            100_000,
		MaxLeaderboardLimit:   100,
		Store:                 StoreTreap,
		SQLitePath:            "juicerank.db",
		DefaultBeatLength:     timing.DefaultBeatLength,
		DefaultSliderVelocity: timing.DefaultSliderVelocity,
		SectionLength:         400,
		DecayWeight:           0.9,
	}
}

// Defaults returns the timeline fallbacks.
func (c *Config) Defaults() timing.Defaults {
	return timing.Defaults{
		BeatLength:     c.DefaultBeatLength,
		SliderVelocity: c.DefaultSliderVelocity,
	}
}

// Validate checks values that would make the service unusable.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.Store {
	case StoreTreap:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path must not be empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}
	if c.DefaultBeatLength <= 0 || c.DefaultSliderVelocity <= 0 {
		return fmt.Errorf("%w: default beat length and slider velocity must be positive", ErrInvalidConfig)
	}
	if c.SectionLength <= 0 {
		return fmt.Errorf("%w: section_length must be positive", ErrInvalidConfig)
	}
	if c.DecayWeight <= 0 || c.DecayWeight > 1 {
		return fmt.Errorf("%w: decay_weight must be in (0,1]", ErrInvalidConfig)
	}
	return nil
}
