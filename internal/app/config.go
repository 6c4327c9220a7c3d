package service

import (
	"context"
	"fmt"

	"github.com/okian/juicerank/internal/adapters/repository"
	"github.com/okian/juicerank/internal/config"
	"github.com/okian/juicerank/internal/domain/difficulty"
)

// OptionsFromConfig translates cfg into service options, opening the
// configured store.
func OptionsFromConfig(ctx context.Context, cfg *config.Config) ([]Option, error) {
	opts := []Option{
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.QueueSize),
		WithDedupeSize(cfg.DedupeSize),
		WithCalculatorOptions(CalculatorOptions(cfg)...),
	}

	switch cfg.Store {
	case config.StoreSQLite:
		store, err := repository.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		opts = append(opts, WithStore(store, config.StoreSQLite))
	default:
		opts = append(opts, WithStore(repository.NewTreapStore(), config.StoreTreap))
	}
	return opts, nil
}

// CalculatorOptions returns the difficulty settings held in cfg.
func CalculatorOptions(cfg *config.Config) []difficulty.Option {
	return []difficulty.Option{
		difficulty.WithDefaults(cfg.Defaults()),
		difficulty.WithSectionLength(cfg.SectionLength),
		difficulty.WithDecayWeight(cfg.DecayWeight),
		difficulty.WithLastTickAnchor(cfg.LastTickAnchor),
		difficulty.WithGridAlignedSections(cfg.GridAlignedSections),
	}
}
