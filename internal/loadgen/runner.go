package loadgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/juicerank/internal/domain/beatmap"
	"github.com/okian/juicerank/internal/domain/types"
	"github.com/okian/juicerank/pkg/logger"
)

const (
	directoryPermission = 0o750
	pollInterval        = 50 * time.Millisecond
	reportInterval      = time.Second
)

// ErrVerification marks a leaderboard that broke an ordering rule.
var ErrVerification = errors.New("verification failed")

// Run submits the generated maps, waits for them to be rated and verifies
// the leaderboard. The report is written to out.
func Run(ctx context.Context, cfg *Config, out io.Writer) (*Stats, error) {
	log := logger.Get().Named("loadgen")
	stats := &Stats{StartTime: time.Now()}
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("maps", cfg.Maps),
		logger.Int("objects", cfg.Objects),
		logger.Int("workers", cfg.Workers),
	)

	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	maps, batch := NewGenerator(cfg.Seed).Batch(cfg)
	stats.MapsGenerated = len(maps)

	jobs := submitAll(ctx, cfg, client, batch, stats)
	log.Info(ctx, "submission finished",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("refused", stats.Refused),
		logger.Int("failed", stats.Failed),
	)

	rated := waitJobs(ctx, cfg, client, jobs, stats)

	leaderboard, err := client.Leaderboard(ctx, cfg.TopN)
	if err != nil {
		return stats, fmt.Errorf("leaderboard: %w", err)
	}
	stats.Ranked = len(leaderboard)

	verr := errors.Join(
		VerifyLeaderboard(leaderboard),
		verifyRanks(ctx, client, rated),
	)

	if cfg.OutputFile != "" {
		if err := saveMaps(cfg.OutputFile, maps); err != nil {
			log.Warn(ctx, "failed to save maps", logger.Error(err))
		}
	}

	stats.Duration = time.Since(stats.StartTime)
	WriteReport(out, stats, leaderboard)
	if verr != nil {
		return stats, fmt.Errorf("%w: %w", ErrVerification, verr)
	}
	log.Info(ctx, "load test completed", logger.Duration("duration", stats.Duration))
	return stats, nil
}

// submitAll posts the batch with cfg.Workers submitters and returns the
// accepted job ids.
func submitAll(ctx context.Context, cfg *Config, client *Client, batch []*beatmap.Beatmap, stats *Stats) []string {
	var (
		accepted, duplicate, refused, failed, submitted atomic.Int64

		mu   sync.Mutex
		jobs []string
		wg   sync.WaitGroup
	)
	workers := max(cfg.Workers, 1)
	feed := make(chan *beatmap.Beatmap, workers*2)

	lastReport := time.Now()
	var reportMu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range feed {
				sub, outcome := client.Submit(ctx, b)
				submitted.Add(1)
				switch outcome {
				case outcomeAccepted:
					accepted.Add(1)
					mu.Lock()
					jobs = append(jobs, sub.JobID)
					mu.Unlock()
				case outcomeDuplicate:
					duplicate.Add(1)
				case outcomeRefused:
					refused.Add(1)
				default:
					failed.Add(1)
				}

				if cfg.Verbose {
					reportMu.Lock()
					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						logger.Get().Info(ctx, "progress",
							logger.Int("submitted", int(submitted.Load())),
							logger.Int("total", len(batch)),
						)
					}
					reportMu.Unlock()
				}
			}
		}()
	}

	go func() {
		defer close(feed)
		for _, b := range batch {
			select {
			case <-ctx.Done():
				return
			case feed <- b:
			}
		}
	}()
	wg.Wait()

	stats.Submitted = int(submitted.Load())
	stats.Accepted = int(accepted.Load())
	stats.Duplicate = int(duplicate.Load())
	stats.Refused = int(refused.Load())
	stats.Failed = int(failed.Load())
	return jobs
}

// waitJobs polls every job until it finishes or cfg.Wait passes. It returns
// the finished jobs that were rated.
func waitJobs(ctx context.Context, cfg *Config, client *Client, ids []string, stats *Stats) []types.JobStatus {
	deadline := time.Now().Add(cfg.Wait)
	pending := ids
	var rated []types.JobStatus

	for len(pending) > 0 && time.Now().Before(deadline) && ctx.Err() == nil {
		next := pending[:0]
		for _, id := range pending {
			st, err := client.Job(ctx, id)
			switch {
			case err != nil, st.State == types.JobQueued:
				next = append(next, id)
			case st.State == types.JobDone:
				rated = append(rated, st)
			default:
				stats.RateFailed++
			}
		}
		pending = next
		if len(pending) > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(pollInterval):
			}
		}
	}
	stats.Rated = len(rated)
	stats.Pending = len(pending)
	return rated
}

// VerifyLeaderboard checks ranks run 1..n and rows follow leaderboard order.
func VerifyLeaderboard(entries []types.Entry) error {
	var errs []error
	for i, e := range entries {
		if e.Rank != i+1 {
			errs = append(errs, fmt.Errorf("row %d has rank %d", i, e.Rank))
		}
		if i > 0 {
			prev := entries[i-1]
			if !types.Before(prev.Stars, prev.BeatmapID, e.Stars, e.BeatmapID) {
				errs = append(errs, fmt.Errorf("%s (%.4f) is listed before %s (%.4f)", prev.BeatmapID, prev.Stars, e.BeatmapID, e.Stars))
			}
		}
	}
	return errors.Join(errs...)
}

// verifyRanks checks that every rated map is ranked with the stars its job
// reported.
func verifyRanks(ctx context.Context, client *Client, rated []types.JobStatus) error {
	var errs []error
	for _, st := range rated {
		e, err := client.Rank(ctx, st.BeatmapID)
		if err != nil {
			errs = append(errs, fmt.Errorf("rank %s: %w", st.BeatmapID, err))
			continue
		}
		if e.Stars != st.Stars {
			errs = append(errs, fmt.Errorf("%s ranked with %.4f stars, job reported %.4f", st.BeatmapID, e.Stars, st.Stars))
		}
	}
	return errors.Join(errs...)
}

func saveMaps(path string, maps []*beatmap.Beatmap) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(maps)
}
