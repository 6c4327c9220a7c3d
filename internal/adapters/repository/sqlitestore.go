package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/okian/juicerank/internal/domain/model"
	"github.com/okian/juicerank/internal/domain/types"
	"github.com/okian/juicerank/pkg/metrics"
)

const schema = `
create table if not exists ratings
  (
	beatmap_id text not null primary key,
	checksum   text not null,
	title      text not null default '',
	artist     text not null default '',
	version    text not null default '',
	stars      real not null,
	movement   real not null,
	density    real not null,
	max_combo  integer not null,
	objects    integer not null,
	rated_at   integer not null
  );
create index if not exists ratings_rank on ratings (stars desc, beatmap_id asc);
`

const ratingColumns = `beatmap_id, checksum, title, artist, version, stars, movement, density, max_combo, objects, rated_at`

// SQLiteStore persists ratings in a sqlite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path. ":memory:" keeps
// it in memory.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// one connection keeps ":memory:" a single database
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Upsert(ctx context.Context, r model.Rating) error { //nolint:gocritic // matches Store
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()
	if err := validRating(&r); err != nil {
		metrics.RecordErrorByComponent("repository", "invalid_rating")
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`insert into ratings(`+ratingColumns+`) values(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		on conflict(beatmap_id) do update set
			checksum = excluded.checksum, title = excluded.title, artist = excluded.artist,
			version = excluded.version, stars = excluded.stars, movement = excluded.movement,
			density = excluded.density, max_combo = excluded.max_combo, objects = excluded.objects,
			rated_at = excluded.rated_at`,
		r.BeatmapID, r.Checksum, r.Title, r.Artist, r.Version, r.Stars, r.Movement,
		r.Density, r.MaxCombo, r.Objects, r.RatedAt.UnixMilli(),
	)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "sqlite")
		return fmt.Errorf("upsert %s: %w", r.BeatmapID, err)
	}
	metrics.UpdateRatedBeatmaps(s.Count(ctx))
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, beatmapID string) (model.Rating, error) {
	var (
		r       model.Rating
		ratedAt int64
	)
	err := s.db.QueryRowContext(ctx, `select `+ratingColumns+` from ratings where beatmap_id = ?`, beatmapID).
		Scan(&r.BeatmapID, &r.Checksum, &r.Title, &r.Artist, &r.Version, &r.Stars, &r.Movement,
			&r.Density, &r.MaxCombo, &r.Objects, &ratedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Rating{}, ErrNotFound
	}
	if err != nil {
		return model.Rating{}, fmt.Errorf("get %s: %w", beatmapID, err)
	}
	r.RatedAt = time.UnixMilli(ratedAt).UTC()
	return r, nil
}

func (s *SQLiteStore) Rank(ctx context.Context, beatmapID string) (types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	var e types.Entry
	err := s.db.QueryRowContext(ctx, `
		select r.beatmap_id, r.title, r.stars,
			(select count(*) from ratings o
			  where o.stars > r.stars or (o.stars = r.stars and o.beatmap_id < r.beatmap_id)) + 1
		from ratings r where r.beatmap_id = ?`, beatmapID).
		Scan(&e.BeatmapID, &e.Title, &e.Stars, &e.Rank)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordErrorByComponent("repository", "not_found")
		return types.Entry{}, ErrNotFound
	}
	if err != nil {
		return types.Entry{}, fmt.Errorf("rank %s: %w", beatmapID, err)
	}
	return e, nil
}

func (s *SQLiteStore) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`select beatmap_id, title, stars from ratings order by stars desc, beatmap_id asc limit ?`, n)
	if err != nil {
		return nil, fmt.Errorf("top %d: %w", n, err)
	}
	defer rows.Close()

	var out []types.Entry
	for rows.Next() {
		e := types.Entry{Rank: len(out) + 1}
		if err := rows.Scan(&e.BeatmapID, &e.Title, &e.Stars); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top %d: %w", n, err)
	}
	return out, nil
}

// Count returns the number of ratings, or 0 when the query fails.
func (s *SQLiteStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `select count(*) from ratings`).Scan(&n); err != nil {
		metrics.RecordErrorByComponent("repository", "sqlite")
		return 0
	}
	return n
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
