// Package api serves the rating service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/juicerank/internal/domain/dedupe"
	"github.com/okian/juicerank/internal/domain/model"
	"github.com/okian/juicerank/internal/domain/types"
)

const (
	defaultMaxLimit     = 100
	defaultMaxBodyBytes = 8 << 20
)

// Entry is a leaderboard row.
type Entry = types.Entry

// Submitter accepts new beatmaps. SeenAndRecord runs before Enqueue and is
// rolled back with Unrecord when the job cannot be queued.
type Submitter interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, j model.Job) error
}

// Reader serves ratings and job states.
type Reader interface {
	TopN(ctx context.Context, n int) ([]Entry, error)
	Rank(ctx context.Context, beatmapID string) (Entry, error)
	Rating(ctx context.Context, beatmapID string) (model.Rating, error)
	Job(id string) (types.JobStatus, bool)
}

// Dependencies bundles everything the handlers call.
type Dependencies interface {
	Submitter
	Reader
}

// StatsProvider reports the service summary.
type StatsProvider interface {
	Stats(ctx context.Context) types.Stats
}

// Option configures a Server.
type Option func(*Server)

// WithMaxLeaderboardLimit caps ?limit= on /leaderboard.
func WithMaxLeaderboardLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithMaxBodyBytes caps the size of a submitted beatmap.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// Server wires the HTTP routes.
type Server struct {
	deps         Dependencies
	stats        StatsProvider
	maxLimit     int
	maxBodyBytes int64
}

// NewServer creates a server over deps.
func NewServer(deps Dependencies, stats StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:         deps,
		stats:        stats,
		maxLimit:     defaultMaxLimit,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	beatmaps := &BeatmapsHandler{deps: s.deps, maxBodyBytes: s.maxBodyBytes}
	leaderboard := &LeaderboardHandler{deps: s.deps, maxLimit: s.maxLimit}
	rank := &RankHandler{deps: s.deps}
	stats := &StatsHandler{provider: s.stats}

	mux.HandleFunc("GET /healthz", MetricsMiddleware(HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", HandleHealth)
	mux.HandleFunc("GET /stats", MetricsMiddleware(stats.HandleStats, "stats"))
	mux.HandleFunc("POST /beatmaps", MetricsMiddleware(beatmaps.HandlePost, "beatmaps"))
	mux.HandleFunc("GET /beatmaps/{id}", MetricsMiddleware(rank.HandleGetRating, "beatmap"))
	mux.HandleFunc("GET /jobs/{id}", MetricsMiddleware(rank.HandleGetJob, "jobs"))
	mux.HandleFunc("GET /leaderboard", MetricsMiddleware(leaderboard.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /rank/{id}", MetricsMiddleware(rank.HandleGetRank, "rank"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError picks the status from the error kind.
func writeError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, ErrBadRequest):
		status, code = http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBackpressure):
		status, code = http.StatusTooManyRequests, "backpressure"
	}
	writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}
