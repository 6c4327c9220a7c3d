package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// LeaderboardReader returns the top of the leaderboard.
type LeaderboardReader interface {
	TopN(ctx context.Context, n int) ([]Entry, error)
}

// LeaderboardHandler serves the hardest maps.
type LeaderboardHandler struct {
	deps     LeaderboardReader
	maxLimit int
}

// HandleGetLeaderboard handles GET /leaderboard?limit=N. A missing limit
// means 10.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	n := 10
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			writeError(w, WrapKind(op, ErrBadRequest, fmt.Errorf("limit %q must be a positive integer", s)))
			return
		}
		n = v
	}
	if n > h.maxLimit {
		writeError(w, WrapKind(op, ErrBadRequest, fmt.Errorf("limit %d exceeds %d", n, h.maxLimit)))
		return
	}

	entries, err := h.deps.TopN(r.Context(), n)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
