package api

import (
	"errors"
	"net/http"

	"github.com/okian/juicerank/internal/adapters/repository"
)

// RankHandler serves per beatmap reads.
type RankHandler struct {
	deps Reader
}

func lookupError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return WrapKind(op, ErrNotFound, err)
	}
	return Wrap(op, err)
}

// HandleGetRank handles GET /rank/{id}.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rank"
	entry, err := h.deps.Rank(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, lookupError(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// HandleGetRating handles GET /beatmaps/{id}.
func (h *RankHandler) HandleGetRating(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rating"
	rating, err := h.deps.Rating(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, lookupError(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rating)
}

// HandleGetJob handles GET /jobs/{id}.
func (h *RankHandler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_job"
	status, ok := h.deps.Job(r.PathValue("id"))
	if !ok {
		writeError(w, NewKind(op, ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, status)
}
