package api

import (
	"net/http"
)

// StatsHandler serves the service summary.
type StatsHandler struct {
	provider StatsProvider
}

// HandleStats handles GET /stats.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.provider.Stats(r.Context()))
}
