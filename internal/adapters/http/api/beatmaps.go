package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/juicerank/internal/adapters/mq/queue"
	"github.com/okian/juicerank/internal/domain/beatmap"
	"github.com/okian/juicerank/internal/domain/model"
	"github.com/okian/juicerank/pkg/metrics"
)

type submitResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	JobID     string `json:"job_id,omitempty"`
	BeatmapID string `json:"beatmap_id,omitempty"`
	Checksum  string `json:"checksum"`
}

// BeatmapsHandler accepts beatmap submissions.
type BeatmapsHandler struct {
	deps         Submitter
	maxBodyBytes int64
}

// requestFormat prefers ?format= over the Content-Type header.
func requestFormat(r *http.Request) beatmap.Format {
	if f := r.URL.Query().Get("format"); f != "" {
		return beatmap.Format(strings.ToLower(f))
	}
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		return beatmap.FormatYAML
	}
	return beatmap.FormatJSON
}

// HandlePost handles POST /beatmaps. A new map is queued and answered with
// 202, a map whose checksum was seen before with 200.
func (h *BeatmapsHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_beatmap"
	ctx := r.Context()

	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	b, err := beatmap.Decode(body, requestFormat(r))
	if err != nil {
		metrics.RecordBeatmapRejected("invalid")
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	sum := b.Checksum()
	if h.deps.SeenAndRecord(ctx, sum) {
		metrics.RecordBeatmapDuplicate()
		writeJSON(w, http.StatusOK, submitResponse{Status: "duplicate", Duplicate: true, Checksum: sum})
		return
	}

	job := model.NewJob(b, sum)
	if err := h.deps.Enqueue(ctx, job); err != nil {
		h.deps.Unrecord(ctx, sum)
		metrics.RecordBeatmapRejected("backpressure")
		if errors.Is(err, queue.ErrQueueFull) || errors.Is(err, queue.ErrQueueClosed) {
			writeError(w, WrapKind(op, ErrBackpressure, err))
			return
		}
		writeError(w, Wrap(op, err))
		return
	}

	metrics.RecordBeatmapSubmitted()
	writeJSON(w, http.StatusAccepted, submitResponse{
		Status:    "accepted",
		JobID:     job.ID,
		BeatmapID: job.BeatmapID,
		Checksum:  sum,
	})
}
