package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/okian/juicerank/internal/adapters/http/api"
	"github.com/okian/juicerank/internal/adapters/mq/queue"
	"github.com/okian/juicerank/internal/adapters/repository"
	"github.com/okian/juicerank/internal/domain/model"
	"github.com/okian/juicerank/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

type mockDeps struct {
	mu       sync.Mutex
	seen     map[string]bool
	enqueued []model.Job
	enqErr   error

	top     []types.Entry
	topErr  error
	ratings map[string]model.Rating
	jobs    map[string]types.JobStatus
}

func newMockDeps() *mockDeps {
	return &mockDeps{
		seen:    make(map[string]bool),
		ratings: make(map[string]model.Rating),
		jobs:    make(map[string]types.JobStatus),
	}
}

func (m *mockDeps) SeenAndRecord(_ context.Context, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[key] {
		return true
	}
	m.seen[key] = true
	return false
}

func (m *mockDeps) Unrecord(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, key)
}

func (m *mockDeps) Size() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.seen))
}

func (m *mockDeps) Enqueue(_ context.Context, j model.Job) error {
	if m.enqErr != nil {
		return m.enqErr
	}
	m.enqueued = append(m.enqueued, j)
	return nil
}

func (m *mockDeps) TopN(_ context.Context, n int) ([]types.Entry, error) {
	if m.topErr != nil {
		return nil, m.topErr
	}
	return m.top[:min(n, len(m.top))], nil
}

func (m *mockDeps) Rank(_ context.Context, id string) (types.Entry, error) {
	for _, e := range m.top {
		if e.BeatmapID == id {
			return e, nil
		}
	}
	return types.Entry{}, repository.ErrNotFound
}

func (m *mockDeps) Rating(_ context.Context, id string) (model.Rating, error) {
	r, ok := m.ratings[id]
	if !ok {
		return model.Rating{}, repository.ErrNotFound
	}
	return r, nil
}

func (m *mockDeps) Job(id string) (types.JobStatus, bool) {
	s, ok := m.jobs[id]
	return s, ok
}

type mockStats struct{}

func (mockStats) Stats(context.Context) types.Stats {
	return types.Stats{Started: true, Workers: 4, RatedBeatmaps: 2}
}

const validBeatmap = `{
  "metadata": {"title": "Song", "version": "Salad"},
  "timing_points": [{"time": 0, "beat_length": 500}],
  "hit_objects": [
    {"kind": "circle", "x": 64, "time": 0},
    {"kind": "slider", "x": 100, "time": 500, "slider": {
      "control_points": [{"x": 0, "y": 0, "type": "linear"}, {"x": 200, "y": 0}],
      "repeats": 1
    }},
    {"kind": "circle", "x": 400, "time": 2500}
  ]
}`

const validBeatmapYAML = `
metadata:
  title: Song
hit_objects:
  - kind: circle
    x: 64
    time: 0
  - kind: circle
    x: 448
    time: 400
`

func newTestMux(deps *mockDeps, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, mockStats{}, opts...).Register(mux)
	return mux
}

func do(mux *http.ServeMux, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder, v any) {
	So(json.Unmarshal(w.Body.Bytes(), v), ShouldBeNil)
}

func TestServer_Routes(t *testing.T) {
	Convey("Given a registered server", t, func() {
		deps := newMockDeps()
		mux := newTestMux(deps)

		Convey("Then /healthz serves metrics", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "juicerank_difficulty_")
		})

		Convey("Then /stats serves the summary", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var s types.Stats
			decode(w, &s)
			So(s.Workers, ShouldEqual, 4)
			So(s.RatedBeatmaps, ShouldEqual, 2)
		})

		Convey("Then unknown paths are 404", func() {
			So(do(mux, http.MethodGet, "/unknown", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then wrong methods are rejected", func() {
			So(do(mux, http.MethodGet, "/beatmaps", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestBeatmapsHandler(t *testing.T) {
	Convey("Given a server accepting beatmaps", t, func() {
		deps := newMockDeps()
		mux := newTestMux(deps)

		Convey("When a valid JSON beatmap is posted", func() {
			w := do(mux, http.MethodPost, "/beatmaps", validBeatmap, "Content-Type", "application/json")

			Convey("Then it is accepted and queued", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				var resp map[string]any
				decode(w, &resp)
				So(resp["status"], ShouldEqual, "accepted")
				So(resp["job_id"], ShouldNotBeEmpty)
				So(len(deps.enqueued), ShouldEqual, 1)
				So(deps.enqueued[0].Beatmap.Metadata.Title, ShouldEqual, "Song")
			})

			Convey("And the same beatmap is posted again", func() {
				w2 := do(mux, http.MethodPost, "/beatmaps", validBeatmap)

				Convey("Then it is reported as a duplicate", func() {
					So(w2.Code, ShouldEqual, http.StatusOK)
					var resp map[string]any
					decode(w2, &resp)
					So(resp["duplicate"], ShouldEqual, true)
					So(len(deps.enqueued), ShouldEqual, 1)
				})
			})
		})

		Convey("When a YAML beatmap is posted", func() {
			w := do(mux, http.MethodPost, "/beatmaps?format=yaml", validBeatmapYAML)

			Convey("Then it is accepted", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
			})
		})

		Convey("When the body is not a beatmap", func() {
			w := do(mux, http.MethodPost, "/beatmaps", `{"hit_objects": [{"kind": "hold", "time": 0}]}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "bad_request")
			})
		})

		Convey("When a slider has no control points", func() {
			w := do(mux, http.MethodPost, "/beatmaps", `{"hit_objects": [{"kind": "slider", "time": 0, "slider": {"control_points": []}}]}`)

			Convey("Then it is rejected before queuing", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(len(deps.enqueued), ShouldEqual, 0)
			})
		})

		Convey("When the queue is full", func() {
			deps.enqErr = queue.ErrQueueFull
			w := do(mux, http.MethodPost, "/beatmaps", validBeatmap)

			Convey("Then it answers 429 and forgets the checksum", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(deps.Size(), ShouldEqual, 0)
			})
		})

		Convey("When enqueue fails unexpectedly", func() {
			deps.enqErr = errors.New("broken")
			w := do(mux, http.MethodPost, "/beatmaps", validBeatmap)

			Convey("Then it answers 500", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})

		Convey("When the body exceeds the size limit", func() {
			small := newTestMux(newMockDeps(), api.WithMaxBodyBytes(16))
			w := do(small, http.MethodPost, "/beatmaps", validBeatmap)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestReadHandlers(t *testing.T) {
	Convey("Given a server with two rated maps", t, func() {
		deps := newMockDeps()
		deps.top = []types.Entry{
			{Rank: 1, BeatmapID: "hard", Stars: 6.5},
			{Rank: 2, BeatmapID: "easy", Stars: 1.2},
		}
		deps.ratings["hard"] = model.Rating{BeatmapID: "hard", Stars: 6.5, MaxCombo: 900}
		deps.jobs["job-1"] = types.JobStatus{ID: "job-1", BeatmapID: "hard", State: types.JobDone, Stars: 6.5}
		mux := newTestMux(deps, api.WithMaxLeaderboardLimit(50))

		Convey("When the leaderboard is requested", func() {
			w := do(mux, http.MethodGet, "/leaderboard?limit=1", "")

			Convey("Then the top rows are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var rows []types.Entry
				decode(w, &rows)
				So(len(rows), ShouldEqual, 1)
				So(rows[0].BeatmapID, ShouldEqual, "hard")
			})
		})

		Convey("When the leaderboard limit is omitted", func() {
			w := do(mux, http.MethodGet, "/leaderboard", "")

			Convey("Then the default limit applies", func() {
				var rows []types.Entry
				decode(w, &rows)
				So(len(rows), ShouldEqual, 2)
			})
		})

		Convey("When the leaderboard limit is invalid", func() {
			for _, q := range []string{"0", "-3", "abc", "51"} {
				w := do(mux, http.MethodGet, "/leaderboard?limit="+q, "")
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When the store fails", func() {
			deps.topErr = errors.New("disk")
			w := do(mux, http.MethodGet, "/leaderboard?limit=5", "")

			Convey("Then it answers 500", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})

		Convey("When a rank is requested", func() {
			w := do(mux, http.MethodGet, "/rank/easy", "")

			Convey("Then the row is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var e types.Entry
				decode(w, &e)
				So(e.Rank, ShouldEqual, 2)
				So(e.Stars, ShouldEqual, 1.2)
			})
		})

		Convey("When an unknown map is ranked", func() {
			So(do(mux, http.MethodGet, "/rank/nope", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When a rating is requested", func() {
			w := do(mux, http.MethodGet, "/beatmaps/hard", "")

			Convey("Then the full rating is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var r model.Rating
				decode(w, &r)
				So(r.MaxCombo, ShouldEqual, 900)
			})
		})

		Convey("When a missing rating is requested", func() {
			So(do(mux, http.MethodGet, "/beatmaps/easy", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When a job is requested", func() {
			w := do(mux, http.MethodGet, "/jobs/job-1", "")

			Convey("Then its state is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var s types.JobStatus
				decode(w, &s)
				So(s.State, ShouldEqual, types.JobDone)
			})
		})

		Convey("When an unknown job is requested", func() {
			So(do(mux, http.MethodGet, "/jobs/job-2", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestErrorKinds(t *testing.T) {
	Convey("Given op tagged errors", t, func() {
		cause := errors.New("cause")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)

		Convey("Then both the kind and the cause match", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: cause")
		})

		Convey("Then a bare kind prints without a cause", func() {
			So(api.NewKind("api.op", api.ErrNotFound).Error(), ShouldEqual, "api.op: not found")
		})

		Convey("Then Wrap marks internal errors", func() {
			So(errors.Is(api.Wrap("api.op", cause), api.ErrInternal), ShouldBeTrue)
		})
	})
}
