package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	service "github.com/okian/keyrace/internal/app"
	"github.com/okian/keyrace/internal/domain/model"
	"github.com/okian/keyrace/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

type mockDeps struct {
	stats    types.Stats
	view     types.RoundView
	results  map[int]model.RoundResult
	err      error
	lastRead int
}

func (m *mockDeps) Stats(context.Context) (types.Stats, error) {
	return m.stats, m.err
}

func (m *mockDeps) Round(context.Context) (types.RoundView, error) {
	return m.view, m.err
}

func (m *mockDeps) Results(_ context.Context, n int) (model.RoundResult, error) {
	m.lastRead = n
	if m.err != nil {
		return model.RoundResult{}, m.err
	}
	res, ok := m.results[n]
	if !ok {
		return model.RoundResult{}, service.ErrNoWinnerYet
	}
	return res, nil
}

func newRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	NewServer(deps).Register(context.Background(), r)
	return r
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
	return w
}

func decodeError(w *httptest.ResponseRecorder) errorResponse {
	var body errorResponse
	_ = json.NewDecoder(w.Body).Decode(&body)
	return body
}

func TestRoutes(t *testing.T) {
	Convey("Given an API router over a mock session", t, func() {
		deps := &mockDeps{
			stats: types.Stats{Participants: 2, Host: "ana", Round: 3, Phase: "in_progress", QueueCapacity: 1024},
			view: types.RoundView{Round: 3, Prompt: "abc", Phase: "in_progress", Participants: []types.ParticipantView{
				{Identity: "ana", IsHost: true, Submitted: true},
				{Identity: "bo"},
			}},
			results: map[int]model.RoundResult{
				2: {RoundNumber: 2, Prompt: "xyz", Winner: "bo", WinnerScore: 3},
			},
		}
		h := newRouter(deps)

		Convey("GET /stats returns the snapshot", func() {
			w := get(h, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")

			var got types.Stats
			So(json.NewDecoder(w.Body).Decode(&got), ShouldBeNil)
			So(got, ShouldResemble, deps.stats)
		})

		Convey("GET /round returns the current round", func() {
			w := get(h, "/round")
			So(w.Code, ShouldEqual, http.StatusOK)

			var got types.RoundView
			So(json.NewDecoder(w.Body).Decode(&got), ShouldBeNil)
			So(got.Round, ShouldEqual, 3)
			So(got.Prompt, ShouldEqual, "abc")
			So(got.Submitted(), ShouldEqual, 1)
		})

		Convey("GET /rounds/{n} returns a stored result", func() {
			w := get(h, "/rounds/2")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastRead, ShouldEqual, 2)

			var got map[string]any
			So(json.NewDecoder(w.Body).Decode(&got), ShouldBeNil)
			So(got["round_count"], ShouldEqual, float64(2))
			So(got["winner"], ShouldEqual, "bo")
			So(got["winner_score"], ShouldEqual, float64(3))
		})

		Convey("GET /rounds/{n} without a winner is 404", func() {
			w := get(h, "/rounds/9")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(w).Code, ShouldEqual, service.CodeNoWinnerYet)
		})

		Convey("GET /rounds/{n} rejects bad numbers", func() {
			for _, path := range []string{"/rounds/0", "/rounds/-1", "/rounds/abc"} {
				w := get(h, path)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w).Code, ShouldEqual, "bad_request")
			}
		})

		Convey("GET /healthz exposes metrics", func() {
			_ = get(h, "/stats")
			w := get(h, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "keyrace_session_http_requests_total")
		})

		Convey("Unknown routes are 404", func() {
			So(get(h, "/nope").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestErrorMapping(t *testing.T) {
	Convey("Given a session that fails", t, func() {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{service.ErrBackpressure, http.StatusTooManyRequests, service.CodeBusy},
			{service.ErrStopped, http.StatusServiceUnavailable, service.CodeUnavailable},
			{service.ErrNotStarted, http.StatusServiceUnavailable, service.CodeUnavailable},
			{errors.New("boom"), http.StatusInternalServerError, service.CodeInternal},
		}

		for _, tc := range cases {
			h := newRouter(&mockDeps{err: tc.err})
			for _, path := range []string{"/stats", "/round", "/rounds/1"} {
				w := get(h, path)
				So(w.Code, ShouldEqual, tc.status)
				body := decodeError(w)
				So(body.Code, ShouldEqual, tc.code)
				So(body.Message, ShouldNotBeEmpty)
			}
		}
	})
}

func TestError(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		Convey("Wrap keeps nil as nil", func() {
			So(Wrap("op", nil), ShouldBeNil)
			So(WrapKind("op", ErrNotFound, nil), ShouldBeNil)
		})

		Convey("WrapKind matches both the kind and the cause", func() {
			cause := errors.New("disk")
			err := WrapKind("rounds", ErrUnavailable, cause)
			So(errors.Is(err, ErrUnavailable), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "rounds: unavailable: disk")
		})

		Convey("NewKind is classified by its kind", func() {
			err := NewKind("rounds", ErrBadRequest, "bad n")
			status, code := classify(err)
			So(status, ShouldEqual, http.StatusBadRequest)
			So(code, ShouldEqual, "bad_request")
			So(strings.HasPrefix(err.Error(), "rounds:"), ShouldBeTrue)
		})

		Convey("API kinds map to statuses", func() {
			status, _ := classify(WrapKind("x", ErrBackpressure, errors.New("full")))
			So(status, ShouldEqual, http.StatusTooManyRequests)
			status, _ = classify(WrapKind("x", ErrNotFound, errors.New("gone")))
			So(status, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestRegisterNilRouter(t *testing.T) {
	Convey("Registering on a nil router panics", t, func() {
		So(func() { NewServer(&mockDeps{}).Register(context.Background(), nil) }, ShouldPanic)
	})
}
