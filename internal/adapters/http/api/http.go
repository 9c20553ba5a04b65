// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	service "github.com/okian/keyrace/internal/app"
	"github.com/okian/keyrace/internal/domain/model"
	"github.com/okian/keyrace/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the session.
type Dependencies interface {
	Stats(ctx context.Context) (types.Stats, error)
	Round(ctx context.Context) (types.RoundView, error)
	Results(ctx context.Context, n int) (model.RoundResult, error)
}

// Server wires HTTP routes for the session API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	roundHandler  *RoundHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(deps),
		roundHandler:  NewRoundHandler(deps),
	}
}

// Register attaches all API routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)
	r.Get("/round", s.roundHandler.HandleCurrent)
	r.Get("/rounds/{n}", s.roundHandler.HandleResult)
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

// writeError maps err to a status and a client code.
func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrNoWinnerYet):
		return http.StatusNotFound, service.CodeNoWinnerYet
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrBackpressure), errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, service.CodeBusy
	case errors.Is(err, service.ErrStopped), errors.Is(err, service.ErrNotStarted), errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, service.CodeUnavailable
	default:
		return http.StatusInternalServerError, service.Code(err)
	}
}
