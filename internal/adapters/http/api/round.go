package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/okian/keyrace/internal/domain/model"
	"github.com/okian/keyrace/internal/domain/types"
)

// RoundReader reads the current round and durable results.
type RoundReader interface {
	Round(ctx context.Context) (types.RoundView, error)
	Results(ctx context.Context, n int) (model.RoundResult, error)
}

// RoundHandler handles round requests.
type RoundHandler struct {
	rounds RoundReader
}

// NewRoundHandler creates a new round handler.
func NewRoundHandler(rounds RoundReader) *RoundHandler {
	return &RoundHandler{rounds: rounds}
}

// HandleCurrent handles GET /round.
func (h *RoundHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	view, err := h.rounds.Round(r.Context())
	if err != nil {
		writeError(w, Wrap("round", err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleResult handles GET /rounds/{n}.
func (h *RoundHandler) HandleResult(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 1 {
		writeError(w, NewKind("rounds", ErrBadRequest, "round must be a positive integer"))
		return
	}

	res, err := h.rounds.Results(r.Context(), n)
	if err != nil {
		writeError(w, Wrap("rounds", err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
