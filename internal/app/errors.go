package service

import (
	"errors"

	"github.com/okian/keyrace/internal/adapters/store"
)

// Sentinel errors returned by Session operations.
var (
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrNoActiveRound      = errors.New("no active round")
	ErrIndexOutOfRange    = errors.New("index outside prompt")
	ErrRoundLocked        = errors.New("round locked")
	ErrNotHost            = errors.New("only the host can restart")
	ErrNoWinnerYet        = errors.New("no winner yet")
	ErrBackpressure       = errors.New("session busy")
	ErrNotStarted         = errors.New("session not started")
	ErrStopped            = errors.New("session stopped")
)

// Client-facing error codes.
const (
	CodeUnknownParticipant = "unknown_participant"
	CodeNoActiveRound      = "no_active_round"
	CodeIndexOutOfRange    = "index_out_of_range"
	CodeRoundLocked        = "round_locked"
	CodeNotHost            = "not_host"
	CodeNoWinnerYet        = "no_winner_yet"
	CodeBusy               = "busy"
	CodeUnavailable        = "unavailable"
	CodeStore              = "store_error"
	CodeInternal           = "internal"
)

// Code maps an operation error to the code sent back to clients.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrUnknownParticipant):
		return CodeUnknownParticipant
	case errors.Is(err, ErrNoActiveRound):
		return CodeNoActiveRound
	case errors.Is(err, ErrIndexOutOfRange):
		return CodeIndexOutOfRange
	case errors.Is(err, ErrRoundLocked):
		return CodeRoundLocked
	case errors.Is(err, ErrNotHost):
		return CodeNotHost
	case errors.Is(err, ErrNoWinnerYet):
		return CodeNoWinnerYet
	case errors.Is(err, ErrBackpressure):
		return CodeBusy
	case errors.Is(err, ErrNotStarted), errors.Is(err, ErrStopped):
		return CodeUnavailable
	case errors.Is(err, store.ErrClosed), errors.Is(err, store.ErrNotFound):
		return CodeStore
	default:
		return CodeInternal
	}
}
