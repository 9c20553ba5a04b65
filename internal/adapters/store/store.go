// Package store is the key-value backend holding per-round tallies, the
// scoreboard and the durable winner of every round.
package store

import (
	"context"
	"strconv"
)

// ScoreStore is the small redis-shaped surface the session needs.
type ScoreStore interface {
	// HSetField sets one field of a hash, creating the hash if needed.
	HSetField(ctx context.Context, key, field, value string) error
	// HGetAll returns every field of a hash. A missing hash is an empty map.
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	// Get returns a string value or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, keys ...string) error
	// FlushAll drops every key.
	FlushAll(ctx context.Context) error
	Close() error
}

// TallyKey is the per-connection keystroke hash of a round: index -> "1"/"0".
func TallyKey(round int, connID string) string {
	return "round:" + strconv.Itoa(round) + ":tally:" + connID
}

// ScoresKey is the scoreboard hash of a round: identity -> JSON snapshot.
func ScoresKey(round int) string {
	return "round:" + strconv.Itoa(round) + ":scores"
}

// WinnerKey holds the winning identity of a round.
func WinnerKey(round int) string {
	return "round:" + strconv.Itoa(round) + ":winner"
}

// WinnerScoreKey holds the winning score of a round.
func WinnerScoreKey(round int) string {
	return "round:" + strconv.Itoa(round) + ":winner_score"
}

// PromptKey holds the prompt a round was played on.
func PromptKey(round int) string {
	return "round:" + strconv.Itoa(round) + ":text"
}
