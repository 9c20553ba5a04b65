// Package model contains domain models passed between layers.
package model

import "time"

// AnonymousIdentity is used when a client connects without a user id.
const AnonymousIdentity = "anonymous"

// Participant is one connected player. Owned by the registry, keyed by ConnID.
type Participant struct {
	ConnID   string
	Identity string
	IsHost   bool
	JoinedAt time.Time
}

// ScoreSnapshot is a participant's tally summary for one round.
// It is stored as JSON on the round scoreboard, keyed by identity.
type ScoreSnapshot struct {
	Identity  string `json:"-"`
	Correct   int    `json:"correct"`
	Incorrect int    `json:"incorrect"`
}

// Score is correct minus incorrect keystrokes.
func (s ScoreSnapshot) Score() int {
	return s.Correct - s.Incorrect
}

// RoundResult is broadcast once per round when every live participant has submitted.
type RoundResult struct {
	RoundNumber int    `json:"round_count"`
	Prompt      string `json:"text"`
	Winner      string `json:"winner"`
	WinnerScore int    `json:"winner_score"`
}
