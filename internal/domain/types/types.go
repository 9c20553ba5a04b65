// Package types contains the read shapes shared by the session and the HTTP API.
package types

import "time"

// Stats summarizes the session for monitoring.
type Stats struct {
	Participants  int    `json:"participants"`
	Host          string `json:"host,omitempty"`
	Round         int    `json:"round"`
	Phase         string `json:"phase"`
	Finished      int    `json:"finished"`
	Published     bool   `json:"published"`
	QueueLength   int    `json:"queue_length"`
	QueueCapacity int    `json:"queue_capacity"`
}

// ParticipantView is one row of RoundView.
type ParticipantView struct {
	Identity  string    `json:"identity"`
	IsHost    bool      `json:"is_host"`
	Submitted bool      `json:"submitted"`
	JoinedAt  time.Time `json:"joined_at"`
}

// RoundView is the current round as seen from outside.
type RoundView struct {
	Round        int               `json:"round"`
	Prompt       string            `json:"text,omitempty"`
	Phase        string            `json:"phase"`
	Locked       bool              `json:"locked"`
	Published    bool              `json:"published"`
	Participants []ParticipantView `json:"participants"`
}

// Submitted counts participants that finished the round.
func (v RoundView) Submitted() int {
	n := 0
	for _, p := range v.Participants {
		if p.Submitted {
			n++
		}
	}
	return n
}
