package racebots

import (
	"errors"
	"time"
)

// Config holds configuration for a bot race.
type Config struct {
	BaseURL   string        // Base URL of the service, http or https
	Bots      int           // Number of bots, the first one hosts
	Rounds    int           // Rounds to play
	ErrorRate float64       // Probability of a wrong keystroke, 0..1
	KeyDelay  time.Duration // Pause between keystrokes
	Timeout   time.Duration // Per-round and HTTP timeout
	Seed      uint64        // Seed for typing mistakes, 0 picks one
	LogFile   string        // Log file for race output
	Verbose   bool          // Enable verbose logging
}

// Validation errors.
var (
	ErrNoBots     = errors.New("at least one bot is required")
	ErrNoRounds   = errors.New("at least one round is required")
	ErrErrorRate  = errors.New("error rate must be within [0, 1]")
	ErrNoBaseURL  = errors.New("base url is required")
	ErrNotHost    = errors.New("first bot did not become host")
	ErrMismatch   = errors.New("bots disagree on the round result")
	ErrUnknownBot = errors.New("winner is not a bot of this race")
)

// Validate checks c for values the runner cannot work with.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return ErrNoBaseURL
	case c.Bots < 1:
		return ErrNoBots
	case c.Rounds < 1:
		return ErrNoRounds
	case c.ErrorRate < 0 || c.ErrorRate > 1:
		return ErrErrorRate
	}
	return nil
}

// Stats holds race statistics.
type Stats struct {
	KeystrokesSent   int
	MistakesSent     int
	RejectedMessages int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
