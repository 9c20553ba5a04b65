// Package round holds the state machine of the current round.
package round

// Phase is the lifecycle position of the current round.
type Phase int

// Round phases.
const (
	PhaseIdle Phase = iota
	PhaseInProgress
	PhaseLocked
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseInProgress:
		return "in_progress"
	case PhaseLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// State is the current round. Mutated by the session worker only.
type State struct {
	number    int
	prompt    []rune
	text      string
	phase     Phase
	submitted map[string]struct{}
	published bool
}

// New returns an idle round 0.
func New() *State {
	return &State{submitted: make(map[string]struct{})}
}

// Restart starts the next round with prompt. Valid from any phase.
func (s *State) Restart(prompt string) int {
	s.number++
	s.text = prompt
	s.prompt = []rune(prompt)
	s.phase = PhaseInProgress
	s.published = false
	clear(s.submitted)
	return s.number
}

// Lock closes keystroke submission. Only the first call of an in-progress
// round returns true.
func (s *State) Lock() bool {
	if s.phase != PhaseInProgress {
		return false
	}
	s.phase = PhaseLocked
	return true
}

// Reset returns to idle round 0, dropping the prompt and all round bookkeeping.
func (s *State) Reset() {
	s.number = 0
	s.text = ""
	s.prompt = nil
	s.phase = PhaseIdle
	s.published = false
	clear(s.submitted)
}

// Active reports whether a prompt is in play (in progress or locked).
func (s *State) Active() bool {
	return s.phase != PhaseIdle
}

// Locked reports whether keystroke submission has closed.
func (s *State) Locked() bool { return s.phase == PhaseLocked }

// Number returns the round number.
func (s *State) Number() int { return s.number }

// Prompt returns the prompt text.
func (s *State) Prompt() string { return s.text }

// Phase returns the lifecycle phase.
func (s *State) Phase() Phase { return s.phase }

// CharAt returns the prompt rune at index.
func (s *State) CharAt(index int) (rune, bool) {
	if index < 0 || index >= len(s.prompt) {
		return 0, false
	}
	return s.prompt[index], true
}

// MarkSubmitted records a completion for connID. It returns false when the
// participant already submitted this round.
func (s *State) MarkSubmitted(connID string) bool {
	if _, ok := s.submitted[connID]; ok {
		return false
	}
	s.submitted[connID] = struct{}{}
	return true
}

// HasSubmitted reports whether connID submitted this round.
func (s *State) HasSubmitted(connID string) bool {
	_, ok := s.submitted[connID]
	return ok
}

// Forget drops a departed participant from the round bookkeeping.
func (s *State) Forget(connID string) {
	delete(s.submitted, connID)
}

// FinishedCount returns how many participants submitted this round.
func (s *State) FinishedCount() int { return len(s.submitted) }

// Complete reports whether every one of live submitted.
func (s *State) Complete(live []string) bool {
	if len(live) == 0 {
		return false
	}
	for _, id := range live {
		if _, ok := s.submitted[id]; !ok {
			return false
		}
	}
	return true
}

// MarkPublished flags the result as broadcast. Only the first call returns true.
func (s *State) MarkPublished() bool {
	if s.published {
		return false
	}
	s.published = true
	return true
}

// Published reports whether the round result was broadcast.
func (s *State) Published() bool { return s.published }
