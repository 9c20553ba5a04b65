// Package scoring turns keystroke tallies into score snapshots and picks the
// round leader from a scoreboard.
package scoring

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/okian/keyrace/internal/domain/model"
)

// Tally values written per prompt index.
const (
	MarkCorrect   = "1"
	MarkIncorrect = "0"
)

// Sentinel errors.
var (
	ErrEmptyScoreboard = errors.New("scoreboard is empty")
	ErrBadSnapshot     = errors.New("malformed score snapshot")
)

// Mark converts a correctness flag to its tally value.
func Mark(correct bool) string {
	if correct {
		return MarkCorrect
	}
	return MarkIncorrect
}

// Summarize counts correct and incorrect entries of a tally. Unknown values
// are ignored.
func Summarize(identity string, tally map[string]string) model.ScoreSnapshot {
	s := model.ScoreSnapshot{Identity: identity}
	for _, v := range tally {
		switch v {
		case MarkCorrect:
			s.Correct++
		case MarkIncorrect:
			s.Incorrect++
		}
	}
	return s
}

// Encode renders a snapshot the way it is stored on the scoreboard.
func Encode(s model.ScoreSnapshot) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode snapshot for %s: %w", s.Identity, err)
	}
	return string(raw), nil
}

// Decode parses a stored snapshot.
func Decode(identity, raw string) (model.ScoreSnapshot, error) {
	s := model.ScoreSnapshot{Identity: identity}
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return model.ScoreSnapshot{}, fmt.Errorf("%w: %s: %w", ErrBadSnapshot, identity, err)
	}
	s.Identity = identity
	return s, nil
}

// Leader returns the snapshot with the highest Score over board, a mapping
// identity -> encoded snapshot as returned by the store.
//
// Ties go to whichever identity the map iteration yields first. That order is
// undefined, so tied rounds have no stable winner.
func Leader(board map[string]string) (model.ScoreSnapshot, error) {
	if len(board) == 0 {
		return model.ScoreSnapshot{}, ErrEmptyScoreboard
	}
	var (
		best  model.ScoreSnapshot
		found bool
	)
	for identity, raw := range board {
		s, err := Decode(identity, raw)
		if err != nil {
			return model.ScoreSnapshot{}, err
		}
		if !found || s.Score() > best.Score() {
			best, found = s, true
		}
	}
	return best, nil
}
