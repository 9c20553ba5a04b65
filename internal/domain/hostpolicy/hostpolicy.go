// Package hostpolicy decides what happens to the host role and the round
// counter when a participant leaves.
package hostpolicy

import "github.com/okian/keyrace/internal/domain/model"

// Action is the outcome of a departure.
type Action int

// Departure outcomes.
const (
	// ActionNone: a non-host left and others remain.
	ActionNone Action = iota
	// ActionFullReset: the session is empty. Clear the host, reset the round
	// counter and purge every durable round record.
	ActionFullReset
	// ActionMigrate: the host left and others remain. Promote NewHost and reset
	// the round counter. Durable records of earlier rounds are kept.
	ActionMigrate
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionFullReset:
		return "full_reset"
	case ActionMigrate:
		return "migrate"
	default:
		return "unknown"
	}
}

// Decision is what the session applies after a departure.
type Decision struct {
	Action  Action
	NewHost model.Participant
}

// Decide evaluates a departure. remaining is the registry after the departure,
// in join order; the earliest joiner inherits the host role.
func Decide(departed model.Participant, remaining []model.Participant) Decision {
	if len(remaining) == 0 {
		return Decision{Action: ActionFullReset}
	}
	if !departed.IsHost {
		return Decision{Action: ActionNone}
	}
	return Decision{Action: ActionMigrate, NewHost: remaining[0]}
}
