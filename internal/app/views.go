package service

import (
	"context"

	"github.com/okian/keyrace/internal/domain/types"
)

// Stats returns session counters.
func (s *Session) Stats(ctx context.Context) (types.Stats, error) {
	st, err := do(ctx, s, cmdStats, func(context.Context) (types.Stats, error) {
		st := types.Stats{
			Participants: s.registry.Count(),
			Round:        s.round.Number(),
			Phase:        s.round.Phase().String(),
			Finished:     s.round.FinishedCount(),
			Published:    s.round.Published(),
		}
		if h, ok := s.registry.Host(); ok {
			st.Host = h.Identity
		}
		return st, nil
	})
	if err != nil {
		return types.Stats{}, err
	}
	st.QueueLength = s.QueueLength(ctx)
	st.QueueCapacity = s.queueSize
	return st, nil
}

// Round returns the current round and who is playing it.
func (s *Session) Round(ctx context.Context) (types.RoundView, error) {
	return do(ctx, s, cmdView, func(context.Context) (types.RoundView, error) {
		v := types.RoundView{
			Round:     s.round.Number(),
			Prompt:    s.round.Prompt(),
			Phase:     s.round.Phase().String(),
			Locked:    s.round.Locked(),
			Published: s.round.Published(),
		}
		for _, p := range s.registry.Participants() {
			v.Participants = append(v.Participants, types.ParticipantView{
				Identity:  p.Identity,
				IsHost:    p.IsHost,
				Submitted: s.round.HasSubmitted(p.ConnID),
				JoinedAt:  p.JoinedAt,
			})
		}
		if v.Participants == nil {
			v.Participants = []types.ParticipantView{}
		}
		return v, nil
	})
}
