package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/okian/keyrace/internal/adapters/store"
	"github.com/okian/keyrace/internal/domain/hostpolicy"
	"github.com/okian/keyrace/internal/domain/model"
	"github.com/okian/keyrace/internal/domain/scoring"
	"github.com/okian/keyrace/pkg/logger"
	"github.com/okian/keyrace/pkg/metrics"
)

// Audience labels for notification metrics.
const (
	audienceAll = "all"
	audienceOne = "one"
)

// Join registers a connection and tells it whether it holds the host role.
// A round already in play is sent to the newcomer so it can take part.
func (s *Session) Join(ctx context.Context, connID, identity string) (model.Participant, error) {
	return do(ctx, s, cmdJoin, func(ctx context.Context) (model.Participant, error) {
		p, isHost := s.registry.Join(connID, identity)
		metrics.UpdateParticipants(s.registry.Count())

		s.send(ctx, connID, model.HostNotice(isHost))
		if s.round.Active() {
			s.send(ctx, connID, model.TextNotice(s.round.Prompt()))
			if s.round.Locked() {
				s.send(ctx, connID, model.LockNotice())
			}
		}

		s.logger.Info(ctx, "participant joined",
			logger.ConnID(connID),
			logger.String("identity", p.Identity),
			logger.Bool("host", isHost),
		)
		return p, nil
	})
}

// Leave removes a connection and applies the host migration policy. Unknown
// connections are ignored. A full queue does not drop the departure; Leave
// retries until ctx is done.
func (s *Session) Leave(ctx context.Context, connID string) error {
	cmd := newCommand(cmdLeave, func(ctx context.Context) (any, error) {
		return nil, s.leave(ctx, connID)
	})
	for {
		err := s.enqueue(ctx, cmd)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrBackpressure) {
			metrics.RecordCommandError(cmdLeave, Code(err))
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(leaveRetryInterval):
		}
	}
	_, err := s.await(ctx, cmd)
	return err
}

func (s *Session) leave(ctx context.Context, connID string) error {
	departed, ok := s.registry.Leave(connID)
	if !ok {
		return nil
	}
	s.round.Forget(connID)
	metrics.UpdateParticipants(s.registry.Count())

	decision := hostpolicy.Decide(departed, s.registry.Participants())
	s.logger.Info(ctx, "participant left",
		logger.ConnID(connID),
		logger.String("identity", departed.Identity),
		logger.String("action", decision.Action.String()),
	)

	switch decision.Action {
	case hostpolicy.ActionFullReset:
		s.registry.ClearHost()
		s.round.Reset()
		metrics.RecordSessionReset()
		metrics.UpdateCurrentRound(0)
		if err := s.store.FlushAll(ctx); err != nil {
			s.logger.Error(ctx, "flush after last participant left failed", logger.Error(err))
			return fmt.Errorf("flush store: %w", err)
		}
	case hostpolicy.ActionMigrate:
		s.registry.Promote(decision.NewHost.ConnID)
		s.round.Reset()
		metrics.RecordHostMigration()
		metrics.UpdateCurrentRound(0)
		s.send(ctx, decision.NewHost.ConnID, model.HostNotice(true))
		s.logger.Info(ctx, "host migrated",
			logger.ConnID(decision.NewHost.ConnID),
			logger.String("identity", decision.NewHost.Identity),
		)
	case hostpolicy.ActionNone:
		if _, err := s.publishIfComplete(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Restart starts the next round with a fresh prompt. Only the host may restart.
func (s *Session) Restart(ctx context.Context, connID string) (int, error) {
	return do(ctx, s, cmdRestart, func(ctx context.Context) (int, error) {
		if !s.registry.Contains(connID) {
			return 0, ErrUnknownParticipant
		}
		if !s.registry.IsHost(connID) {
			return 0, ErrNotHost
		}

		next := s.round.Number() + 1
		prompt := s.chooser.Next()

		// Round numbers repeat after a reset; clear what an earlier
		// round with the same number left behind.
		stale := []string{store.ScoresKey(next), store.WinnerKey(next), store.WinnerScoreKey(next)}
		for _, p := range s.registry.Participants() {
			stale = append(stale, store.TallyKey(next, p.ConnID))
		}
		if err := s.store.Del(ctx, stale...); err != nil {
			return 0, fmt.Errorf("clear round %d: %w", next, err)
		}
		if err := s.store.Set(ctx, store.PromptKey(next), prompt); err != nil {
			return 0, fmt.Errorf("store prompt of round %d: %w", next, err)
		}

		n := s.round.Restart(prompt)
		metrics.RecordRoundStarted(n)
		metrics.UpdateLeader(0, 0)
		s.broadcast(ctx, model.TextNotice(prompt))
		s.logger.Info(ctx, "round started", logger.Round(n), logger.ConnID(connID))
		return n, nil
	})
}

// RecordKeystroke stores whether char matches the prompt at index.
func (s *Session) RecordKeystroke(ctx context.Context, connID string, index int, char string) (bool, error) {
	correct, err := do(ctx, s, cmdKeystroke, func(ctx context.Context) (bool, error) {
		if !s.registry.Contains(connID) {
			return false, ErrUnknownParticipant
		}
		if !s.round.Active() {
			return false, ErrNoActiveRound
		}
		if s.round.Locked() {
			return false, ErrRoundLocked
		}
		want, ok := s.round.CharAt(index)
		if !ok {
			return false, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
		}

		got, size := utf8.DecodeRuneInString(char)
		correct := size > 0 && size == len(char) && got == want

		n := s.round.Number()
		if err := s.store.HSetField(ctx, store.TallyKey(n, connID), strconv.Itoa(index), scoring.Mark(correct)); err != nil {
			return false, fmt.Errorf("record keystroke: %w", err)
		}
		return correct, nil
	})

	switch {
	case err != nil:
		metrics.RecordKeystroke(metrics.KeystrokeRejected)
	case correct:
		metrics.RecordKeystroke(metrics.KeystrokeCorrect)
	default:
		metrics.RecordKeystroke(metrics.KeystrokeIncorrect)
	}
	return correct, err
}

// FinishTyping locks the round. Only the first caller of a round triggers the
// lock_typing broadcast; it reports true. Later calls are no-ops.
func (s *Session) FinishTyping(ctx context.Context, connID string) (bool, error) {
	return do(ctx, s, cmdLock, func(ctx context.Context) (bool, error) {
		if !s.registry.Contains(connID) {
			return false, ErrUnknownParticipant
		}
		if !s.round.Active() {
			return false, ErrNoActiveRound
		}
		if !s.round.Lock() {
			s.logger.Debug(ctx, "round already locked", logger.ConnID(connID), logger.Round(s.round.Number()))
			return false, nil
		}
		metrics.RecordRoundLocked()
		s.broadcast(ctx, model.LockNotice())
		s.logger.Info(ctx, "round locked", logger.Round(s.round.Number()), logger.ConnID(connID))
		return true, nil
	})
}

// SubmitCompletion scores the caller's tally and recomputes the round winner.
// It returns the result, and broadcasts it, only for the submission that
// completes the round. A second submission from the same participant in one
// round is ignored. If any store call fails the submission is not counted.
func (s *Session) SubmitCompletion(ctx context.Context, connID string) (*model.RoundResult, error) {
	return do(ctx, s, cmdSubmit, func(ctx context.Context) (*model.RoundResult, error) {
		p, ok := s.registry.Get(connID)
		if !ok {
			return nil, ErrUnknownParticipant
		}
		if !s.round.Active() {
			return nil, ErrNoActiveRound
		}
		if s.round.HasSubmitted(connID) {
			metrics.RecordDuplicateCompletion()
			s.logger.Debug(ctx, "duplicate completion ignored", logger.ConnID(connID))
			return nil, nil
		}

		n := s.round.Number()
		tally, err := s.store.HGetAll(ctx, store.TallyKey(n, connID))
		if err != nil {
			return nil, fmt.Errorf("read tally: %w", err)
		}
		snapshot := scoring.Summarize(p.Identity, tally)
		encoded, err := scoring.Encode(snapshot)
		if err != nil {
			return nil, err
		}
		if err := s.store.HSetField(ctx, store.ScoresKey(n), p.Identity, encoded); err != nil {
			return nil, fmt.Errorf("write snapshot: %w", err)
		}

		board, err := s.store.HGetAll(ctx, store.ScoresKey(n))
		if err != nil {
			return nil, fmt.Errorf("read scoreboard: %w", err)
		}
		leader, err := scoring.Leader(board)
		if err != nil {
			return nil, fmt.Errorf("pick leader: %w", err)
		}
		if err := s.store.Set(ctx, store.WinnerKey(n), leader.Identity); err != nil {
			return nil, fmt.Errorf("write winner: %w", err)
		}
		if err := s.store.Set(ctx, store.WinnerScoreKey(n), strconv.Itoa(leader.Score())); err != nil {
			return nil, fmt.Errorf("write winner score: %w", err)
		}

		s.round.MarkSubmitted(connID)
		metrics.RecordCompletion()
		metrics.UpdateLeader(leader.Score(), len(board))
		s.logger.Info(ctx, "completion scored",
			logger.ConnID(connID),
			logger.Round(n),
			logger.Int("correct", snapshot.Correct),
			logger.Int("incorrect", snapshot.Incorrect),
			logger.Int("finished", s.round.FinishedCount()),
			logger.Int("participants", s.registry.Count()),
		)

		return s.publishIfComplete(ctx)
	})
}

// Results returns the durable outcome of round n.
func (s *Session) Results(ctx context.Context, n int) (model.RoundResult, error) {
	return do(ctx, s, cmdResults, func(ctx context.Context) (model.RoundResult, error) {
		return s.loadResult(ctx, n)
	})
}

// publishIfComplete broadcasts the round result once every live participant
// has submitted. It returns nil when the round is not complete or was
// already published.
func (s *Session) publishIfComplete(ctx context.Context) (*model.RoundResult, error) {
	if !s.round.Active() || s.round.Published() {
		return nil, nil
	}
	live := make([]string, 0, s.registry.Count())
	for _, p := range s.registry.Participants() {
		live = append(live, p.ConnID)
	}
	if !s.round.Complete(live) {
		return nil, nil
	}

	res, err := s.loadResult(ctx, s.round.Number())
	if err != nil {
		return nil, fmt.Errorf("load result: %w", err)
	}
	s.round.MarkPublished()
	metrics.RecordResultPublished()
	s.broadcast(ctx, model.RoundsNotice(res))
	s.logger.Info(ctx, "round result published",
		logger.Round(res.RoundNumber),
		logger.String("winner", res.Winner),
		logger.Int("winner_score", res.WinnerScore),
	)
	return &res, nil
}

func (s *Session) loadResult(ctx context.Context, n int) (model.RoundResult, error) {
	winner, err := s.store.Get(ctx, store.WinnerKey(n))
	if errors.Is(err, store.ErrNotFound) {
		return model.RoundResult{}, fmt.Errorf("%w: round %d", ErrNoWinnerYet, n)
	}
	if err != nil {
		return model.RoundResult{}, fmt.Errorf("read winner: %w", err)
	}
	raw, err := s.store.Get(ctx, store.WinnerScoreKey(n))
	if errors.Is(err, store.ErrNotFound) {
		return model.RoundResult{}, fmt.Errorf("%w: round %d", ErrNoWinnerYet, n)
	}
	if err != nil {
		return model.RoundResult{}, fmt.Errorf("read winner score: %w", err)
	}
	score, err := strconv.Atoi(raw)
	if err != nil {
		return model.RoundResult{}, fmt.Errorf("parse winner score %q: %w", raw, err)
	}

	prompt, err := s.store.Get(ctx, store.PromptKey(n))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return model.RoundResult{}, fmt.Errorf("read prompt: %w", err)
	}
	if n == s.round.Number() && s.round.Active() {
		prompt = s.round.Prompt()
	}

	return model.RoundResult{
		RoundNumber: n,
		Prompt:      prompt,
		Winner:      winner,
		WinnerScore: score,
	}, nil
}

func (s *Session) broadcast(ctx context.Context, n model.Notice) {
	metrics.RecordNotification(n.Type, audienceAll)
	s.gateway.Broadcast(ctx, n)
}

func (s *Session) send(ctx context.Context, connID string, n model.Notice) {
	metrics.RecordNotification(n.Type, audienceOne)
	s.gateway.Send(ctx, connID, n)
}
