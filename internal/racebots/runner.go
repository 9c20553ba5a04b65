package racebots

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/okian/keyrace/internal/domain/model"
	"github.com/okian/keyrace/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Report summarizes a finished race.
type Report struct {
	Rounds []model.RoundResult
	Wins   map[string]int
	Best   string
	Stats  Stats
}

// Run connects cfg.Bots bots, plays cfg.Rounds rounds and checks that every
// bot saw the same single result per round, matching the stored one.
func Run(ctx context.Context, cfg *Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Get().Named("racebots")
	report := &Report{Wins: make(map[string]int), Stats: Stats{StartTime: time.Now()}}

	log.Info(ctx, "starting race",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("bots", cfg.Bots),
		logger.Int("rounds", cfg.Rounds),
		logger.Any("errorRate", cfg.ErrorRate),
		logger.Duration("keyDelay", cfg.KeyDelay),
	)

	api := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	if err := api.Healthy(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	bots, err := connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, b := range bots {
			_ = b.Close()
		}
	}()

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	for i := 0; i < cfg.Rounds; i++ {
		res, err := playRound(ctx, cfg, bots, seed+uint64(i))
		if err != nil {
			return report, fmt.Errorf("round %d: %w", i+1, err)
		}

		stored, err := api.Result(ctx, res.RoundNumber)
		if err != nil {
			return report, err
		}
		if stored != res {
			return report, fmt.Errorf("%w: broadcast %+v, stored %+v", ErrMismatch, res, stored)
		}

		report.Rounds = append(report.Rounds, res)
		report.Wins[res.Winner]++
		log.Info(ctx, "round finished",
			logger.Round(res.RoundNumber),
			logger.String("winner", res.Winner),
			logger.Int("score", res.WinnerScore),
		)
	}

	report.Best = best(report.Wins)
	for _, b := range bots {
		report.Stats.KeystrokesSent += int(b.sent.Load())
		report.Stats.MistakesSent += int(b.mistakes.Load())
		report.Stats.RejectedMessages += int(b.rejected.Load())
	}
	report.Stats.EndTime = time.Now()
	report.Stats.Duration = report.Stats.EndTime.Sub(report.Stats.StartTime)

	log.Info(ctx, "race completed",
		logger.String("best", report.Best),
		logger.Int("wins", report.Wins[report.Best]),
		logger.Int("keystrokes", report.Stats.KeystrokesSent),
		logger.Int("mistakes", report.Stats.MistakesSent),
		logger.Int("rejected", report.Stats.RejectedMessages),
		logger.Duration("duration", report.Stats.Duration),
	)
	return report, nil
}

// connect dials the host first so it is the earliest joiner, then the rest
// concurrently.
func connect(ctx context.Context, cfg *Config) ([]*Bot, error) {
	bots := make([]*Bot, cfg.Bots)

	host, err := Dial(ctx, cfg.BaseURL, botName(0))
	if err != nil {
		return nil, err
	}
	bots[0] = host

	hctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	isHost, err := host.AwaitHost(hctx)
	cancel()
	if err != nil || !isHost {
		_ = host.Close()
		return nil, fmt.Errorf("%w: %v", ErrNotHost, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 1; i < cfg.Bots; i++ {
		g.Go(func() error {
			b, err := Dial(gctx, cfg.BaseURL, botName(i))
			if err != nil {
				return err
			}
			bots[i] = b
			actx, cancel := context.WithTimeout(gctx, cfg.Timeout)
			defer cancel()
			_, err = b.AwaitHost(actx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		for _, b := range bots {
			if b != nil {
				_ = b.Close()
			}
		}
		return nil, err
	}
	return bots, nil
}

func playRound(ctx context.Context, cfg *Config, bots []*Bot, seed uint64) (model.RoundResult, error) {
	rctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := bots[0].Restart(rctx); err != nil {
		return model.RoundResult{}, err
	}

	results := make([]model.RoundResult, len(bots))
	g, gctx := errgroup.WithContext(rctx)
	for i, b := range bots {
		rng := rand.New(rand.NewPCG(seed, uint64(i)))
		g.Go(func() error {
			prompt, err := b.AwaitPrompt(gctx)
			if err != nil {
				return err
			}
			if err := b.Race(gctx, prompt, cfg.ErrorRate, cfg.KeyDelay, rng); err != nil {
				return err
			}
			results[i], err = b.AwaitResult(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return model.RoundResult{}, err
	}

	return verify(bots, results)
}

// verify checks that all bots got the same result and that the winner is one
// of them.
func verify(bots []*Bot, results []model.RoundResult) (model.RoundResult, error) {
	first := results[0]
	for i, r := range results[1:] {
		if r != first {
			return first, fmt.Errorf("%w: %s got %+v, %s got %+v", ErrMismatch, bots[0].Name, first, bots[i+1].Name, r)
		}
	}
	for _, b := range bots {
		if b.Name == first.Winner {
			return first, nil
		}
	}
	return first, fmt.Errorf("%w: %q", ErrUnknownBot, first.Winner)
}

// best returns the bot with most wins, ties broken by name.
func best(wins map[string]int) string {
	name, top := "", -1
	for n, w := range wins {
		if w > top || (w == top && n < name) {
			name, top = n, w
		}
	}
	return name
}

func botName(i int) string {
	return fmt.Sprintf("bot-%02d-%s", i, uuid.NewString()[:8])
}
