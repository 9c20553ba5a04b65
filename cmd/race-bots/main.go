package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/okian/keyrace/internal/racebots"
)

const (
	defaultBots      = 5
	defaultRounds    = 3
	defaultErrorRate = 0.05
	defaultKeyDelay  = 5 * time.Millisecond
	defaultTimeout   = 30 * time.Second
	defaultRunLimit  = 10 * time.Minute
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		_, _ = os.Stderr.WriteString("Race failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "race-bots",
		Usage: "play typing rounds against a keyrace server and verify the results",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:5050", Usage: "base URL of the service"},
			&cli.IntFlag{Name: "bots", Value: defaultBots, Usage: "number of bots, the first one hosts"},
			&cli.IntFlag{Name: "rounds", Value: defaultRounds, Usage: "rounds to play"},
			&cli.Float64Flag{Name: "error-rate", Value: defaultErrorRate, Usage: "probability of a wrong keystroke"},
			&cli.DurationFlag{Name: "key-delay", Value: defaultKeyDelay, Usage: "pause between keystrokes"},
			&cli.DurationFlag{Name: "timeout", Value: defaultTimeout, Usage: "per-round and HTTP timeout"},
			&cli.DurationFlag{Name: "limit", Value: defaultRunLimit, Usage: "upper bound for the whole race"},
			&cli.Uint64Flag{Name: "seed", Usage: "seed for typing mistakes, 0 picks one"},
			&cli.StringFlag{Name: "log", Usage: "log file (default: race_log_TIMESTAMP.log)"},
			&cli.BoolFlag{Name: "verbose", Usage: "enable verbose logging"},
		},
		Action: race,
	}
}

func race(c *cli.Context) error {
	cfg := &racebots.Config{
		BaseURL:   c.String("url"),
		Bots:      c.Int("bots"),
		Rounds:    c.Int("rounds"),
		ErrorRate: c.Float64("error-rate"),
		KeyDelay:  c.Duration("key-delay"),
		Timeout:   c.Duration("timeout"),
		Seed:      c.Uint64("seed"),
		LogFile:   c.String("log"),
		Verbose:   c.Bool("verbose"),
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := racebots.SetupLogging(cfg.LogFile, cfg.Verbose); err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("limit"))
	defer cancel()

	report, err := racebots.Run(ctx, cfg)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.App.Writer, "best bot: %s (%d of %d rounds)\n", report.Best, report.Wins[report.Best], len(report.Rounds))
	return nil
}
