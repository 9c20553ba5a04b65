package service

import (
	"context"
	"time"

	"github.com/okian/keyrace/pkg/logger"
	"github.com/okian/keyrace/pkg/metrics"
)

// Command names, used as metric labels and in logs.
const (
	cmdJoin      = "join"
	cmdLeave     = "leave"
	cmdRestart   = "restart"
	cmdKeystroke = "typed_char"
	cmdLock      = "finished_typing"
	cmdSubmit    = "finish"
	cmdResults   = "results"
	cmdStats     = "stats"
	cmdView      = "round_view"
)

type result struct {
	value any
	err   error
}

// command is one unit of work for the dispatcher. reply has room for exactly
// one result so the dispatcher never blocks on a caller that went away.
type command struct {
	name  string
	run   func(ctx context.Context) (any, error)
	reply chan result
}

func newCommand(name string, run func(ctx context.Context) (any, error)) command {
	return command{name: name, run: run, reply: make(chan result, 1)}
}

// apply is the dispatcher handler.
func (s *Session) apply(ctx context.Context, cmd command) {
	start := time.Now()
	v, err := cmd.run(ctx)
	metrics.RecordCommandLatency(cmd.name, float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		metrics.RecordCommandError(cmd.name, Code(err))
		s.logger.Debug(ctx, "command rejected", logger.String("command", cmd.name), logger.Error(err))
	}
	cmd.reply <- result{value: v, err: err}
}
