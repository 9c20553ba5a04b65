// Package service coordinates the typing session: participants, the host role,
// the round lifecycle and scoring.
//
// Every operation is turned into a command and applied by one dispatcher
// goroutine, so registry, round state and store read-modify-write spans never
// interleave. Public methods are safe for concurrent use.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/keyrace/internal/adapters/mq/queue"
	"github.com/okian/keyrace/internal/adapters/mq/worker"
	"github.com/okian/keyrace/internal/adapters/store"
	"github.com/okian/keyrace/internal/domain/registry"
	"github.com/okian/keyrace/internal/domain/round"
	"github.com/okian/keyrace/pkg/logger"
	"github.com/okian/keyrace/pkg/metrics"
)

const (
	defaultQueueSize    = 1024
	defaultStoreTimeout = 2 * time.Second
	leaveRetryInterval  = 5 * time.Millisecond
)

// Session is the single game session.
type Session struct {
	mu sync.RWMutex

	// Collaborators
	store   store.ScoreStore
	gateway Gateway
	chooser *round.Chooser

	// Owned by the dispatcher goroutine once started.
	registry *registry.Registry
	round    *round.State

	commands   *queue.InMemoryQueue[command]
	dispatcher *worker.Dispatcher[command]

	// Configuration
	queueSize    int
	storeTimeout time.Duration

	// State
	started bool
	stopped chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Session.
type Option func(*Session)

// WithQueueSize sets how many commands may wait for the dispatcher.
func WithQueueSize(size int) Option {
	return func(s *Session) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithStoreTimeout bounds every store operation.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

// WithChooser sets the prompt chooser.
func WithChooser(c *round.Chooser) Option {
	return func(s *Session) {
		if c != nil {
			s.chooser = c
		}
	}
}

// WithRegistry replaces the participant registry, mostly to inject a clock.
func WithRegistry(r *registry.Registry) Option {
	return func(s *Session) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithLogger sets a custom logger for the session.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Session over st. A nil gateway discards notices.
func New(st store.ScoreStore, gateway Gateway, opts ...Option) *Session {
	if gateway == nil {
		gateway = nopGateway{}
	}
	s := &Session{
		gateway:      gateway,
		chooser:      round.NewChooser(),
		registry:     registry.New(),
		round:        round.New(),
		queueSize:    defaultQueueSize,
		storeTimeout: defaultStoreTimeout,
		stopped:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.store = store.Instrument(st, store.WithTimeout(s.storeTimeout))
	return s
}

// Start launches the dispatcher. It is a no-op when already started.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	select {
	case <-s.stopped:
		return ErrStopped
	default:
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("session")
	}

	s.commands = queue.NewInMemoryQueue[command](queue.WithCapacity(s.queueSize))
	s.dispatcher = worker.NewDispatcher[command](s.commands, s.apply,
		worker.WithName("dispatcher"),
		worker.WithLogger(s.logger),
	)
	go s.dispatcher.Run(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "session started",
		logger.Int("queue_size", s.queueSize),
		logger.Duration("store_timeout", s.storeTimeout),
		logger.Int("prompts", len(s.chooser.Prompts())),
	)
	return nil
}

// Stop shuts the dispatcher down. Callers of commands still queued get
// ErrStopped.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping session...")
	_ = s.commands.Close()
	err := s.dispatcher.Shutdown(ctx)
	close(s.stopped)
	s.started = false

	if err != nil {
		return fmt.Errorf("stop session: %w", err)
	}
	s.logger.Info(ctx, "session stopped")
	return nil
}

// QueueLength returns the number of commands waiting for the dispatcher.
func (s *Session) QueueLength(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.commands == nil {
		return 0
	}
	return s.commands.Len(ctx)
}

// enqueue hands cmd to the dispatcher. It never blocks on a full queue.
func (s *Session) enqueue(ctx context.Context, cmd command) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		select {
		case <-s.stopped:
			return ErrStopped
		default:
			return ErrNotStarted
		}
	}

	err := s.commands.Enqueue(ctx, cmd)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, queue.ErrFull):
		return ErrBackpressure
	case errors.Is(err, queue.ErrClosed):
		return ErrStopped
	default:
		return err
	}
}

// await blocks until cmd has been applied, ctx is done or the session stops.
func (s *Session) await(ctx context.Context, cmd command) (any, error) {
	select {
	case res := <-cmd.reply:
		return res.value, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.stopped:
		return nil, ErrStopped
	}
}

// do runs fn on the dispatcher and returns its outcome.
func do[T any](ctx context.Context, s *Session, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	cmd := newCommand(name, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err := s.enqueue(ctx, cmd); err != nil {
		metrics.RecordCommandError(name, Code(err))
		return zero, err
	}
	v, err := s.await(ctx, cmd)
	if err != nil {
		return zero, err
	}
	out, _ := v.(T)
	return out, nil
}
