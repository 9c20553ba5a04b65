// Package worker runs the single goroutine that applies queued commands in
// arrival order.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/okian/keyrace/pkg/logger"
)

// ErrNotRunning is returned by Shutdown when Run was never started.
var ErrNotRunning = errors.New("dispatcher not running")

// Source defines how the dispatcher receives items.
type Source[T any] interface {
	Dequeue(ctx context.Context) <-chan T
}

// Handler applies one item. It runs on the dispatcher goroutine only.
type Handler[T any] func(ctx context.Context, item T)

// Dispatcher drains a Source on one goroutine, so handlers never run
// concurrently with each other.
type Dispatcher[T any] struct {
	source Source[T]
	handle Handler[T]
	name   string

	mu       sync.Mutex
	started  bool
	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewDispatcher creates a dispatcher with configuration options.
func NewDispatcher[T any](source Source[T], handle Handler[T], opts ...Option) *Dispatcher[T] {
	s := settings{name: "dispatcher"}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	return &Dispatcher[T]{
		source:   source,
		handle:   handle,
		name:     s.name,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   s.logger.Named(s.name),
	}
}

// Run applies items until ctx is done, Shutdown is called or the source closes.
// It blocks; callers start it on its own goroutine.
func (d *Dispatcher[T]) Run(ctx context.Context) {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		d.logger.Warn(ctx, "dispatcher already running")
		return
	}
	d.started = true
	d.mu.Unlock()
	defer close(d.done)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	items := d.source.Dequeue(runCtx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.shutdown:
			return
		case item, ok := <-items:
			if !ok {
				return
			}
			d.apply(runCtx, item)
		}
	}
}

func (d *Dispatcher[T]) apply(ctx context.Context, item T) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error(ctx, "handler panicked", logger.Any("panic", r))
		}
	}()
	d.handle(ctx, item)
}

// Done is closed once Run has returned.
func (d *Dispatcher[T]) Done() <-chan struct{} {
	return d.done
}

// Shutdown stops the loop after the item in flight and waits for Run to return.
func (d *Dispatcher[T]) Shutdown(ctx context.Context) error {
	d.stopOnce.Do(func() { close(d.shutdown) })

	d.mu.Lock()
	started := d.started
	d.mu.Unlock()
	if !started {
		return ErrNotRunning
	}

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		d.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
