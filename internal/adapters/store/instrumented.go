package store

import (
	"context"
	"errors"
	"time"

	"github.com/okian/keyrace/pkg/metrics"
)

// Store operation labels.
const (
	OpHSet     = "hset"
	OpHGetAll  = "hgetall"
	OpGet      = "get"
	OpSet      = "set"
	OpDel      = "del"
	OpFlushAll = "flushall"
)

// Option configures Instrument.
type Option func(*Instrumented)

// WithTimeout bounds every operation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Instrumented) {
		if d >= 0 {
			s.timeout = d
		}
	}
}

// Instrumented decorates a ScoreStore with a per-operation timeout and
// latency/error metrics.
type Instrumented struct {
	next    ScoreStore
	timeout time.Duration
}

// Instrument wraps next.
func Instrument(next ScoreStore, opts ...Option) *Instrumented {
	s := &Instrumented{next: next}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Instrumented) begin(ctx context.Context) (context.Context, context.CancelFunc, time.Time) {
	if s.timeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		return ctx, cancel, time.Now()
	}
	return ctx, func() {}, time.Now()
}

func observe(op string, start time.Time, err error) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
	if err != nil && !errors.Is(err, ErrNotFound) {
		metrics.RecordStoreError(op)
	}
}

func (s *Instrumented) HSetField(ctx context.Context, key, field, value string) error {
	ctx, cancel, start := s.begin(ctx)
	defer cancel()
	err := s.next.HSetField(ctx, key, field, value)
	observe(OpHSet, start, err)
	return err
}

func (s *Instrumented) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	ctx, cancel, start := s.begin(ctx)
	defer cancel()
	v, err := s.next.HGetAll(ctx, key)
	observe(OpHGetAll, start, err)
	return v, err
}

func (s *Instrumented) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel, start := s.begin(ctx)
	defer cancel()
	v, err := s.next.Get(ctx, key)
	observe(OpGet, start, err)
	return v, err
}

func (s *Instrumented) Set(ctx context.Context, key, value string) error {
	ctx, cancel, start := s.begin(ctx)
	defer cancel()
	err := s.next.Set(ctx, key, value)
	observe(OpSet, start, err)
	return err
}

func (s *Instrumented) Del(ctx context.Context, keys ...string) error {
	ctx, cancel, start := s.begin(ctx)
	defer cancel()
	err := s.next.Del(ctx, keys...)
	observe(OpDel, start, err)
	return err
}

func (s *Instrumented) FlushAll(ctx context.Context) error {
	ctx, cancel, start := s.begin(ctx)
	defer cancel()
	err := s.next.FlushAll(ctx)
	observe(OpFlushAll, start, err)
	return err
}

func (s *Instrumented) Close() error {
	return s.next.Close()
}
