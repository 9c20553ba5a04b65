package queue

import "errors"

// Sentinel enqueue failures.
var (
	ErrFull   = errors.New("queue full")
	ErrClosed = errors.New("queue closed")
)
