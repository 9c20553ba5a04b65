package worker

import (
	"github.com/okian/keyrace/pkg/logger"
)

// Option applies a configuration option to a Dispatcher.
type Option func(*settings)

type settings struct {
	name   string
	logger logger.Logger
}

// WithName sets the dispatcher name for identification and logging.
func WithName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.name = name
		}
	}
}

// WithLogger sets a custom logger for the dispatcher.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
