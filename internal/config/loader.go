package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override, e.g. KEYRACE_ADDR.
const EnvPrefix = "KEYRACE_"

// FileEnv names the environment variable holding an optional YAML config path.
const FileEnv = EnvPrefix + "CONFIG"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if KEYRACE_CONFIG is set
//  3. env (prefix KEYRACE_)
func Load(_ context.Context) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// KEYRACE_QUEUE_SIZE -> queue_size; underscores are kept to match koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values the service cannot run without.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.StoreBackend != StoreMemory && c.StoreBackend != StoreRedis:
		return fmt.Errorf("%w: unknown store_backend %q", ErrInvalidConfig, c.StoreBackend)
	case c.StoreBackend == StoreRedis && strings.TrimSpace(c.RedisAddr) == "":
		return fmt.Errorf("%w: redis_addr must not be empty for the redis backend", ErrInvalidConfig)
	case c.OutboxSize < 1:
		return fmt.Errorf("%w: outbox_size must be positive", ErrInvalidConfig)
	case c.WSMessageRate <= 0 || c.WSMessageBurst < 1:
		return fmt.Errorf("%w: ws_message_rate and ws_message_burst must be positive", ErrInvalidConfig)
	}
	for i, p := range c.Prompts {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: prompts[%d] is empty", ErrInvalidConfig, i)
		}
	}
	return nil
}
