// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New builds a Config with defaults; Load layers file and env on top.
// - Validation failures wrap ErrInvalidConfig, loader failures wrap ErrLoadConfig.
package config

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":5050".
	Addr string `koanf:"addr"`

	// QueueSize bounds the session command queue.
	QueueSize int `koanf:"queue_size"`

	// StoreBackend is "memory" or "redis".
	StoreBackend string `koanf:"store_backend"`

	// RedisAddr and RedisDB address the redis score store.
	RedisAddr string `koanf:"redis_addr"`
	RedisDB   int    `koanf:"redis_db"`

	// StoreTimeoutMS bounds every score store call made by the session worker.
	StoreTimeoutMS int `koanf:"store_timeout_ms"`

	// OutboxSize is the per-connection notification buffer; full outboxes get dropped.
	OutboxSize int `koanf:"outbox_size"`

	// WSReadTimeoutMS and WSWriteTimeoutMS bound websocket reads and writes.
	WSReadTimeoutMS  int `koanf:"ws_read_timeout_ms"`
	WSWriteTimeoutMS int `koanf:"ws_write_timeout_ms"`

	// WSMessageRate and WSMessageBurst limit inbound frames per connection.
	WSMessageRate  float64 `koanf:"ws_message_rate"`
	WSMessageBurst int     `koanf:"ws_message_burst"`

	// Prompts overrides the built-in prompt set when non-empty.
	Prompts []string `koanf:"prompts"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":5050",
		QueueSize:        1024,
		StoreBackend:     StoreMemory,
		RedisAddr:        "localhost:6379",
		RedisDB:          0,
		StoreTimeoutMS:   2000,
		OutboxSize:       32,
		WSReadTimeoutMS:  60_000,
		WSWriteTimeoutMS: 3000,
		WSMessageRate:    50,
		WSMessageBurst:   100,
	}
}
