package config

import "time"

// ServerConfig is the root configuration for respkv-server.
type ServerConfig struct {
	Server ServerSection `koanf:"server"`
	Log    LogSection    `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	Redis RedisConfig `koanf:"redis"`
	HTTP  HTTPConfig  `koanf:"http"`
}

// RedisConfig configures the RESP listener.
type RedisConfig struct {
	Addr string `koanf:"addr"`

	// ReadBufferSize is the size of one socket read; frames larger than
	// this are answered with a truncation error.
	ReadBufferSize int `koanf:"read_buffer_size"`

	// IdleTimeout closes connections idle for this long. Zero disables it.
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	// RateLimit caps commands per second per client IP. Zero disables it.
	RateLimit int `koanf:"rate_limit"`
}

// HTTPConfig configures the admin listener serving /metrics and /healthz.
// An empty Addr disables it.
type HTTPConfig struct {
	Addr string `koanf:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
