package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/yndnr/respkv/internal/telemetry/logger"
)

// Read buffer bounds.
const (
	MinReadBufferSize = 16
	MaxReadBufferSize = 1 << 20
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyRedis(&cfg.Server.Redis); err != nil {
		return err
	}
	if err := verifyHTTP(&cfg.Server.HTTP); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyRedis(cfg *RedisConfig) error {
	if cfg.Addr == "" {
		return errors.New("server.redis.addr is required")
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("server.redis.addr: %w", err)
	}
	if cfg.ReadBufferSize < MinReadBufferSize || cfg.ReadBufferSize > MaxReadBufferSize {
		return fmt.Errorf("server.redis.read_buffer_size must be between %d and %d", MinReadBufferSize, MaxReadBufferSize)
	}
	if cfg.IdleTimeout < 0 {
		return errors.New("server.redis.idle_timeout must not be negative")
	}
	if cfg.RateLimit < 0 {
		return errors.New("server.redis.rate_limit must not be negative")
	}
	return nil
}

func verifyHTTP(cfg *HTTPConfig) error {
	if cfg.Addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("server.http.addr: %w", err)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "", "json", "text", "console":
		return nil
	default:
		return fmt.Errorf("log.format %q is not one of json, text", cfg.Format)
	}
}
