package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the application logger interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
	// Slog returns the underlying *slog.Logger for components that take one.
	Slog() *slog.Logger
}

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level: debug, info, warn or error.
	Level string
	// Format is json (default) or text. console is an alias for text.
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
	// AddSource records the caller's file and line.
	AddSource bool
}

// DefaultConfig returns the configuration used before SetDefault is called.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Output: os.Stderr}
}

// levels maps accepted level names to slog levels. The empty name is info.
var levels = map[string]slog.Level{
	"":        slog.LevelInfo,
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// level is shared by every logger built with New, so SetLevel applies
// to all of them at once.
var level = new(slog.LevelVar)

// New builds a logger from cfg and makes cfg.Level the current level.
func New(cfg Config) (Logger, error) {
	lvl, ok := levels[strings.ToLower(cfg.Level)]
	if !ok {
		return nil, fmt.Errorf("logger: unknown level %q", cfg.Level)
	}

	handler, err := newHandler(cfg)
	if err != nil {
		return nil, err
	}
	level.Set(lvl)

	return &ctxLogger{sl: slog.New(handler), ctx: context.Background()}, nil
}

func newHandler(cfg Config) (slog.Handler, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level, AddSource: cfg.AddSource}

	switch strings.ToLower(cfg.Format) {
	case "", "json":
		return slog.NewJSONHandler(out, opts), nil
	case "text", "console":
		return slog.NewTextHandler(out, opts), nil
	default:
		return nil, fmt.Errorf("logger: unknown format %q", cfg.Format)
	}
}

// SetLevel changes the level of every logger at runtime. Unknown names
// select info.
func SetLevel(name string) {
	lvl, ok := levels[strings.ToLower(name)]
	if !ok {
		lvl = slog.LevelInfo
	}
	level.Set(lvl)
}

// GetLevel returns the current level name.
func GetLevel() string {
	return strings.ToLower(level.Level().String())
}

// ValidLevel reports whether name is an accepted level.
func ValidLevel(name string) bool {
	_, ok := levels[strings.ToLower(name)]
	return ok
}

// ctxLogger logs through sl, passing ctx to the handler.
type ctxLogger struct {
	sl  *slog.Logger
	ctx context.Context
}

func (l *ctxLogger) Debug(msg string, args ...any) { l.sl.DebugContext(l.ctx, msg, args...) }
func (l *ctxLogger) Info(msg string, args ...any)  { l.sl.InfoContext(l.ctx, msg, args...) }
func (l *ctxLogger) Warn(msg string, args ...any)  { l.sl.WarnContext(l.ctx, msg, args...) }
func (l *ctxLogger) Error(msg string, args ...any) { l.sl.ErrorContext(l.ctx, msg, args...) }

func (l *ctxLogger) With(args ...any) Logger {
	return &ctxLogger{sl: l.sl.With(args...), ctx: l.ctx}
}

func (l *ctxLogger) WithContext(ctx context.Context) Logger {
	return &ctxLogger{sl: l.sl, ctx: ctx}
}

func (l *ctxLogger) Slog() *slog.Logger { return l.sl }

var std atomic.Pointer[ctxLogger]

func init() {
	l, _ := New(DefaultConfig())
	std.Store(l.(*ctxLogger))
}

// SetDefault replaces the package logger and installs it as slog.Default.
// Loggers not created by New are ignored.
func SetDefault(l Logger) {
	cl, ok := l.(*ctxLogger)
	if !ok {
		return
	}
	std.Store(cl)
	slog.SetDefault(cl.sl)
}

// Default returns the package logger.
func Default() Logger {
	return std.Load()
}

// Debug logs through the package logger.
func Debug(msg string, args ...any) { std.Load().Debug(msg, args...) }

// Info logs through the package logger.
func Info(msg string, args ...any) { std.Load().Info(msg, args...) }

// Warn logs through the package logger.
func Warn(msg string, args ...any) { std.Load().Warn(msg, args...) }

// Error logs through the package logger.
func Error(msg string, args ...any) { std.Load().Error(msg, args...) }
