// Package logger provides structured logging for respkv.
//
// This package wraps log/slog:
//
//   - logger.go: logger construction, dynamic level, global default
//   - context.go: context-aware logging with connection IDs
//
// Stored values never reach the log; commands are logged by name.
package logger
