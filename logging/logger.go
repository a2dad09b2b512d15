// Package logging provides a tiny abstraction over slog so runtime code can
// depend on a minimal interface while callers plug in any structured logger.
// The NoOpLogger keeps logging strictly opt-in for embedded and test use.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// LogLevel is a thin enum for user friendly level configuration decoupled
// from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger defines the minimal structured logging interface used throughout the
// runtime. Args follow slog key/value conventions.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// NewSlogAdapter creates a Logger from an existing *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewSlogLogger builds a Logger writing to stdout with the given level and
// format ("json" or "text").
func NewSlogLogger(level LogLevel, format string) Logger {
	return NewSlogLoggerTo(os.Stdout, level, format)
}

// NewSlogLoggerTo builds a Logger writing to w with the given level and format.
func NewSlogLoggerTo(w io.Writer, level LogLevel, format string) Logger {
	opts := &slog.HandlerOptions{Level: slogLevel(level)}
	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return NewSlogAdapter(slog.New(handler))
}

// NoOpLogger discards all log messages. Useful for testing or when logging is
// disabled.
type NoOpLogger struct{}

// Debug discards a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info discards an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn discards a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error discards an error message.
func (NoOpLogger) Error(string, ...any) {}

// OrNoOp returns l if non-nil, otherwise a NoOpLogger.
func OrNoOp(l Logger) Logger {
	if l == nil {
		return NoOpLogger{}
	}
	return l
}
