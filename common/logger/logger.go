package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Logger wraps slog.Logger with kinship-specific scoping helpers
type Logger struct {
	*slog.Logger
}

// New creates a logger writing to stdout. format is "json" or anything
// else for colored console output.
func New(level, format string) *Logger {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter creates a logger writing to w
func NewWithWriter(w io.Writer, level, format string) *Logger {
	lvl := ParseLevel(level)

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.TimeOnly,
		})
	}

	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *Logger {
	return NewWithWriter(io.Discard, "error", "json")
}

// WithService tags every record with the emitting binary
func (l *Logger) WithService(name string) *Logger {
	return &Logger{Logger: l.With("service", name)}
}

// WithFields returns a logger with additional fields
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{Logger: l.With(args...)}
}

// WithPair scopes the logger to a relationship query
func (l *Logger) WithPair(personA, personB int64) *Logger {
	return &Logger{Logger: l.With("person_a", personA, "person_b", personB)}
}

// WithAnomaly scopes the logger to a data-integrity finding. A zero id is
// omitted.
func (l *Logger) WithAnomaly(kind string, personID, marriageID int64) *Logger {
	args := []any{"anomaly", kind}
	if personID != 0 {
		args = append(args, "person_id", personID)
	}
	if marriageID != 0 {
		args = append(args, "marriage_id", marriageID)
	}
	return &Logger{Logger: l.With(args...)}
}

// Error logs an error with stack trace
func (l *Logger) Error(msg string, args ...any) {
	l.Logger.Error(msg, append(args, "stack", string(debug.Stack()))...)
}

// ErrorContext logs an error with context and stack trace
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.Logger.ErrorContext(ctx, msg, append(args, "stack", string(debug.Stack()))...)
}

// ParseLevel maps debug/info/warn/error (any case) to a slog level;
// anything else is info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
