package ansel

import (
	"context"
	"log/slog"
	"os"

	"github.com/fkoehler/ansel/model"
)

// Logger wraps slog.Logger with ansel-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithItem adds an item field to the logger.
func (l *Logger) WithItem(id model.ItemID) *Logger {
	return &Logger{
		Logger: l.Logger.With("item", string(id)),
	}
}

// WithTier adds a tier field to the logger.
func (l *Logger) WithTier(t model.Tier) *Logger {
	return &Logger{
		Logger: l.Logger.With("tier", t.String()),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(key string) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", key),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogFilter logs a filter change and the resulting match count.
func (l *Logger) LogFilter(ctx context.Context, dim, value string, matched int) {
	l.DebugContext(ctx, "filter toggled",
		"dimension", dim,
		"value", value,
		"matched", matched,
	)
}

// LogLayout logs a layout computation.
func (l *Logger) LogLayout(ctx context.Context, count int, width float64, rows int) {
	l.DebugContext(ctx, "layout computed",
		"items", count,
		"width", width,
		"rows", rows,
	)
}

// LogNavigate logs a focus change.
func (l *Logger) LogNavigate(ctx context.Context, id model.ItemID, depth int) {
	l.DebugContext(ctx, "navigated",
		"item", string(id),
		"history_depth", depth,
	)
}

// LogMutation logs an emitted collection mutation intent.
func (l *Logger) LogMutation(ctx context.Context, kind string, count int) {
	l.InfoContext(ctx, "mutation emitted",
		"kind", kind,
		"count", count,
	)
}

// LogSnapshot logs a snapshot load.
func (l *Logger) LogSnapshot(ctx context.Context, filename string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot load failed",
			"filename", filename,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot loaded",
			"filename", filename,
			"items", count,
		)
	}
}
