package lshdb

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with lshdb-specific context.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// LogInsert logs an insert operation.
func (l *Logger) LogInsert(ctx context.Context, id int32, dimension int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert failed",
			"id", id,
			"dimension", dimension,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "insert completed",
			"id", id,
			"dimension", dimension,
		)
	}
}

// LogBatchInsert logs a batch insert operation.
func (l *Logger) LogBatchInsert(ctx context.Context, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "batch insert failed",
			"count", count,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "batch insert completed",
			"count", count,
		)
	}
}

// LogQuery logs a query. candidates is the number of vectors scored.
func (l *Logger) LogQuery(ctx context.Context, kind QueryKind, k, results, candidates int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"kind", kind,
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "query completed",
			"kind", kind,
			"k", k,
			"results", results,
			"candidates", candidates,
		)
	}
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(ctx context.Context, id int32, existed bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"id", id,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "delete completed",
			"id", id,
			"existed", existed,
		)
	}
}

// LogUpdate logs an update operation.
func (l *Logger) LogUpdate(ctx context.Context, id int32, err error) {
	if err != nil {
		l.ErrorContext(ctx, "update failed",
			"id", id,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "update completed",
			"id", id,
		)
	}
}

// LogSave logs a snapshot write to target.
func (l *Logger) LogSave(ctx context.Context, target string, records int, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot save failed",
			"target", target,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"target", target,
			"records", records,
			"bytes", bytes,
		)
	}
}

// LogLoad logs a snapshot read from source.
func (l *Logger) LogLoad(ctx context.Context, source string, records int, legacy bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot load failed",
			"source", source,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot loaded",
			"source", source,
			"records", records,
			"legacy", legacy,
		)
	}
}
