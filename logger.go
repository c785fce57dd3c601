package pimsim

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/pimsim/scan"
)

// Logger wraps slog.Logger with pimsim-specific context.
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

// WithBank adds a bank identifier field to the logger.
func (l *Logger) WithBank(bank int) *Logger {
	return &Logger{
		Logger: l.Logger.With("bank", bank),
	}
}

// LogInit logs a bank initialization.
func (l *Logger) LogInit(ctx context.Context, rows, rowBytes, records int) {
	l.DebugContext(ctx, "bank initialized",
		"rows", rows,
		"row_bytes", rowBytes,
		"records", records,
	)
}

// LogScan logs a completed (or failed) scan.
func (l *Logger) LogScan(ctx context.Context, stats scan.Stats, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "scan failed",
			"records", stats.Records,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "scan completed",
		"records", stats.Records,
		"matches", stats.Matches,
		"row_activations", stats.RowActivations,
		"buffer_hits", stats.BufferHits,
		"hitmap_rows_stored", stats.HitmapRowsStored,
		"elapsed", elapsed,
	)
}

// LogDump logs a dump serialization.
func (l *Logger) LogDump(ctx context.Context, target string, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "dump failed",
			"target", target,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "dump written",
		"target", target,
		"bytes", bytes,
	)
}

// LogArchive logs an archive upload.
func (l *Logger) LogArchive(ctx context.Context, name string, rawBytes, storedBytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "archive failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "archive uploaded",
		"name", name,
		"raw_bytes", rawBytes,
		"stored_bytes", storedBytes,
	)
}
