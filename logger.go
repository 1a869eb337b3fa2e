package hfabric

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with hfabric-specific context.
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
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithPackage adds package name and version fields to the logger.
func (l *Logger) WithPackage(name, version string) *Logger {
	return &Logger{
		Logger: l.Logger.With("package", name, "version", version),
	}
}

// LogOpen logs a package open.
func (l *Logger) LogOpen(ctx context.Context, location string, nodes int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"location", location,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "package opened",
			"location", location,
			"nodes", nodes,
			"elapsed", elapsed,
		)
	}
}

// LogMaterialize logs the first-use construction of a structure.
func (l *Logger) LogMaterialize(ctx context.Context, structure string, bytes int64, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "materialization failed",
			"structure", structure,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "structure materialized",
			"structure", structure,
			"bytes", bytes,
			"elapsed", elapsed,
		)
	}
}

// LogSearch logs a text search.
func (l *Logger) LogSearch(ctx context.Context, lang string, limit, results int, err error) {
	if err != nil {
		l.WarnContext(ctx, "search failed",
			"lang", lang,
			"limit", limit,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"lang", lang,
			"limit", limit,
			"results", results,
		)
	}
}

// LogSimilar logs a similarity query.
func (l *Logger) LogSimilar(ctx context.Context, id string, topk, results int, err error) {
	if err != nil {
		l.WarnContext(ctx, "similar failed",
			"id", id,
			"topk", topk,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "similar completed",
			"id", id,
			"topk", topk,
			"results", results,
		)
	}
}

// LogBuild logs a finished package build.
func (l *Logger) LogBuild(ctx context.Context, out string, nodes, skipped int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"path", out,
			"skipped", skipped,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "build completed",
			"path", out,
			"nodes", nodes,
			"skipped", skipped,
		)
	}
}
