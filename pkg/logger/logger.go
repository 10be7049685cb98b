// Package logger configures the process-wide structured logger. Carried
// over from the teacher's pkg/logger essentially unchanged — slog setup has
// no domain-specific surface to adapt.
package logger

import (
	"context"
	"log/slog"
	"os"
)

type contextKey struct{}

// Setup installs a slog default logger at the given level ("debug", "info",
// "warn", "error") in either "json" or text format. Logs go to stderr,
// keeping them separate from what the CLI prints to stdout.
func Setup(level string, format string) {
	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// WithRunID attaches a run identifier to ctx for later retrieval via
// FromContext.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, contextKey{}, runID)
}

// FromContext returns the default logger, enriched with the run ID stashed
// in ctx if any.
func FromContext(ctx context.Context) *slog.Logger {
	l := slog.Default()
	if runID, ok := ctx.Value(contextKey{}).(string); ok {
		l = l.With("run_id", runID)
	}
	return l
}

// WithComponent returns the default logger tagged with component — used so
// every log line self-identifies which part of the engine emitted it.
func WithComponent(component string) *slog.Logger {
	return slog.Default().With("component", component)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
