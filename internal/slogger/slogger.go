// Package slogger builds the iconkeep logger: a slog.Logger backed by
// charmbracelet/log and carried through the command context.
package slogger

import (
	"context"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type contextKey struct{}

// Config holds logger configuration.
type Config struct {
	// Verbosity is the number of -v flags given.
	//   0   errors only
	//   1   info
	//   2+  debug
	Verbosity int

	// Output defaults to os.Stderr.
	Output io.Writer

	// Prefix is shown before every message when set.
	Prefix string
}

// Level returns the charm log level for a verbosity count.
func Level(verbosity int) charmlog.Level {
	switch {
	case verbosity >= 2:
		return charmlog.DebugLevel
	case verbosity == 1:
		return charmlog.InfoLevel
	default:
		return charmlog.ErrorLevel
	}
}

// New creates a logger writing human readable lines to cfg.Output.
func New(cfg Config) *slog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	handler := charmlog.NewWithOptions(output, charmlog.Options{
		Level:        Level(cfg.Verbosity),
		Prefix:       cfg.Prefix,
		ReportCaller: cfg.Verbosity >= 3,
	})

	return slog.New(handler)
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger stored in ctx, or a logger that drops
// everything. It never returns nil.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.New(slog.DiscardHandler)
}

// L is shorthand for FromContext.
func L(ctx context.Context) *slog.Logger {
	return FromContext(ctx)
}
