// Package logging carries a request-scoped slog.Logger through contexts so
// services can enrich log records without threading loggers explicitly.
package logging

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// WithLogger returns a derived context carrying the logger. A nil logger or
// context leaves the input untouched.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger attached to ctx, or nil when absent.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(loggerKey{}).(*slog.Logger)
	return logger
}
