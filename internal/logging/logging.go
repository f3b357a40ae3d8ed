// Package logging wires log/slog for the CLI and dashboard.
package logging

import (
	"context"
	"io"
	"log/slog"
)

type ctxKey string

const ctxKeyRequestID ctxKey = "request_id"

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// New builds a logger. Debug output goes to w as text; without debug
// everything is discarded so command output stays clean.
func New(w io.Writer, debug bool) *slog.Logger {
	if !debug || w == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Setup replaces the package logger.
func Setup(w io.Writer, debug bool) *slog.Logger {
	logger = New(w, debug)
	return logger
}

// Logger returns the package logger.
func Logger() *slog.Logger {
	return logger
}

// WithRequestID stores a request id in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

// RequestID returns the request id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}

// FromContext adds request_id if present.
func FromContext(ctx context.Context) *slog.Logger {
	reqID := RequestID(ctx)
	if reqID == "" {
		return logger
	}
	return logger.With("request_id", reqID)
}
