// Package logging defines the structured-logging interface used by the portal
// server and client, with slog and zerolog backed implementations.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "client connected", "conn", id, "clients", n)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Backend names accepted by New.
const (
	BackendSlog    = "slog"
	BackendZerolog = "zerolog"
)

// New builds a Logger writing JSON lines to w. Unknown backends fall back to
// slog; unknown levels fall back to info.
func New(backend, level string, w io.Writer) Logger {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendZerolog:
		return NewZerologLogger(w, level)
	default:
		h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseSlogLevel(level)})
		return NewSlogLogger(slog.New(h))
	}
}

// NewNop returns a logger that discards everything.
func NewNop() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
