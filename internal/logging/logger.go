// Package logging defines a minimal structured-logging interface used across
// the project. Implementations wrap slog or zap.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "request created", "request_id", id, "file_id", fileID)
type Logger interface {
	// Debug logs verbose diagnostics.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Backend names accepted by New.
const (
	BackendSlog = "slog"
	BackendZap  = "zap"
)

// New builds a JSON logger writing to w using the named backend.
func New(backend string, w io.Writer) (Logger, error) {
	switch backend {
	case "", BackendSlog:
		return NewSlogLogger(slog.New(slog.NewJSONHandler(w, nil))), nil
	case BackendZap:
		return NewZapLoggerTo(w), nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}

type nopLogger struct{}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) Logger                  { return n }
