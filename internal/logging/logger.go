// Package logging defines the minimal structured-logging surface the server
// code depends on, decoupling it from the concrete backend.
package logging

import "context"

// Logger is a context-aware, structured logger. Variadic args are
// alternating key/value pairs, e.g.:
//
//	log.Info(ctx, "starting server", "addr", addr)
type Logger interface {
	// Debug logs a verbose diagnostic message.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given
	// key/value pairs.
	With(args ...any) Logger
}
