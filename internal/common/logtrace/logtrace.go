// Package logtrace provides logging and request tracing utilities.
// It integrates with zerolog for structured logging and owns the context
// key under which request IDs travel.
package logtrace

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type requestIDContextKey struct{}

// InitLogger initializes the global logger with Unix timestamp format.
// Configures zerolog to output to stderr with timestamps.
func InitLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// ContextWithRequestID returns a context carrying the given request ID.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// IsTraceEnabled reports whether request tracing is enabled.
// Currently returns false as tracing is not yet implemented.
func IsTraceEnabled() bool {
	return false
}

// RequestIDFromContext extracts the request ID from the context.
// Returns an empty string if the context is nil or carries no request ID.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	r, ok := ctx.Value(requestIDContextKey{}).(string)
	if !ok {
		return ""
	}
	return r
}
