// Package middleware provides HTTP middleware components for request logging,
// timeout handling, and panic recovery. It integrates with zerolog for
// structured logging and supports request tracing through unique request IDs.
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/agentbridge/agentbridge/internal/common/logtrace"
	"github.com/agentbridge/agentbridge/internal/common/uuid"
)

// RequestIDHeader is the response header carrying the request ID.
const RequestIDHeader = "X-Agentbridge-Request-ID"

// RequestLogger creates middleware that logs incoming requests and adds a
// unique request ID to both the request context and response headers. The
// request ID is used for request tracing.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		requestID := newRequestID()
		ctx = logtrace.ContextWithRequestID(ctx, requestID)
		ctx = log.With().Str("request_id", requestID).Logger().WithContext(ctx)

		w.Header().Set(RequestIDHeader, requestID)

		log.Ctx(ctx).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_ip", r.RemoteAddr).
			Str("proto", r.Proto).
			Msg("incoming request")

		defer func() {
			log.Ctx(ctx).Info().
				Str("duration", fmt.Sprintf("%dms", time.Since(start).Milliseconds())).
				Msg("request completed")
		}()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// newRequestID generates a unique request identifier. It attempts to create a
// UUID first, falling back to a timestamp-based ID if generation fails.
func newRequestID() string {
	u, err := uuid.NewRandom()
	if err == nil {
		return u.String()
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}
