package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/agentbridge/agentbridge/internal/common/httpx"
)

// SetTimeout creates middleware that enforces a timeout for request handling.
// If the request exceeds the specified duration, it returns a timeout error
// response unless the handler already wrote one.
func SetTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			rw := httpx.NewResponseWriter(w)
			r = r.WithContext(ctx)

			done := make(chan struct{})
			go func() {
				defer func() {
					if p := recover(); p != nil {
						log.Ctx(ctx).Error().Msgf("panic in handler: %v", p)
					}
					close(done)
				}()
				next.ServeHTTP(rw, r)
			}()

			select {
			case <-done:
				return
			case <-ctx.Done():
				if !rw.Written() {
					httpx.ErrRequestTimeout().Send(w)
				}
				log.Ctx(ctx).Error().Msg("request timed out")
				return
			}
		})
	}
}
