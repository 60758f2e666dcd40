package session

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/agentbridge/agentbridge/internal/common/apperrors"
)

const (
	// retryAttempts is the total attempt budget for session creation:
	// one initial attempt plus two retries.
	retryAttempts = 3

	// retryBaseDelay is the base of the linear backoff between attempts.
	retryBaseDelay = 1500 * time.Millisecond
)

// isRetryable is the policy predicate: 4xx-class failures (client and auth
// errors) are terminal and re-raised immediately; everything else — network
// errors, 5xx answers, and errors carrying no status at all — is transient.
func isRetryable(err error) bool {
	status := apperrors.StatusCodeOf(err)
	return status < 400 || status >= 500
}

// linearBackoff waits retryBaseDelay after the first failed attempt,
// twice that after the second, and so on.
func linearBackoff(n uint, _ error, _ *retry.Config) time.Duration {
	return retryBaseDelay * time.Duration(n+1)
}

// withRetry runs operation under the session retry policy and returns its
// result or the last error once the attempt budget is exhausted.
func withRetry[T any](ctx context.Context, operation func() (T, error)) (T, error) {
	return retry.DoWithData(
		operation,
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.DelayType(linearBackoff),
		retry.RetryIf(isRetryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().Err(err).Uint("attempt", n+1).Msg("retrying session creation")
		}),
	)
}
