package session

import (
	"net/http"

	"github.com/agentbridge/agentbridge/internal/common/apperrors"
)

var (
	// ErrSession is the base error for all session lifecycle failures.
	ErrSession apperrors.Error = apperrors.New("error in processing agent session").SetStatusCode(http.StatusInternalServerError)

	// ErrMissingAgentID is returned when no agent id was passed and no
	// default is configured. A configuration problem; fails fast, never
	// retried.
	ErrMissingAgentID apperrors.Error = ErrSession.New("no agent id provided and no default agent configured").SetStatusCode(http.StatusBadRequest)

	// ErrSessionAuthExpired is returned when session creation is rejected
	// with 401.
	ErrSessionAuthExpired apperrors.Error = ErrSession.New("authentication expired: please authenticate again").SetStatusCode(http.StatusUnauthorized)

	// ErrSessionAccessDenied is returned when the credential is not allowed
	// to open sessions against the agent.
	ErrSessionAccessDenied apperrors.Error = ErrSession.New("access to the agent was denied").SetStatusCode(http.StatusForbidden)

	// ErrAgentNotFound is returned when the target agent id does not exist.
	ErrAgentNotFound apperrors.Error = ErrSession.New("agent not found: check the agent id").SetStatusCode(http.StatusNotFound)

	// ErrSessionUnavailable is returned on 5xx answers from the agent
	// platform. Retried by the session retry policy.
	ErrSessionUnavailable apperrors.Error = ErrSession.New("agent service temporarily unavailable").SetStatusCode(http.StatusServiceUnavailable)

	// ErrSessionTimeout is returned when the session call could not reach
	// the platform or timed out.
	ErrSessionTimeout apperrors.Error = ErrSession.New("timed out connecting to the agent service").SetStatusCode(http.StatusServiceUnavailable)

	// ErrInvalidSessionResponse is returned when session creation succeeds
	// at the HTTP level but carries no session identifier.
	ErrInvalidSessionResponse apperrors.Error = ErrSession.New("session response missing session identifier").SetStatusCode(http.StatusBadGateway)

	// ErrValidation is the base error for message validation failures.
	// Surfaced verbatim, never retried, never sent to the network.
	ErrValidation apperrors.Error = apperrors.New("invalid message").SetStatusCode(http.StatusBadRequest)

	// ErrDispatch is the base error for message dispatch failures.
	ErrDispatch apperrors.Error = apperrors.New("failed to send message").SetStatusCode(http.StatusInternalServerError)

	// ErrDispatchTimeout is returned when the streaming request could not
	// reach the platform or timed out.
	ErrDispatchTimeout apperrors.Error = ErrDispatch.New("message request timed out: please try again").SetStatusCode(http.StatusGatewayTimeout)

	// ErrDispatchAuthExpired is returned when the message is rejected
	// with 401.
	ErrDispatchAuthExpired apperrors.Error = ErrDispatch.New("authentication expired: please authenticate again").SetStatusCode(http.StatusUnauthorized)

	// ErrDispatchAccessDenied is returned when the credential may not post
	// to the session.
	ErrDispatchAccessDenied apperrors.Error = ErrDispatch.New("access to the session was denied").SetStatusCode(http.StatusForbidden)

	// ErrSessionNotFound is returned when the session no longer exists on
	// the platform.
	ErrSessionNotFound apperrors.Error = ErrDispatch.New("session not found: it may have expired").SetStatusCode(http.StatusNotFound)

	// ErrRateLimited is returned on 429 answers.
	ErrRateLimited apperrors.Error = ErrDispatch.New("rate limit exceeded: please wait and try again").SetStatusCode(http.StatusTooManyRequests)

	// ErrUpstreamUnavailable is returned on 5xx answers to a message
	// dispatch.
	ErrUpstreamUnavailable apperrors.Error = ErrDispatch.New("agent service temporarily unavailable").SetStatusCode(http.StatusBadGateway)
)
