package auth

import (
	"net/http"

	"github.com/agentbridge/agentbridge/internal/common/apperrors"
)

var (
	// ErrAuthentication is the base error for all credential resolution
	// failures. The status code it carries drives the retry policy: 4xx
	// codes are terminal, everything else is considered transient.
	ErrAuthentication apperrors.Error = apperrors.New("authentication failed").SetStatusCode(http.StatusInternalServerError)

	// ErrUnknownMode is returned when a caller passes an auth mode outside
	// the supported set.
	ErrUnknownMode apperrors.Error = ErrAuthentication.New("unknown authentication mode").SetStatusCode(http.StatusBadRequest)

	// ErrUnableToConnect is returned when the token endpoint or broker could
	// not be reached at all, including timeouts.
	ErrUnableToConnect apperrors.Error = ErrAuthentication.New("unable to connect to authentication service").SetStatusCode(http.StatusServiceUnavailable)

	// ErrInvalidClientCredentials is returned when the OAuth exchange is
	// rejected with 401. Never retried.
	ErrInvalidClientCredentials apperrors.Error = ErrAuthentication.New("invalid client credentials").SetStatusCode(http.StatusUnauthorized)

	// ErrServiceUnavailable is returned when the authentication service
	// answers with a 5xx status. Retried by the session retry policy.
	ErrServiceUnavailable apperrors.Error = ErrAuthentication.New("authentication service temporarily unavailable").SetStatusCode(http.StatusServiceUnavailable)

	// ErrInvalidResponse is returned when the token endpoint answers 2xx but
	// the response is missing the access token or instance URL.
	ErrInvalidResponse apperrors.Error = ErrAuthentication.New("invalid response from authentication service").SetStatusCode(http.StatusBadGateway)

	// ErrAppLinkAuthorization is the base error for delegated-mode failures
	// against the AppLink broker.
	ErrAppLinkAuthorization apperrors.Error = ErrAuthentication.New("AppLink authorization failed").SetStatusCode(http.StatusInternalServerError)

	// ErrAppLinkNotConfigured is returned when delegated mode is requested
	// but no connection name is configured.
	ErrAppLinkNotConfigured apperrors.Error = ErrAppLinkAuthorization.New("AppLink connection is not configured").SetStatusCode(http.StatusBadRequest)

	// ErrAppLinkMissingToken is returned when the broker authorization
	// carries no access token.
	ErrAppLinkMissingToken apperrors.Error = ErrAppLinkAuthorization.New("AppLink authorization returned no access token").SetStatusCode(http.StatusBadGateway)

	// ErrAppLinkConnectionNotFound is returned when the named connection
	// does not exist on the broker. Never retried.
	ErrAppLinkConnectionNotFound apperrors.Error = ErrAppLinkAuthorization.New("AppLink connection not found").SetStatusCode(http.StatusNotFound)
)
