// Package auth resolves bearer credentials for the Agentforce API. Two
// interchangeable strategies are supported: a direct OAuth client-credentials
// exchange against the tenant's token endpoint, and a delegated lookup of a
// pre-authorized token from the Heroku AppLink broker. Resolved credentials
// are memoized for the configured cache window.
package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/agentbridge/agentbridge/internal/agentforce/config"
	"github.com/agentbridge/agentbridge/internal/common/apperrors"
	"github.com/agentbridge/agentbridge/internal/common/memocache"
)

// Mode selects the credential strategy. It is a caller-supplied parameter on
// every operation, never global state, so both modes can be used concurrently
// within one process.
type Mode string

const (
	// ModeDirect exchanges the configured client id and secret for a token
	// at the tenant's OAuth endpoint.
	ModeDirect Mode = "direct"

	// ModeAppLink retrieves a pre-authorized token from the Heroku AppLink
	// broker by connection name.
	ModeAppLink Mode = "applink"
)

// IsValid reports whether m is a supported mode.
func (m Mode) IsValid() bool {
	return m == ModeDirect || m == ModeAppLink
}

// DefaultMode picks the mode implied by the configuration: AppLink when a
// broker connection is configured, the direct flow otherwise.
func DefaultMode() Mode {
	if config.Config().AppLink.Connection != "" {
		return ModeAppLink
	}
	return ModeDirect
}

// Credentials is a bearer token plus the API base URL it is valid against.
// Immutable once returned; lifetime is bounded by the cache window.
type Credentials struct {
	AccessToken string
	APIBaseURL  string
}

type resolverFunc func(ctx context.Context) (Credentials, apperrors.Error)

// resolvers is the strategy table keyed by mode.
var resolvers = map[Mode]resolverFunc{
	ModeDirect:  resolveDirect,
	ModeAppLink: resolveAppLink,
}

var credentialCache = memocache.New[Credentials]()

func cacheKey(mode Mode) string {
	return "credentials:" + string(mode)
}

// ResolveCredentials returns credentials for the given mode, reusing a cached
// value when one is still within the cache window.
func ResolveCredentials(ctx context.Context, mode Mode) (Credentials, apperrors.Error) {
	resolve, ok := resolvers[mode]
	if !ok {
		return Credentials{}, ErrUnknownMode.Msg("unknown authentication mode: " + string(mode))
	}

	window := config.Config().Cache.GetWindowOrDefault()

	var resolveErr apperrors.Error
	creds, err := credentialCache.GetOrResolve(cacheKey(mode), window, func() (Credentials, error) {
		c, apperr := resolve(ctx)
		if apperr != nil {
			resolveErr = apperr
			return Credentials{}, apperr
		}
		logTokenLifetime(ctx, mode, c.AccessToken, window)
		return c, nil
	})
	if err != nil {
		if resolveErr != nil {
			return Credentials{}, resolveErr
		}
		return Credentials{}, ErrAuthentication.Err(err)
	}
	return creds, nil
}

// ResetCache drops all memoized credentials. Used by tests.
func ResetCache() {
	credentialCache.Invalidate(cacheKey(ModeDirect))
	credentialCache.Invalidate(cacheKey(ModeAppLink))
}

// TokenExpiry returns the expiration time of a JWT-shaped access token. The
// token is decoded without signature verification; we only introspect our own
// credential. Returns false for opaque tokens or tokens without an exp claim.
func TokenExpiry(accessToken string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// logTokenLifetime warns when a freshly resolved token expires before the
// cache window elapses, since the cache does not refresh on 401.
func logTokenLifetime(ctx context.Context, mode Mode, accessToken string, window time.Duration) {
	exp, ok := TokenExpiry(accessToken)
	if !ok {
		return
	}
	remaining := time.Until(exp)
	ev := log.Ctx(ctx).Debug()
	if remaining < window {
		ev = log.Ctx(ctx).Warn()
	}
	ev.Str("mode", string(mode)).
		Time("token_expiry", exp).
		Dur("cache_window", window).
		Msg("resolved credentials")
}
