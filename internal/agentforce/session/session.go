// Package session manages the lifecycle of remote Agentforce sessions and
// dispatches chat messages against them. Session creation is wrapped in a
// bounded retry policy; the resulting handle is memoized for the cache
// window and torn down best-effort.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/agentbridge/agentbridge/internal/agentforce/auth"
	"github.com/agentbridge/agentbridge/internal/agentforce/config"
	"github.com/agentbridge/agentbridge/internal/common/apperrors"
	"github.com/agentbridge/agentbridge/internal/common/httpclient"
	"github.com/agentbridge/agentbridge/internal/common/memocache"
	"github.com/agentbridge/agentbridge/internal/common/uuid"
)

const (
	agentAPIPrefix = "/einstein/ai-agent/v1"

	// sessionRequestTimeout bounds session create and delete calls.
	sessionRequestTimeout = 15 * time.Second

	// streamRequestTimeout bounds a streaming message exchange end to end.
	streamRequestTimeout = 30 * time.Second

	// sessionEndReasonHeader signals why a session is being closed.
	sessionEndReasonHeader = "x-session-end-reason"
)

var sessionCache = memocache.New[*Session]()

// sessionCacheKey partitions cached sessions by auth mode and agent id, so
// concurrent use of several agents or both modes never reuses the wrong
// session.
func sessionCacheKey(mode auth.Mode, agentID string) string {
	return "session:" + string(mode) + ":" + agentID
}

// ResetCache drops all memoized sessions. Used by tests.
func ResetCache() {
	sessionCache = memocache.New[*Session]()
}

// apiClientConfig adapts resolved credentials to the transport Configurator.
type apiClientConfig struct {
	creds auth.Credentials
}

func (c *apiClientConfig) GetBaseURL() string     { return c.creds.APIBaseURL }
func (c *apiClientConfig) GetAccessToken() string { return c.creds.AccessToken }

// resolveAgentID picks the explicit agent id when given, else the configured
// default. Absence of both is a configuration error.
func resolveAgentID(agentID string) (string, apperrors.Error) {
	if agentID != "" {
		return agentID, nil
	}
	if d := config.Config().Salesforce.DefaultAgentID; d != "" {
		return d, nil
	}
	return "", ErrMissingAgentID
}

// NewSession creates a fresh remote session against the target agent. The
// full body — credential resolution plus the session POST — runs under the
// retry policy, so transient failures are absorbed up to the attempt budget
// while 4xx failures surface immediately.
func NewSession(ctx context.Context, agentID string, mode auth.Mode) (*Session, apperrors.Error) {
	targetAgent, apperr := resolveAgentID(agentID)
	if apperr != nil {
		return nil, apperr
	}

	sess, err := withRetry(ctx, func() (*Session, error) {
		s, apperr := createSession(ctx, targetAgent, mode)
		if apperr != nil {
			return nil, apperr
		}
		return s, nil
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return sess, nil
}

// GetSession returns the cached session for (mode, agent) when one is still
// within the cache window, creating a new one otherwise.
func GetSession(ctx context.Context, agentID string, mode auth.Mode) (*Session, apperrors.Error) {
	targetAgent, apperr := resolveAgentID(agentID)
	if apperr != nil {
		return nil, apperr
	}

	window := config.Config().Cache.GetWindowOrDefault()

	var createErr apperrors.Error
	sess, err := sessionCache.GetOrResolve(sessionCacheKey(mode, targetAgent), window, func() (*Session, error) {
		s, apperr := NewSession(ctx, targetAgent, mode)
		if apperr != nil {
			createErr = apperr
			return nil, apperr
		}
		return s, nil
	})
	if err != nil {
		if createErr != nil {
			return nil, createErr
		}
		return nil, asAppError(err)
	}
	return sess, nil
}

// EndSession closes the cached session for (mode, agent) best-effort. The
// cache entry is purged regardless of the outcome, so the next resolution
// always creates a fresh remote session. Failures are logged, never raised;
// a session the platform will expire on its own is an acceptable outcome.
func EndSession(ctx context.Context, agentID string, mode auth.Mode) {
	targetAgent, apperr := resolveAgentID(agentID)
	if apperr != nil {
		log.Ctx(ctx).Warn().Err(apperr).Msg("cannot resolve agent for session teardown")
		return
	}

	key := sessionCacheKey(mode, targetAgent)
	defer sessionCache.Invalidate(key)

	sess, ok := sessionCache.Peek(key)
	if !ok {
		log.Ctx(ctx).Debug().Str("agent_id", targetAgent).Msg("no active session to end")
		return
	}

	creds, apperr := auth.ResolveCredentials(ctx, mode)
	if apperr != nil {
		log.Ctx(ctx).Warn().Err(apperr).Msg("cannot resolve credentials for session teardown")
		return
	}

	client := httpclient.NewClient(&apiClientConfig{creds: creds})
	_, err := client.DoRequest(ctx, httpclient.RequestOptions{
		Method: http.MethodDelete,
		Path:   agentAPIPrefix + "/sessions/" + sess.ID,
		Headers: map[string]string{
			sessionEndReasonHeader: "UserRequest",
		},
		Timeout: sessionRequestTimeout,
	})
	if err != nil {
		if httpclient.StatusOf(err) == http.StatusNotFound {
			log.Ctx(ctx).Debug().Str("session_id", sess.ID).Msg("session already gone")
			return
		}
		log.Ctx(ctx).Warn().Err(err).Str("session_id", sess.ID).Msg("failed to end session")
		return
	}

	log.Ctx(ctx).Info().Str("session_id", sess.ID).Msg("session ended")
}

// SendStreamingMessage validates and transmits a single chat message against
// the (possibly cached) session and returns the live event stream unconsumed.
// SSE framing is the caller's concern. Dispatch is never retried; validation
// and session-resolution errors are re-raised unchanged.
func SendStreamingMessage(ctx context.Context, text string, sequenceID int, agentID string, mode auth.Mode) (io.ReadCloser, apperrors.Error) {
	msg := Message{
		SequenceID: sequenceID,
		Type:       MessageTypeText,
		Text:       text,
	}
	if apperr := msg.Validate(); apperr != nil {
		return nil, apperr
	}

	creds, apperr := auth.ResolveCredentials(ctx, mode)
	if apperr != nil {
		return nil, apperr
	}

	sess, apperr := GetSession(ctx, agentID, mode)
	if apperr != nil {
		return nil, apperr
	}

	body, err := json.Marshal(messageSendRequest{Message: msg})
	if err != nil {
		return nil, ErrDispatch.Err(err)
	}

	client := httpclient.NewClient(&apiClientConfig{creds: creds})
	stream, err := client.StreamRequest(ctx, httpclient.RequestOptions{
		Method:  http.MethodPost,
		Path:    agentAPIPrefix + "/sessions/" + sess.ID + "/messages/stream",
		Body:    body,
		Accept:  "text/event-stream",
		Timeout: streamRequestTimeout,
	})
	if err != nil {
		return nil, classifyDispatchFailure(err)
	}

	return stream, nil
}

// createSession resolves credentials and opens a remote session. One attempt;
// retry is layered on top by NewSession.
func createSession(ctx context.Context, agentID string, mode auth.Mode) (*Session, apperrors.Error) {
	creds, apperr := auth.ResolveCredentials(ctx, mode)
	if apperr != nil {
		return nil, apperr
	}

	body, err := json.Marshal(sessionCreateRequest{
		ExternalSessionKey: uuid.New().String(),
		InstanceConfig: instanceConfig{
			Endpoint: config.Config().Salesforce.MyDomainURL,
		},
		StreamingCapabilities: streamingCapabilities{
			ChunkTypes: []string{MessageTypeText},
		},
		BypassUser: true,
	})
	if err != nil {
		return nil, ErrSession.Err(err)
	}

	client := httpclient.NewClient(&apiClientConfig{creds: creds})
	rsp, err := client.DoRequest(ctx, httpclient.RequestOptions{
		Method:  http.MethodPost,
		Path:    agentAPIPrefix + "/agents/" + agentID + "/sessions",
		Body:    body,
		Timeout: sessionRequestTimeout,
	})
	if err != nil {
		return nil, classifySessionFailure(err)
	}

	sessionID := gjson.GetBytes(rsp, "sessionId").String()
	if sessionID == "" {
		return nil, ErrInvalidSessionResponse
	}

	log.Ctx(ctx).Info().Str("session_id", sessionID).Str("agent_id", agentID).Str("mode", string(mode)).Msg("session created")

	return &Session{
		ID:      sessionID,
		AgentID: agentID,
		Mode:    mode,
	}, nil
}

func classifySessionFailure(err error) apperrors.Error {
	if httpclient.IsTimeout(err) {
		return ErrSessionTimeout.Err(err)
	}
	status := httpclient.StatusOf(err)
	switch {
	case status == 0:
		return ErrSessionUnavailable.Err(err)
	case status == http.StatusUnauthorized:
		return ErrSessionAuthExpired.Err(err)
	case status == http.StatusForbidden:
		return ErrSessionAccessDenied.Err(err)
	case status == http.StatusNotFound:
		return ErrAgentNotFound.Err(err)
	case status >= 500:
		return ErrSessionUnavailable.Err(err)
	default:
		return ErrSession.MsgErr("session creation failed: "+err.Error(), err).SetStatusCode(status)
	}
}

func classifyDispatchFailure(err error) apperrors.Error {
	if httpclient.IsTimeout(err) {
		return ErrDispatchTimeout.Err(err)
	}
	status := httpclient.StatusOf(err)
	switch {
	case status == 0:
		return ErrUpstreamUnavailable.Err(err)
	case status == http.StatusUnauthorized:
		return ErrDispatchAuthExpired.Err(err)
	case status == http.StatusForbidden:
		return ErrDispatchAccessDenied.Err(err)
	case status == http.StatusNotFound:
		return ErrSessionNotFound.Err(err)
	case status == http.StatusTooManyRequests:
		return ErrRateLimited.Err(err)
	case status >= 500:
		return ErrUpstreamUnavailable.Err(err)
	default:
		return ErrDispatch.MsgErr("message dispatch failed: "+err.Error(), err).SetStatusCode(status)
	}
}

// asAppError keeps classified errors intact and wraps anything else.
func asAppError(err error) apperrors.Error {
	var appErr apperrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrSession.Err(err)
}
