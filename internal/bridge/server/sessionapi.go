package server

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/agentbridge/agentbridge/internal/agentforce/auth"
	"github.com/agentbridge/agentbridge/internal/agentforce/session"
	"github.com/agentbridge/agentbridge/internal/common/httpx"
)

// sessionRouter registers the session lifecycle endpoints.
func sessionRouter(r chi.Router) {
	r.Post("/", httpx.WrapHttpRsp(createSession))
	r.Delete("/", httpx.WrapHttpRsp(endSession))
}

// sessionRequest selects the agent and auth mode for a session operation.
// Both fields are optional; absent values fall back to the configured
// defaults.
type sessionRequest struct {
	AgentID string `json:"agentId"`
	Mode    string `json:"mode"`
}

// resolveMode maps the requested mode string onto an auth mode. An empty
// request selects AppLink when a broker connection is configured and the
// direct flow otherwise.
func resolveMode(requested string) (auth.Mode, error) {
	if requested == "" {
		return auth.DefaultMode(), nil
	}
	mode := auth.Mode(requested)
	if !mode.IsValid() {
		return "", httpx.ErrInvalidRequest("unknown auth mode: " + requested)
	}
	return mode, nil
}

// createSession handles HTTP requests to open a chat session. Returns the
// cached session for the (mode, agent) pair when one is still live, creating
// a new remote session otherwise.
func createSession(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	req := &sessionRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}

	mode, err := resolveMode(req.Mode)
	if err != nil {
		return nil, err
	}

	sess, apperr := session.GetSession(ctx, req.AgentID, mode)
	if apperr != nil {
		return nil, apperr
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   sess,
	}, nil
}

// endSession handles HTTP requests to close a chat session. Teardown is
// best-effort, so the endpoint always reports success; the cached session is
// purged either way. Agent and mode are taken from query parameters since
// DELETE bodies are unreliable across proxies.
func endSession(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	mode, err := resolveMode(r.URL.Query().Get("mode"))
	if err != nil {
		return nil, err
	}

	session.EndSession(ctx, r.URL.Query().Get("agentId"), mode)

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   map[string]string{"status": "ended"},
	}, nil
}

// messageRequest is a chat message addressed to an agent session.
type messageRequest struct {
	Text       string `json:"text"`
	SequenceID int    `json:"sequenceId"`
	AgentID    string `json:"agentId"`
	Mode       string `json:"mode"`
}

// sendMessage handles HTTP requests to dispatch a chat message. The upstream
// SSE stream is proxied to the client unmodified, flushing as chunks arrive.
func sendMessage(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	req := &messageRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}

	mode, err := resolveMode(req.Mode)
	if err != nil {
		return nil, err
	}

	stream, apperr := session.SendStreamingMessage(ctx, req.Text, req.SequenceID, req.AgentID, mode)
	if apperr != nil {
		return nil, apperr
	}

	return &httpx.Response{
		StatusCode:  http.StatusOK,
		ContentType: "text/event-stream",
		Stream: func(w http.ResponseWriter, flush func()) error {
			defer stream.Close()
			buf := make([]byte, 4096)
			for {
				n, err := stream.Read(buf)
				if n > 0 {
					if _, werr := w.Write(buf[:n]); werr != nil {
						return werr
					}
					flush()
				}
				if err == io.EOF {
					return nil
				}
				if err != nil {
					log.Ctx(ctx).Warn().Err(err).Msg("upstream stream interrupted")
					return err
				}
			}
		},
	}, nil
}
