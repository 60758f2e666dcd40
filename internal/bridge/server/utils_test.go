package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentbridge/agentbridge/internal/agentforce/auth"
	"github.com/agentbridge/agentbridge/internal/agentforce/config"
	"github.com/agentbridge/agentbridge/internal/agentforce/session"
	"github.com/agentbridge/agentbridge/internal/common/middleware"
)

func executeTestRequest(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	s, err := CreateNewServer()
	require.NoError(t, err, "create new server")

	s.MountHandlers()

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	return rr
}

func checkHeader(t *testing.T, h http.Header) {
	expected := "application/json"
	got := h.Get("Content-Type")
	assert.Equal(t, expected, got, "Content-Type expected %s, got %s", expected, got)
	assert.NotEmpty(t, h.Get(middleware.RequestIDHeader), "No Request Id")
}

func setRequestBodyAndHeader(t *testing.T, req *http.Request, data any) {
	var jsonData []byte
	if s, ok := data.(string); ok {
		require.True(t, json.Valid([]byte(s)), "request body is not valid JSON")
		jsonData = []byte(s)
	} else {
		var err error
		jsonData, err = json.Marshal(data)
		require.NoError(t, err, "Failed to marshal data into JSON")
	}

	req.Body = io.NopCloser(bytes.NewReader(jsonData))
	req.ContentLength = int64(len(jsonData))
	req.Header.Set("Content-Type", "application/json")
}

// setupFakePlatform stands up a fake agent platform covering the OAuth and
// agent API endpoints, and points the configuration at it. Returns the
// platform server so tests can assert on traffic.
func setupFakePlatform(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/services/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "tok-test",
			"instance_url": srv.URL,
		})
	})
	mux.HandleFunc("/einstein/ai-agent/v1/agents/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"sessionId": "sess-1"})
	})
	mux.HandleFunc("/einstein/ai-agent/v1/sessions/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"type\":\"TextChunk\",\"text\":\"hi there\"}\n\n"))
	})

	config.SetTestConfig(&config.ConfigParam{
		FormatVersion:  config.ConfigFormatVersion,
		ServerHostName: "localhost",
		ServerPort:     "8787",
		Salesforce: config.SalesforceConfig{
			MyDomainURL:    srv.URL,
			ClientID:       "client-id",
			ClientSecret:   "client-secret",
			DefaultAgentID: "agent-1",
		},
		Cache: config.CacheConfig{Window: "1m"},
	})
	auth.ResetCache()
	session.ResetCache()
	t.Cleanup(auth.ResetCache)
	t.Cleanup(session.ResetCache)

	return srv
}
