package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestCreateSessionEndpoint(t *testing.T) {
	setupFakePlatform(t)

	req, _ := http.NewRequest("POST", "/sessions", nil)
	setRequestBodyAndHeader(t, req, `{}`)
	response := executeTestRequest(t, req)

	require.Equal(t, http.StatusOK, response.Code)
	checkHeader(t, response.Result().Header)

	body := response.Body.String()
	assert.Equal(t, "sess-1", gjson.Get(body, "sessionId").String())
	assert.Equal(t, "agent-1", gjson.Get(body, "agentId").String())
	assert.Equal(t, "direct", gjson.Get(body, "mode").String())

	// same request again reuses the cached session
	req, _ = http.NewRequest("POST", "/sessions", nil)
	setRequestBodyAndHeader(t, req, `{"agentId":"agent-1","mode":"direct"}`)
	response = executeTestRequest(t, req)
	require.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, "sess-1", gjson.Get(response.Body.String(), "sessionId").String())
}

func TestCreateSessionRejectsUnknownMode(t *testing.T) {
	setupFakePlatform(t)

	req, _ := http.NewRequest("POST", "/sessions", nil)
	setRequestBodyAndHeader(t, req, `{"mode":"kerberos"}`)
	response := executeTestRequest(t, req)

	require.Equal(t, http.StatusBadRequest, response.Code)
	assert.Contains(t, response.Body.String(), "kerberos")
}

func TestEndSessionEndpoint(t *testing.T) {
	setupFakePlatform(t)

	req, _ := http.NewRequest("POST", "/sessions", nil)
	setRequestBodyAndHeader(t, req, `{}`)
	response := executeTestRequest(t, req)
	require.Equal(t, http.StatusOK, response.Code)

	req, _ = http.NewRequest("DELETE", "/sessions?mode=direct", nil)
	response = executeTestRequest(t, req)

	require.Equal(t, http.StatusOK, response.Code)
	assert.JSONEq(t, `{"status":"ended"}`, response.Body.String())
}

func TestEndSessionEndpointWithoutActiveSession(t *testing.T) {
	setupFakePlatform(t)

	// teardown is best-effort and never errors
	req, _ := http.NewRequest("DELETE", "/sessions", nil)
	response := executeTestRequest(t, req)

	require.Equal(t, http.StatusOK, response.Code)
	assert.JSONEq(t, `{"status":"ended"}`, response.Body.String())
}

func TestSendMessageEndpoint(t *testing.T) {
	setupFakePlatform(t)

	req, _ := http.NewRequest("POST", "/messages/stream", nil)
	setRequestBodyAndHeader(t, req, `{"text":"hello","sequenceId":1}`)
	response := executeTestRequest(t, req)

	require.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, "text/event-stream", response.Result().Header.Get("Content-Type"))
	assert.Contains(t, response.Body.String(), "hi there")
}

func TestSendMessageEndpointValidation(t *testing.T) {
	setupFakePlatform(t)

	tests := []struct {
		name string
		body string
	}{
		{"blank text", `{"text":"  ","sequenceId":1}`},
		{"negative sequence", `{"text":"hello","sequenceId":-1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("POST", "/messages/stream", nil)
			setRequestBodyAndHeader(t, req, tt.body)
			response := executeTestRequest(t, req)

			require.Equal(t, http.StatusBadRequest, response.Code)
		})
	}
}

func TestResolveMode(t *testing.T) {
	setupFakePlatform(t)

	mode, err := resolveMode("")
	require.NoError(t, err)
	assert.Equal(t, "direct", string(mode))

	mode, err = resolveMode("applink")
	require.NoError(t, err)
	assert.Equal(t, "applink", string(mode))

	_, err = resolveMode("bogus")
	require.Error(t, err)
}
