package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetVersion(t *testing.T) {
	setupFakePlatform(t)

	req, _ := http.NewRequest("GET", "/version", nil)
	response := executeTestRequest(t, req)

	require.Equal(t, http.StatusOK, response.Code)
	checkHeader(t, response.Result().Header)

	rsp := &GetVersionRsp{}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), rsp))
	assert.Contains(t, rsp.ServerVersion, Version)
	assert.Equal(t, ApiVersion, rsp.ApiVersion)
}

func TestGetReadiness(t *testing.T) {
	setupFakePlatform(t)

	req, _ := http.NewRequest("GET", "/ready", nil)
	response := executeTestRequest(t, req)

	require.Equal(t, http.StatusOK, response.Code)
	checkHeader(t, response.Result().Header)
	assert.JSONEq(t, `{"status":"ready"}`, response.Body.String())
}

func TestIsVersionCompatible(t *testing.T) {
	assert.True(t, IsVersionCompatible(ApiVersion))
	assert.False(t, IsVersionCompatible("9.0.0"))
	assert.False(t, IsVersionCompatible("not-a-version"))
}
