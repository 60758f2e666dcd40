package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/sjson"

	"github.com/agentbridge/agentbridge/internal/agentforce/config"
)

const tokenResponse = `{"access_token":"tok-direct","instance_url":"https://instance.example.com","token_type":"Bearer"}`
const authorizationResponse = `{"accessToken":"tok-applink","orgDomainUrl":"https://org.example.com"}`

func setTestConfig(t *testing.T, mutate func(c *config.ConfigParam)) {
	t.Helper()
	c := &config.ConfigParam{
		FormatVersion:  config.ConfigFormatVersion,
		ServerHostName: "localhost",
		ServerPort:     "8787",
		Salesforce: config.SalesforceConfig{
			MyDomainURL:    "https://example.my.salesforce.com",
			ClientID:       "client-id",
			ClientSecret:   "client-secret",
			DefaultAgentID: "agent-1",
		},
		Cache: config.CacheConfig{Window: "1m"},
	}
	if mutate != nil {
		mutate(c)
	}
	config.SetTestConfig(c)
	ResetCache()
	t.Cleanup(ResetCache)
}

func TestResolveDirect(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/services/oauth2/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "client-secret", r.PostForm.Get("client_secret"))
		w.Write([]byte(tokenResponse))
	}))
	defer srv.Close()

	setTestConfig(t, func(c *config.ConfigParam) {
		c.Salesforce.MyDomainURL = srv.URL
	})

	creds, err := ResolveCredentials(context.Background(), ModeDirect)
	require.Nil(t, err)
	assert.Equal(t, "tok-direct", creds.AccessToken)
	// direct mode uses the instance URL from the OAuth response
	assert.Equal(t, "https://instance.example.com", creds.APIBaseURL)

	// second resolution within the cache window reuses the token
	_, err = ResolveCredentials(context.Background(), ModeDirect)
	require.Nil(t, err)
	assert.Equal(t, 1, calls)
}

func TestResolveDirectFailures(t *testing.T) {
	t.Run("missing access token", func(t *testing.T) {
		partial, jerr := sjson.Delete(tokenResponse, "access_token")
		require.NoError(t, jerr)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(partial))
		}))
		defer srv.Close()

		setTestConfig(t, func(c *config.ConfigParam) { c.Salesforce.MyDomainURL = srv.URL })

		_, err := ResolveCredentials(context.Background(), ModeDirect)
		require.NotNil(t, err)
		assert.ErrorIs(t, err, ErrInvalidResponse)
		assert.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("missing instance url", func(t *testing.T) {
		partial, jerr := sjson.Delete(tokenResponse, "instance_url")
		require.NoError(t, jerr)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(partial))
		}))
		defer srv.Close()

		setTestConfig(t, func(c *config.ConfigParam) { c.Salesforce.MyDomainURL = srv.URL })

		_, err := ResolveCredentials(context.Background(), ModeDirect)
		require.NotNil(t, err)
		assert.ErrorIs(t, err, ErrInvalidResponse)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid_client","error_description":"client identifier invalid"}`))
		}))
		defer srv.Close()

		setTestConfig(t, func(c *config.ConfigParam) { c.Salesforce.MyDomainURL = srv.URL })

		_, err := ResolveCredentials(context.Background(), ModeDirect)
		require.NotNil(t, err)
		assert.ErrorIs(t, err, ErrInvalidClientCredentials)
		assert.Equal(t, http.StatusUnauthorized, err.StatusCode())
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		setTestConfig(t, func(c *config.ConfigParam) { c.Salesforce.MyDomainURL = srv.URL })

		_, err := ResolveCredentials(context.Background(), ModeDirect)
		require.NotNil(t, err)
		assert.ErrorIs(t, err, ErrServiceUnavailable)
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // closed before use

		setTestConfig(t, func(c *config.ConfigParam) { c.Salesforce.MyDomainURL = srv.URL })

		_, err := ResolveCredentials(context.Background(), ModeDirect)
		require.NotNil(t, err)
		assert.ErrorIs(t, err, ErrUnableToConnect)
	})
}

func TestResolveAppLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/authorizations/my-connection", r.URL.Path)
		assert.Equal(t, "Bearer applink-token", r.Header.Get("Authorization"))
		w.Write([]byte(authorizationResponse))
	}))
	defer srv.Close()

	setTestConfig(t, func(c *config.ConfigParam) {
		c.AppLink = config.AppLinkConfig{
			APIURL:      srv.URL,
			Token:       "applink-token",
			Connection:  "my-connection",
			AgentAPIURL: "https://agent-api.example.com",
		}
	})

	creds, err := ResolveCredentials(context.Background(), ModeAppLink)
	require.Nil(t, err)
	assert.Equal(t, "tok-applink", creds.AccessToken)
	// the canonical agent API host wins over the org domain in the response
	assert.Equal(t, "https://agent-api.example.com", creds.APIBaseURL)
}

func TestResolveAppLinkFailures(t *testing.T) {
	t.Run("missing access token", func(t *testing.T) {
		partial, jerr := sjson.Delete(authorizationResponse, "accessToken")
		require.NoError(t, jerr)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(partial))
		}))
		defer srv.Close()

		setTestConfig(t, func(c *config.ConfigParam) {
			c.AppLink = config.AppLinkConfig{APIURL: srv.URL, Token: "tok", Connection: "my-connection"}
		})

		_, err := ResolveCredentials(context.Background(), ModeAppLink)
		require.NotNil(t, err)
		assert.ErrorIs(t, err, ErrAppLinkMissingToken)
		assert.Contains(t, err.Error(), "my-connection")
	})

	t.Run("connection not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"no such authorization"}`))
		}))
		defer srv.Close()

		setTestConfig(t, func(c *config.ConfigParam) {
			c.AppLink = config.AppLinkConfig{APIURL: srv.URL, Token: "tok", Connection: "missing"}
		})

		_, err := ResolveCredentials(context.Background(), ModeAppLink)
		require.NotNil(t, err)
		assert.ErrorIs(t, err, ErrAppLinkConnectionNotFound)
		assert.Equal(t, http.StatusNotFound, err.StatusCode())
	})

	t.Run("not configured", func(t *testing.T) {
		setTestConfig(t, nil)

		_, err := ResolveCredentials(context.Background(), ModeAppLink)
		require.NotNil(t, err)
		assert.ErrorIs(t, err, ErrAppLinkNotConfigured)
	})
}

func TestUnknownMode(t *testing.T) {
	setTestConfig(t, nil)

	_, err := ResolveCredentials(context.Background(), Mode("saml"))
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrUnknownMode)
	assert.False(t, Mode("saml").IsValid())
	assert.True(t, ModeDirect.IsValid())
	assert.True(t, ModeAppLink.IsValid())
}
