package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/agentbridge/agentbridge/internal/agentforce/config"
	"github.com/agentbridge/agentbridge/internal/common/apperrors"
	"github.com/agentbridge/agentbridge/internal/common/httpclient"
)

type appLinkClientConfig struct {
	baseURL string
	token   string
}

func (c *appLinkClientConfig) GetBaseURL() string     { return c.baseURL }
func (c *appLinkClientConfig) GetAccessToken() string { return c.token }

// resolveAppLink retrieves a pre-authorized credential from the AppLink
// broker by connection name. The agent API base URL is the canonical host,
// deliberately ignoring whatever org domain the broker reports: the
// conversational agent API is reachable there for every tenant.
func resolveAppLink(ctx context.Context) (Credentials, apperrors.Error) {
	al := config.Config().AppLink
	if al.Connection == "" {
		return Credentials{}, ErrAppLinkNotConfigured
	}

	client := httpclient.NewClient(&appLinkClientConfig{
		baseURL: al.APIURL,
		token:   al.Token,
	})
	body, err := client.DoRequest(ctx, httpclient.RequestOptions{
		Method:  http.MethodGet,
		Path:    "/authorizations/" + al.Connection,
		Timeout: tokenRequestTimeout,
	})
	if err != nil {
		return Credentials{}, classifyAppLinkFailure(al.Connection, err)
	}

	accessToken := gjson.GetBytes(body, "accessToken").String()
	if accessToken == "" {
		return Credentials{}, ErrAppLinkMissingToken.Msg(fmt.Sprintf("AppLink authorization %q returned no access token", al.Connection))
	}

	return Credentials{
		AccessToken: accessToken,
		APIBaseURL:  al.GetAgentAPIURL(),
	}, nil
}

func classifyAppLinkFailure(connection string, err error) apperrors.Error {
	status := httpclient.StatusOf(err)
	switch {
	case status == 0:
		return ErrUnableToConnect.Err(err)
	case status == http.StatusNotFound:
		return ErrAppLinkConnectionNotFound.MsgErr(fmt.Sprintf("AppLink connection %q not found", connection), err)
	case status >= 500:
		return ErrServiceUnavailable.Err(err)
	default:
		return ErrAppLinkAuthorization.MsgErr(fmt.Sprintf("AppLink authorization failed with status %d", status), err).SetStatusCode(status)
	}
}
