package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/agentbridge/agentbridge/internal/agentforce/config"
	"github.com/agentbridge/agentbridge/internal/common/apperrors"
	"github.com/agentbridge/agentbridge/internal/common/httpclient"
)

// tokenRequestTimeout bounds the OAuth exchange.
const tokenRequestTimeout = 10 * time.Second

type directClientConfig struct {
	baseURL string
}

func (c *directClientConfig) GetBaseURL() string     { return c.baseURL }
func (c *directClientConfig) GetAccessToken() string { return "" }

// resolveDirect performs an OAuth2 client-credentials exchange against the
// tenant's token endpoint. The API base URL for subsequent calls is the
// instance URL returned by the exchange.
func resolveDirect(ctx context.Context) (Credentials, apperrors.Error) {
	sf := config.Config().Salesforce

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", sf.ClientID)
	form.Set("client_secret", sf.ClientSecret)

	client := httpclient.NewClient(&directClientConfig{baseURL: sf.MyDomainURL})
	body, err := client.DoRequest(ctx, httpclient.RequestOptions{
		Method:      http.MethodPost,
		Path:        "/services/oauth2/token",
		Body:        []byte(form.Encode()),
		ContentType: "application/x-www-form-urlencoded",
		Timeout:     tokenRequestTimeout,
	})
	if err != nil {
		return Credentials{}, classifyDirectFailure(err)
	}

	accessToken := gjson.GetBytes(body, "access_token").String()
	instanceURL := gjson.GetBytes(body, "instance_url").String()
	if accessToken == "" || instanceURL == "" {
		return Credentials{}, ErrInvalidResponse.Msg("token response missing access_token or instance_url")
	}

	return Credentials{
		AccessToken: accessToken,
		APIBaseURL:  instanceURL,
	}, nil
}

func classifyDirectFailure(err error) apperrors.Error {
	status := httpclient.StatusOf(err)
	switch {
	case status == 0:
		// no server response: connection failure or timeout
		return ErrUnableToConnect.Err(err)
	case status == http.StatusUnauthorized:
		return ErrInvalidClientCredentials.Err(err)
	case status >= 500:
		return ErrServiceUnavailable.Err(err)
	default:
		return ErrAuthentication.MsgErr(fmt.Sprintf("authentication failed with status %d", status), err).SetStatusCode(status)
	}
}
