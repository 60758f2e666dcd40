// Package httpclient provides a configurable HTTP client for making requests
// to REST APIs. It handles bearer-token authentication, per-call timeouts,
// and error handling for server responses. The package requires a
// Configurator implementation for the base URL and credential details.
package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/tidwall/gjson"
)

// Configurator defines the interface for providing the server base URL and
// the bearer credential used on each request.
type Configurator interface {
	GetBaseURL() string
	GetAccessToken() string
}

// HTTPError represents an error response from the server with HTTP status
// code and message.
type HTTPError struct {
	StatusCode int    // HTTP status code of the error
	Message    string // Error message or response body
}

// Error implements the error interface for HTTPError.
func (e *HTTPError) Error() string {
	return e.Message
}

// StatusOf returns the HTTP status code carried by err, or 0 when err is not
// an HTTPError.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// IsTimeout reports whether err represents a timed-out or failed connection
// rather than a server-issued response.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// HTTPClient represents a client for making HTTP requests to a REST API
// server. It handles authentication, request building, and response
// processing.
type HTTPClient struct {
	config     Configurator
	httpClient *http.Client
}

// NewClient creates a new HTTP client using the provided configuration.
// The config parameter must implement the Configurator interface.
func NewClient(config Configurator) *HTTPClient {
	return &HTTPClient{
		config:     config,
		httpClient: &http.Client{},
	}
}

// RequestOptions contains options for making HTTP requests.
// Method and Path are required; the rest are optional.
type RequestOptions struct {
	Method      string            // HTTP method (GET, POST, DELETE)
	Path        string            // API endpoint path
	QueryParams map[string]string // Optional query parameters
	Headers     map[string]string // Optional extra request headers
	Body        []byte            // Optional request body
	ContentType string            // Content type of Body; application/json when empty
	Accept      string            // Optional Accept header
	Timeout     time.Duration     // Per-call timeout; no deadline when zero
}

func (c *HTTPClient) newRequest(ctx context.Context, opts RequestOptions) (*http.Request, context.CancelFunc, error) {
	u, err := url.Parse(c.config.GetBaseURL())
	if err != nil {
		return nil, nil, fmt.Errorf("invalid server URL: %v", err)
	}
	u.Path = path.Join(u.Path, opts.Path)

	q := u.Query()
	for k, v := range opts.QueryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	cancel := context.CancelFunc(func() {})
	if opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, u.String(), bytes.NewBuffer(opts.Body))
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed to create request: %v", err)
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	req.Header.Set("Content-Type", contentType)
	if opts.Accept != "" {
		req.Header.Set("Accept", opts.Accept)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if token := c.config.GetAccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, cancel, nil
}

// DoRequest makes an HTTP request with the given options.
// Returns the response body and any error that occurred. Responses with a
// status of 400 or above are returned as *HTTPError.
func (c *HTTPClient) DoRequest(ctx context.Context, opts RequestOptions) ([]byte, error) {
	req, cancel, err := c.newRequest(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer cancel()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    serverErrorMessage(body),
		}
	}

	return body, nil
}

// StreamRequest makes an HTTP request with the given options and returns a
// reader for streaming the response. Similar to DoRequest but returns an
// io.ReadCloser for live responses. The caller is responsible for closing
// the returned reader; the per-call timeout bounds the whole stream.
func (c *HTTPClient) StreamRequest(ctx context.Context, opts RequestOptions) (io.ReadCloser, error) {
	req, cancel, err := c.newRequest(ctx, opts)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		cancel()
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    serverErrorMessage(body),
		}
	}

	return &streamBody{ReadCloser: resp.Body, cancel: cancel}, nil
}

// streamBody ties the request's timeout context to the response body so the
// deadline is released when the caller closes the stream.
type streamBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (s *streamBody) Close() error {
	s.cancel()
	return s.ReadCloser.Close()
}

// serverErrorMessage extracts a usable message from an error response body.
// Salesforce endpoints answer either with an object carrying a message or
// error_description field, or with an array of such objects.
func serverErrorMessage(body []byte) string {
	for _, p := range []string{"message", "error_description", "error", "0.message"} {
		if v := gjson.GetBytes(body, p); v.Exists() && v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return string(body)
}
