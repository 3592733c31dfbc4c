// Package upstream implements the client for the third-party quote, search
// and history API that the market-data proxy normalizes.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=upstream_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for the upstream market-data API.
type Client struct {
	// baseURL is the base URL for the API.
	baseURL string
	// httpClient is the HTTP client used for all requests.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// query contains additional query parameters to be sent with each request.
	query url.Values
	log   zerolog.Logger
}

// Option is a configuration option for the upstream client.
type Option func(*Client)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithAPIKey sends the given key as a query parameter on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.query.Set("apikey", key)
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log.With().Str("client", "upstream").Logger()
	}
}

// NewClient creates a new upstream API client.
func NewClient(options ...Option) *Client {
	var client = &Client{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
		log:        zerolog.Nop(),
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// Name identifies this source in logs and decorators.
func (c *Client) Name() string { return "upstream" }

// get performs a GET against path with extra query parameters and returns
// the response body. Non-2xx statuses become transport UpstreamErrors.
func (c *Client) get(ctx context.Context, op, path string, extra url.Values) ([]byte, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	q := u.Query()
	for key, values := range c.query {
		for _, value := range values {
			q.Add(key, value)
		}
	}
	for key, values := range extra {
		for _, value := range values {
			q.Add(key, value)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	for key, values := range c.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<10))
		return nil, &UpstreamError{
			Op:     op,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("GET %s -> %d: %s", u.Path, resp.StatusCode, string(b)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	return body, nil
}
