// internal/common/http/client.go
package http

import (
	"context"
	"net/http"
	"time"
)

// Client wraps the standard HTTP client with the console's outbound
// defaults: a hard request timeout, JSON content type, and the platform
// API-key header.
type Client struct {
	httpClient *http.Client
	apiKey     string
}

func NewClient(timeout time.Duration, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiKey: apiKey,
	}
}

// DoJSON executes the request under ctx with the outbound defaults
// applied. The API-key header is omitted when no key is configured.
func (c *Client) DoJSON(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	return c.httpClient.Do(req)
}
