package funcsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/portal/pkg/slogx"
)

// Endpoint names, relative to the client's base URL.
const (
	EndpointGenPassword = "gen-password"
	EndpointGenerate2FA = "generate2fa"
	EndpointAuthUser    = "authuser"
)

// DefaultTimeout bounds a whole request, body included.
const DefaultTimeout = 10 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// Client calls the authentication functions. It holds no per-call state and
// is safe for concurrent use.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the functions rooted at baseURL, for example
// "https://functions.example.com/function".
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

func (c *Client) url(endpoint string) string {
	return c.BaseURL + "/" + endpoint
}

// post sends payload as JSON to endpoint and returns the raw response body of
// a 2xx answer.
func (c *Client) post(ctx context.Context, endpoint, operation string, payload any) ([]byte, error) {
	log := slogx.FromContext(ctx).With("endpoint", endpoint)

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(endpoint), bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain, */*")

	start := time.Now()
	log.Debug("function request", "url", req.URL.String())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Warn("function unreachable", "err", err)
		return nil, &NetworkError{Endpoint: endpoint, Operation: operation, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		log.Warn("failed to read function response", "status", resp.StatusCode, "err", err)
		return nil, &NetworkError{Endpoint: endpoint, Operation: operation, Err: err}
	}
	if len(body) > maxResponseBytes {
		log.Warn("function response too large", "status", resp.StatusCode, "limit", maxResponseBytes)
		return nil, &NetworkError{Endpoint: endpoint, Operation: operation, Err: ErrResponseTooLarge}
	}

	log.Debug("function response",
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{
			Endpoint:   endpoint,
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	return body, nil
}
