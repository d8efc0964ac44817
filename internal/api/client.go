// Package api is the HTTP client for the remote lensline analysis service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/lensline/internal/common"
	"golang.org/x/oauth2"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// Config configures the remote client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Offline bool
}

// Client talks to the remote service. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	offline    bool
}

// New creates a client. tokens may be nil, in which case every request is
// sent unauthenticated.
func New(cfg Config, tokens oauth2.TokenSource) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		offline: cfg.Offline,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &bearerTransport{
				tokens: tokens,
				base: &http.Transport{
					Proxy:               http.ProxyFromEnvironment,
					MaxIdleConns:        100,
					MaxIdleConnsPerHost: 10,
					IdleConnTimeout:     90 * time.Second,
				},
			},
		},
	}
}

// Offline reports whether remote calls are disabled.
func (c *Client) Offline() bool {
	return c.offline
}

func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.baseURL + "/" + strings.Join(escaped, "/")
}

func (c *Client) newJSONRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends req and decodes a 2xx JSON body into out (skipped when out is nil).
func (c *Client) do(req *http.Request, out any) error {
	if c.offline {
		return common.ErrOffline
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %w", common.ErrMalformedPayload, err)
	}
	return nil
}

func decodeError(status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
	}
	// Bodies that are not JSON simply carry no message.
	_ = json.Unmarshal(body, &payload)
	return &Error{StatusCode: status, Message: strings.TrimSpace(payload.Message)}
}

// unavailable turns a failed call into an Unavailable result, keeping
// context cancellation distinguishable for callers that care.
func unavailable[T any](op string, err error) Result[T] {
	if errors.Is(err, context.Canceled) {
		return Unavailable[T](err)
	}
	return Unavailable[T](fmt.Errorf("%s: %w", op, err))
}
