// internal/common/agent/client.go
package agent

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"content-analyzer/internal/common/errors"
	commonhttp "content-analyzer/internal/common/http"
	"content-analyzer/internal/models"
)

const (
	DefaultTimeout = 30 * time.Second

	testConnectionInput = "Test connection"
	timestampLayout     = "2006-01-02T15:04:05.000Z07:00"
)

// Request is the body posted to the agent endpoint.
type Request struct {
	Input     string `json:"input"`
	Timestamp string `json:"timestamp,omitempty"`
	Test      bool   `json:"test,omitempty"`
}

// Client talks to a remote agent that answers with a StructuredResponse.
// It never retries; retry policy belongs to the caller.
type Client struct {
	http    *commonhttp.Client
	timeout time.Duration
	now     func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = commonhttp.NewClient(hc)
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient returns a client whose calls are bounded by timeout, or by
// DefaultTimeout when timeout is not positive.
func NewClient(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		http:    commonhttp.NewClient(nil),
		timeout: timeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Timeout() time.Duration { return c.timeout }

// Analyze posts input and decodes the agent's answer as-is. Missing endpoint
// or key fails before any request is made.
func (c *Client) Analyze(ctx context.Context, endpoint, apiKey, input string) (*models.StructuredResponse, error) {
	if err := RequireConfig(endpoint, apiKey); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.http.PostJSON(ctx, endpoint, apiKey, Request{
		Input:     input,
		Timestamp: c.now().UTC().Format(timestampLayout),
	})
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	defer commonhttp.Drain(resp)

	if !commonhttp.IsSuccess(resp) {
		return nil, errors.NewUpstreamRejectedError(resp.StatusCode, resp.Status)
	}

	var out *models.StructuredResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if ctx.Err() != nil {
			return nil, c.transportError(ctx, err)
		}
		return nil, errors.NewUpstreamInvalidResponseError(err)
	}
	if out == nil {
		return nil, errors.NewUpstreamInvalidResponseError(stderrors.New("response body is null"))
	}

	return out, nil
}

// TestConnection posts a marked test request and only checks the status.
func (c *Client) TestConnection(ctx context.Context, endpoint, apiKey string) error {
	if err := RequireConfig(endpoint, apiKey); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.http.PostJSON(ctx, endpoint, apiKey, Request{Input: testConnectionInput, Test: true})
	if err != nil {
		return c.transportError(ctx, err)
	}
	defer commonhttp.Drain(resp)

	if !commonhttp.IsSuccess(resp) {
		return errors.NewUpstreamRejectedError(resp.StatusCode, resp.Status)
	}
	return nil
}

// RequireConfig names every missing live-mode field.
func RequireConfig(endpoint, apiKey string) error {
	var missing []string
	if endpoint == "" {
		missing = append(missing, "endpoint")
	}
	if apiKey == "" {
		missing = append(missing, "apiKey")
	}
	if len(missing) > 0 {
		return errors.NewConfigurationMissingError(missing...)
	}
	return nil
}

func (c *Client) transportError(ctx context.Context, err error) error {
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewUpstreamTimeoutError(c.timeout, err)
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.NewUpstreamTimeoutError(c.timeout, err)
	}
	return errors.NewUpstreamUnavailableError(err)
}
