// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"content-analyzer/internal/common/config"
	"content-analyzer/internal/common/errors"
	"content-analyzer/internal/common/logger"
)

// Client owns the gateway connection used by the job workers.
type Client struct {
	zb     zbc.Client
	config *ClientConfig
}

type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	Retry                  RetryConfig
}

// RetryConfig bounds the start-up connection attempts.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

var DefaultRetryConfig = RetryConfig{
	MaxAttempts: 10,
	BaseDelay:   1 * time.Second,
	MaxDelay:    10 * time.Second,
}

// ConfigFrom maps the camunda config section onto a client config.
func ConfigFrom(cfg config.CamundaConfig) *ClientConfig {
	timeout := config.GetDuration(cfg.RequestTimeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      timeout,
		Retry:                  DefaultRetryConfig,
	}
}

// Connect dials the gateway and waits for a topology answer, backing off
// between attempts until the retry budget or ctx runs out.
func Connect(ctx context.Context, cc *ClientConfig, log logger.Logger) (*Client, error) {
	zb, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cc.GatewayAddress,
		UsePlaintextConnection: cc.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{zb: zb, config: cc}

	attempts := cc.Retry.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		err = c.HealthCheck(ctx)
		if err == nil {
			return c, nil
		}
		if !errors.IsRetryableErrorCode(errors.CodeOf(err)) || attempt == attempts-1 {
			break
		}

		delay := backoff(attempt, cc.Retry.BaseDelay, cc.Retry.MaxDelay)
		log.Warn("zeebe gateway not ready, retrying", map[string]interface{}{
			"gateway":     cc.GatewayAddress,
			"attempt":     attempt + 1,
			"nextRetryIn": delay.String(),
			"error":       err.Error(),
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			_ = zb.Close()
			return nil, ctx.Err()
		}
	}

	_ = zb.Close()
	return nil, err
}

// Zeebe returns the raw client for opening job workers.
func (c *Client) Zeebe() zbc.Client {
	return c.zb
}

func (c *Client) Close() error {
	return c.zb.Close()
}

// HealthCheck asks the gateway for its topology.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.zb.NewTopologyCommand().Send(ctx); err != nil {
		return mapZeebeError(err, c.config.ConnectionTimeout)
	}
	return nil
}

func backoff(attempt int, base, ceiling time.Duration) time.Duration {
	delay := base * time.Duration(1<<attempt)
	if ceiling > 0 && (delay > ceiling || delay <= 0) {
		return ceiling
	}
	return delay
}

func isRetryableZeebeError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// mapZeebeError keeps transient gateway failures retryable; anything else
// (auth, bad address) surfaces as an internal error.
func mapZeebeError(err error, timeout time.Duration) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "deadline exceeded") || strings.Contains(msg, "timeout"):
		return errors.NewUpstreamTimeoutError(timeout, fmt.Errorf("zeebe: %w", err))
	case isRetryableZeebeError(err):
		return errors.NewUpstreamUnavailableError(fmt.Errorf("zeebe: %w", err))
	default:
		return fmt.Errorf("zeebe gateway error: %w", err)
	}
}
