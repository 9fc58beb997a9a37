package evm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// RetryConfig defines per-provider retry behavior.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

// DefaultRetryConfig provides sensible defaults.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:  3,
	InitialDelay: 500 * time.Millisecond,
}

// Client fans calls out across providers with retry and failover.
type Client struct {
	providers []*Provider
	retry     RetryConfig
	log       *slog.Logger
}

// NewClient creates a failover client over the given providers.
func NewClient(providers []*Provider, retry RetryConfig, log *slog.Logger) (*Client, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one provider is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{providers: providers, retry: retry, log: log}, nil
}

// Call tries each provider in order, retrying transient failures with
// linear backoff before failing over to the next one.
func (c *Client) Call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	var lastErr error

	for _, p := range c.providers {
		for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
			result, err := p.Call(ctx, method, params)
			if err == nil {
				return result, nil
			}
			lastErr = err

			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			if attempt < c.retry.MaxAttempts-1 {
				delay := c.retry.InitialDelay * time.Duration(attempt+1)
				timer := time.NewTimer(delay)
				select {
				case <-ctx.Done():
					timer.Stop()
					return nil, ctx.Err()
				case <-timer.C:
				}
			}
		}
		c.log.Warn("provider exhausted, failing over",
			"provider", p.Name(), "method", method, "error", lastErr)
	}

	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}
