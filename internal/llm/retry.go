package llm

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

// RetryConfig defines the backoff policy for transient provider
// failures. A provider that answers with a well-formed error is never
// retried; only transport-level and throttling failures are.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryConfig matches the latency budget of an interactive chat
// turn.
var DefaultRetryConfig = RetryConfig{
	MaxRetries: 2,
	BaseDelay:  200 * time.Millisecond,
	MaxDelay:   3 * time.Second,
}

func (c *HTTPClient) sendWithRetry(ctx context.Context, payload chatRequest) (*chatResponse, error) {
	cfg := DefaultRetryConfig
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		resp, err := c.send(ctx, payload)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}
		if attempt == cfg.MaxRetries {
			break
		}

		select {
		case <-time.After(backoff(attempt, cfg.BaseDelay, cfg.MaxDelay)):
		case <-ctx.Done():
			return nil, fmt.Errorf("request cancelled during retry: %w", ctx.Err())
		}
	}
	return nil, fmt.Errorf("max retries (%d) exceeded: %w", cfg.MaxRetries, lastErr)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()

	if strings.Contains(msg, "invalid API key") ||
		strings.Contains(msg, "bad request") {
		return false
	}
	if strings.Contains(msg, "rate limit exceeded") {
		return true
	}
	for _, code := range []string{"error 500", "error 502", "error 503", "error 504"} {
		if strings.Contains(msg, code) {
			return true
		}
	}
	if strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "deadline exceeded") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "EOF") {
		return true
	}
	return false
}

// backoff is exponential with jitter to avoid synchronized retries.
func backoff(attempt int, base, max time.Duration) time.Duration {
	delay := time.Duration(math.Pow(2, float64(attempt))) * base
	if delay > max {
		delay = max
	}
	jitter := 0.5 + rand.Float64()
	return time.Duration(float64(delay) * jitter)
}
