// Package llm provides the text-generation transport: an
// OpenAI-compatible HTTP client, a primary/fallback router, retry for
// transient failures, and a circuit breaker.
package llm

import (
	"context"
	"errors"
	"time"
)

// Request carries one generation call. No structure is imposed on the
// prompts; callers own their own prompt formats.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Generator is the interface consumed by every component that needs
// text generation. Implementations must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ErrNotConfigured is returned when no provider has an API key set.
var ErrNotConfigured = errors.New("no text-generation provider configured")

// ProviderConfig describes one OpenAI-compatible endpoint.
type ProviderConfig struct {
	Name    string
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Configured reports whether this provider can be used at all.
func (c ProviderConfig) Configured() bool {
	return c.APIKey != ""
}
