package llm

import (
	"context"
	"fmt"
)

// Router tries the primary provider first and falls back to the
// secondary only when the primary call fails. Provider precedence is
// configuration-driven: a configured primary key always wins.
type Router struct {
	primary  Generator
	fallback Generator
	primaryName,
	fallbackName string
}

// NewRouter builds the provider chain from configuration. At least one
// provider must be configured or ErrNotConfigured is returned; callers
// surface that as a configuration error, not a provider failure.
func NewRouter(primary, fallback ProviderConfig) (*Router, error) {
	r := &Router{}

	if primary.Configured() {
		client, err := NewHTTPClient(primary)
		if err != nil {
			return nil, err
		}
		r.primary = client
		r.primaryName = primary.Name
	}
	if fallback.Configured() {
		client, err := NewHTTPClient(fallback)
		if err != nil {
			return nil, err
		}
		r.fallback = client
		r.fallbackName = fallback.Name
	}

	// Only the fallback configured: promote it.
	if r.primary == nil && r.fallback != nil {
		r.primary, r.fallback = r.fallback, nil
		r.primaryName, r.fallbackName = r.fallbackName, ""
	}
	if r.primary == nil {
		return nil, ErrNotConfigured
	}
	return r, nil
}

// Generate calls the primary provider and, on failure, the fallback.
// When both fail the error names both so operators can tell which key
// or endpoint to fix.
func (r *Router) Generate(ctx context.Context, req Request) (string, error) {
	text, primaryErr := r.primary.Generate(ctx, req)
	if primaryErr == nil {
		return text, nil
	}
	if r.fallback == nil {
		return "", fmt.Errorf("%s failed and no fallback configured: %w", r.primaryName, primaryErr)
	}
	text, fallbackErr := r.fallback.Generate(ctx, req)
	if fallbackErr != nil {
		return "", fmt.Errorf("both providers failed: %s: %v; %s: %w",
			r.primaryName, primaryErr, r.fallbackName, fallbackErr)
	}
	return text, nil
}
