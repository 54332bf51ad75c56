package llm

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

// CircuitBreakerConfig tunes the breaker wrapped around the provider
// chain.
type CircuitBreakerConfig struct {
	MaxRequests   uint32
	Interval      time.Duration
	Timeout       time.Duration
	ReadyToTrip   func(counts gobreaker.Counts) bool
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultCircuitBreakerConfig opens the circuit after a burst of
// provider failures and probes recovery after 30s.
var DefaultCircuitBreakerConfig = CircuitBreakerConfig{
	MaxRequests: 1,
	Interval:    10 * time.Second,
	Timeout:     30 * time.Second,
	ReadyToTrip: func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= 3 && (counts.ConsecutiveFailures >= 5 || failureRatio >= 0.6)
	},
}

// CircuitBreakerGenerator wraps a Generator so a flapping provider
// fails fast instead of stalling every turn on its timeout.
type CircuitBreakerGenerator struct {
	inner   Generator
	breaker *gobreaker.CircuitBreaker
}

// NewCircuitBreakerGenerator wraps gen with a named breaker.
func NewCircuitBreakerGenerator(gen Generator, name string, cfg CircuitBreakerConfig) *CircuitBreakerGenerator {
	settings := gobreaker.Settings{
		Name:          name,
		MaxRequests:   cfg.MaxRequests,
		Interval:      cfg.Interval,
		Timeout:       cfg.Timeout,
		ReadyToTrip:   cfg.ReadyToTrip,
		OnStateChange: cfg.OnStateChange,
	}
	return &CircuitBreakerGenerator{
		inner:   gen,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Generate executes the call through the breaker. When the circuit is
// open, gobreaker.ErrOpenState surfaces as an ordinary provider error.
func (g *CircuitBreakerGenerator) Generate(ctx context.Context, req Request) (string, error) {
	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.inner.Generate(ctx, req)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// State exposes the breaker state for health reporting.
func (g *CircuitBreakerGenerator) State() gobreaker.State {
	return g.breaker.State()
}
