package config

import (
	"context"
	"os"
)

// EnvProvider retrieves values from environment variables.
type EnvProvider struct{}

// NewEnvProvider creates a provider backed by the process environment.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

// GetSecret reads the value from the environment.
func (e *EnvProvider) GetSecret(ctx context.Context, key string) (string, error) {
	return os.Getenv(key), nil
}

// Name returns the provider name.
func (e *EnvProvider) Name() string {
	return "env"
}

// IsAvailable always returns true.
func (e *EnvProvider) IsAvailable(ctx context.Context) bool {
	return true
}
