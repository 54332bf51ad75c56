package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileProvider retrieves values from files mounted as secrets, one
// value per file. Example: /var/secrets/openai-api-key.
type FileProvider struct {
	secretsPath string
}

// NewFileProvider creates a file-based provider rooted at secretsPath.
func NewFileProvider(secretsPath string) *FileProvider {
	return &FileProvider{secretsPath: secretsPath}
}

// GetSecret reads the value from a file. The key is mapped to a file
// name by lowercasing and replacing underscores with hyphens, so
// OPENAI_API_KEY becomes openai-api-key.
func (f *FileProvider) GetSecret(ctx context.Context, key string) (string, error) {
	if f.secretsPath == "" {
		return "", fmt.Errorf("secrets path not configured")
	}

	filename := strings.ToLower(strings.ReplaceAll(key, "_", "-"))
	path := filepath.Join(f.secretsPath, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read secret file %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Name returns the provider name.
func (f *FileProvider) Name() string {
	return "file"
}

// IsAvailable reports whether the secrets directory exists.
func (f *FileProvider) IsAvailable(ctx context.Context) bool {
	if f.secretsPath == "" {
		return false
	}
	info, err := os.Stat(f.secretsPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}
