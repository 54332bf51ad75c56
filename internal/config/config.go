// Package config loads application configuration from a chain of
// providers: mounted secret files first, environment variables as the
// fallback.
package config

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	LLM      LLMConfig
	News     NewsConfig
	Query    QueryConfig
	Report   ReportConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds PostgreSQL configuration. Connections opened
// from it are forced read-only.
type DatabaseConfig struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	SSLMode  string
}

// DSN renders the connection string for lib/pq, pinning the session to
// read-only transactions.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s sslmode=%s options='-c default_transaction_read_only=on'",
		d.Host, d.Port, d.Database, d.Username, d.Password, d.SSLMode,
	)
}

// MigrateDSN renders a writable connection string for migrations.
func (d DatabaseConfig) MigrateDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.Username, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LLMConfig holds model provider configuration. Primary and Fallback
// are OpenAI-compatible chat-completions endpoints.
type LLMConfig struct {
	PrimaryBaseURL  string
	PrimaryAPIKey   string
	PrimaryModel    string
	FallbackBaseURL string
	FallbackAPIKey  string
	FallbackModel   string
	Timeout         time.Duration
}

// NewsConfig holds the news provider configuration.
type NewsConfig struct {
	APIKey     string
	BaseURL    string
	MaxResults int
	CacheTTL   time.Duration
}

// QueryConfig holds question answering configuration.
type QueryConfig struct {
	RowLimit                int
	Timeout                 time.Duration
	RuleConfidenceThreshold float64
	AlwaysModel             bool
}

// ReportConfig holds report generation configuration.
type ReportConfig struct {
	CacheTTL time.Duration
}

// Loader loads configuration through a secret provider.
type Loader struct {
	provider SecretProvider
}

// NewLoader creates a loader with the given provider.
func NewLoader(provider SecretProvider) *Loader {
	return &Loader{provider: provider}
}

// NewDefaultLoader creates a loader with the default chain: mounted
// secret files, then environment variables.
func NewDefaultLoader() *Loader {
	return &Loader{
		provider: NewChainProvider(
			NewFileProvider("/var/secrets"),
			NewEnvProvider(),
		),
	}
}

// Load loads the complete configuration.
func (l *Loader) Load(ctx context.Context) (*Config, error) {
	cfg := &Config{}

	cfg.Server = ServerConfig{
		Port:    l.getString(ctx, "PORT", "8080"),
		GinMode: l.getString(ctx, "GIN_MODE", "release"),
	}

	cfg.Database = DatabaseConfig{
		Host:     l.getString(ctx, "DB_HOST", "localhost"),
		Port:     l.getString(ctx, "DB_PORT", "5432"),
		Database: l.getString(ctx, "DB_NAME", "srag"),
		Username: l.getString(ctx, "DB_USER", "srag"),
		Password: l.getString(ctx, "DB_PASSWORD", ""),
		SSLMode:  l.getString(ctx, "DB_SSLMODE", "disable"),
	}

	cfg.Redis = RedisConfig{
		Addr:     l.getString(ctx, "REDIS_ADDR", "localhost:6379"),
		Password: l.getString(ctx, "REDIS_PASSWORD", ""),
		DB:       l.getInt(ctx, "REDIS_DB", 0),
	}

	cfg.LLM = LLMConfig{
		PrimaryBaseURL:  l.getString(ctx, "OPENAI_BASE_URL", "https://api.openai.com/v1"),
		PrimaryAPIKey:   l.getString(ctx, "OPENAI_API_KEY", ""),
		PrimaryModel:    l.getString(ctx, "OPENAI_MODEL", "gpt-4o-mini"),
		FallbackBaseURL: l.getString(ctx, "GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		FallbackAPIKey:  l.getString(ctx, "GROQ_API_KEY", ""),
		FallbackModel:   l.getString(ctx, "GROQ_MODEL", "llama-3.1-8b-instant"),
		Timeout:         l.getDuration(ctx, "LLM_TIMEOUT", 30*time.Second),
	}

	cfg.News = NewsConfig{
		APIKey:     l.getString(ctx, "TAVILY_API_KEY", ""),
		BaseURL:    l.getString(ctx, "TAVILY_BASE_URL", "https://api.tavily.com"),
		MaxResults: l.getInt(ctx, "NEWS_MAX_RESULTS", 5),
		CacheTTL:   l.getDuration(ctx, "NEWS_CACHE_TTL", 15*time.Minute),
	}

	cfg.Query = QueryConfig{
		RowLimit:                l.getInt(ctx, "QUERY_ROW_LIMIT", 200),
		Timeout:                 l.getDuration(ctx, "QUERY_TIMEOUT", 30*time.Second),
		RuleConfidenceThreshold: l.getFloat(ctx, "RULE_CONFIDENCE_THRESHOLD", 0.55),
		AlwaysModel:             l.getBool(ctx, "INTENT_ALWAYS_MODEL", false),
	}

	cfg.Report = ReportConfig{
		CacheTTL: l.getDuration(ctx, "REPORT_CACHE_TTL", 10*time.Minute),
	}

	return cfg, nil
}

// MustLoad loads configuration and panics on error.
func (l *Loader) MustLoad(ctx context.Context) *Config {
	cfg, err := l.Load(ctx)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

func (l *Loader) getString(ctx context.Context, key, defaultValue string) string {
	value, err := l.provider.GetSecret(ctx, key)
	if err != nil || value == "" {
		return defaultValue
	}
	return value
}

func (l *Loader) getBool(ctx context.Context, key string, defaultValue bool) bool {
	value, err := l.provider.GetSecret(ctx, key)
	if err != nil || value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func (l *Loader) getInt(ctx context.Context, key string, defaultValue int) int {
	value, err := l.provider.GetSecret(ctx, key)
	if err != nil || value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}

func (l *Loader) getFloat(ctx context.Context, key string, defaultValue float64) float64 {
	value, err := l.provider.GetSecret(ctx, key)
	if err != nil || value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func (l *Loader) getDuration(ctx context.Context, key string, defaultValue time.Duration) time.Duration {
	value, err := l.provider.GetSecret(ctx, key)
	if err != nil || value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
