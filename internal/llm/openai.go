package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultMaxTokens = 1000
)

// HTTPClient speaks the OpenAI-compatible chat-completions protocol,
// which both the primary and fallback providers expose.
type HTTPClient struct {
	name    string
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewHTTPClient builds a chat-completions client for one provider.
func NewHTTPClient(cfg ProviderConfig) (*HTTPClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("provider %q: %w", cfg.Name, ErrNotConfigured)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("provider %q: base URL is required", cfg.Name)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		name:    cfg.Name,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Name identifies the provider in logs and errors.
func (c *HTTPClient) Name() string { return c.name }

// Generate sends one blocking chat-completion request and returns the
// trimmed text of the first choice.
func (c *HTTPClient) Generate(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.User})

	payload := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   maxTokens,
	}
	resp, err := c.sendWithRetry(ctx, payload)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("provider %s returned no choices", c.name)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *HTTPClient) send(ctx context.Context, payload chatRequest) (*chatResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request to %s failed: %w", c.name, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, c.apiError(httpResp.StatusCode, respBody)
	}

	var out chatResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response from %s: %w", c.name, err)
	}
	return &out, nil
}

func (c *HTTPClient) apiError(statusCode int, body []byte) error {
	var parsed apiErrorResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Error.Message == "" {
		return fmt.Errorf("%s API error %d: %s", c.name, statusCode, string(body))
	}
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s API error %d: invalid API key: %s", c.name, statusCode, parsed.Error.Message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s API error %d: rate limit exceeded: %s", c.name, statusCode, parsed.Error.Message)
	case http.StatusBadRequest:
		return fmt.Errorf("%s API error %d: bad request: %s", c.name, statusCode, parsed.Error.Message)
	default:
		return fmt.Errorf("%s API error %d: %s", c.name, statusCode, parsed.Error.Message)
	}
}
