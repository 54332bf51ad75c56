package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, ProviderConfig) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, ProviderConfig{
		Name:    "test",
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "test-model",
	}
}

func chatReply(text string) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": text}},
		},
	})
	return body
}

func TestHTTPClientGenerate(t *testing.T) {
	var captured chatRequest
	_, cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write(chatReply("  resposta  "))
	})

	client, err := NewHTTPClient(cfg)
	require.NoError(t, err)

	out, err := client.Generate(context.Background(), Request{
		System:      "sistema",
		User:        "pergunta",
		Temperature: 0.2,
		MaxTokens:   100,
	})
	require.NoError(t, err)
	assert.Equal(t, "resposta", out)

	assert.Equal(t, "test-model", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "sistema", captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, 100, captured.MaxTokens)
}

func TestHTTPClientDefaultsMaxTokens(t *testing.T) {
	var captured chatRequest
	_, cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		w.Write(chatReply("ok"))
	})

	client, err := NewHTTPClient(cfg)
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), Request{User: "oi"})
	require.NoError(t, err)
	assert.Equal(t, defaultMaxTokens, captured.MaxTokens)
}

func TestHTTPClientBadRequestNotRetried(t *testing.T) {
	calls := 0
	_, cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "model not found", "type": "invalid_request_error"}}`))
	})

	client, err := NewHTTPClient(cfg)
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), Request{User: "oi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad request")
	assert.Equal(t, 1, calls)
}

func TestHTTPClientRetriesServerErrors(t *testing.T) {
	calls := 0
	_, cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"error": {"message": "upstream down"}}`))
			return
		}
		w.Write(chatReply("recuperado"))
	})

	client, err := NewHTTPClient(cfg)
	require.NoError(t, err)

	out, err := client.Generate(context.Background(), Request{User: "oi"})
	require.NoError(t, err)
	assert.Equal(t, "recuperado", out)
	assert.Equal(t, 3, calls)
}

func TestHTTPClientNoChoices(t *testing.T) {
	_, cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	})

	client, err := NewHTTPClient(cfg)
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), Request{User: "oi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestNewHTTPClientRequiresKey(t *testing.T) {
	_, err := NewHTTPClient(ProviderConfig{Name: "p", BaseURL: "http://x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestRouterFallsBack(t *testing.T) {
	_, primaryCfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "bad key"}}`))
	})
	_, fallbackCfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(chatReply("do fallback"))
	})

	primaryCfg.Name = "primary"
	fallbackCfg.Name = "fallback"
	router, err := NewRouter(primaryCfg, fallbackCfg)
	require.NoError(t, err)

	out, err := router.Generate(context.Background(), Request{User: "oi"})
	require.NoError(t, err)
	assert.Equal(t, "do fallback", out)
}

func TestRouterBothFail(t *testing.T) {
	_, primaryCfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "bad key"}}`))
	})
	_, fallbackCfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"message": "no access"}}`))
	})

	primaryCfg.Name = "primary"
	fallbackCfg.Name = "fallback"
	router, err := NewRouter(primaryCfg, fallbackCfg)
	require.NoError(t, err)

	_, err = router.Generate(context.Background(), Request{User: "oi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "primary")
	assert.Contains(t, err.Error(), "fallback")
}

func TestRouterPromotesFallbackOnly(t *testing.T) {
	_, fallbackCfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(chatReply("só o fallback"))
	})
	fallbackCfg.Name = "fallback"

	router, err := NewRouter(ProviderConfig{Name: "primary"}, fallbackCfg)
	require.NoError(t, err)

	out, err := router.Generate(context.Background(), Request{User: "oi"})
	require.NoError(t, err)
	assert.Equal(t, "só o fallback", out)
}

func TestRouterNoProviders(t *testing.T) {
	_, err := NewRouter(ProviderConfig{}, ProviderConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

type flakyGenerator struct {
	err error
}

func (f *flakyGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "ok", nil
}

func TestCircuitBreakerPassesThrough(t *testing.T) {
	cb := NewCircuitBreakerGenerator(&flakyGenerator{}, "test", DefaultCircuitBreakerConfig)

	out, err := cb.Generate(context.Background(), Request{User: "oi"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	gen := &flakyGenerator{err: errors.New("provider down")}
	cb := NewCircuitBreakerGenerator(gen, "test", DefaultCircuitBreakerConfig)

	for i := 0; i < 6; i++ {
		_, _ = cb.Generate(context.Background(), Request{User: "oi"})
	}

	gen.err = nil
	_, err := cb.Generate(context.Background(), Request{User: "oi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
}
