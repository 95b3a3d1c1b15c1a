package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvidersConfig_Resolve(t *testing.T) {
	t.Setenv("FABEVAL_TEST_KEY", "secret")

	pc := &ProvidersConfig{
		Providers: map[string]ProviderConfig{
			"gateway": {
				Type:    "openai",
				BaseURL: "https://gateway.example/v1",
				APIKey:  "$FABEVAL_TEST_KEY",
				Models:  []ModelConfig{{ID: "gpt-4.1", MaxTokens: 128}},
			},
			"anthropic": {APIKey: "plain"},
		},
		Models: map[string]ModelSelection{
			"judge": {Provider: "gateway", Model: "gpt-4.1"},
		},
	}

	cfg, err := pc.Resolve("judge")
	require.NoError(t, err)
	assert.Equal(t, Config{Provider: "openai", APIKey: "secret", BaseURL: "https://gateway.example/v1", Model: "gpt-4.1", MaxTokens: 128}, cfg)

	cfg, err = pc.Resolve("anthropic/claude-sonnet-4-5")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "claude-sonnet-4-5", cfg.Model)

	_, err = pc.Resolve("gateway/unknown")
	assert.Error(t, err)

	_, err = pc.Resolve("missing/model")
	assert.Error(t, err)

	_, err = pc.Resolve("no-such-selection")
	assert.Error(t, err)
}

func TestResolve_UnsetKeyIsMissing(t *testing.T) {
	t.Setenv("FABEVAL_UNSET_KEY", "")
	require.NoError(t, os.Unsetenv("FABEVAL_UNSET_KEY"))

	pc := &ProvidersConfig{
		Providers: map[string]ProviderConfig{
			"openai": {Type: "openai", APIKey: "$FABEVAL_UNSET_KEY"},
		},
	}

	cfg, err := pc.Resolve("openai/gpt-4.1")
	require.NoError(t, err)
	assert.Empty(t, cfg.APIKey)

	_, err = NewClient(cfg)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FABEVAL_TEST_KEY", "secret")
	assert.Equal(t, "secret", ExpandEnvVars("$FABEVAL_TEST_KEY"))
	assert.Equal(t, "literal", ExpandEnvVars("literal"))
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(Config{Provider: "openai"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewClient(Config{Provider: "ollama", APIKey: "k"})
	assert.ErrorIs(t, err, ErrUnknownProvider)

	c, err := NewClient(Config{Provider: "anthropic", APIKey: "k", Model: "claude-sonnet-4-5"})
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-5", c.Model())

	c, err = NewClient(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, defaultOpenAIModel, c.Model())
}

func TestOpenAIClient_Complete(t *testing.T) {
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotPrompt = req.Messages[0].Content

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"1","object":"chat.completion","model":"gpt-4.1","choices":[{"index":0,"message":{"role":"assistant","content":"{\"judge_1\": \"是\", \"judge_2\": \"主观\"}"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient(Config{APIKey: "k", BaseURL: srv.URL, Model: "gpt-4.1"})
	out, err := c.Complete(context.Background(), "判断：轻便")
	require.NoError(t, err)
	assert.Equal(t, "判断：轻便", gotPrompt)
	assert.Contains(t, out, "judge_1")
}

func TestOpenAIClient_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"slow down","type":"requests","code":"rate_limit_exceeded"}}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
}

func TestIsRateLimited(t *testing.T) {
	assert.False(t, IsRateLimited(nil))
	assert.False(t, IsRateLimited(errors.New("connection refused")))
	assert.True(t, IsRateLimited(errors.New("status 429: Too Many Requests")))
	assert.True(t, IsRateLimited(errors.New("调用频率超过限制")))
}
