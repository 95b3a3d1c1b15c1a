package llm

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUnknownProvider = errors.New("unknown provider")
	ErrEmptyResponse   = errors.New("empty response from model")
	ErrMissingAPIKey   = errors.New("API key not set")
)

// Completer sends a single-turn prompt to a chat model and returns the
// text of its reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Config selects one model on one provider.
type Config struct {
	Provider  string
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
}

// NewClient builds the Completer for cfg.Provider.
func NewClient(cfg Config) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w for provider %s", ErrMissingAPIKey, cfg.Provider)
	}

	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIClient(cfg), nil
	case "anthropic":
		return NewAnthropicClient(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}
