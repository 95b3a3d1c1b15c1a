package llm

import (
	"fmt"
	"os"
	"strings"
)

// ProviderConfig represents a single LLM provider configuration
type ProviderConfig struct {
	Type    string        `yaml:"type" json:"type" mapstructure:"type"`             // "openai" (any OpenAI-compatible endpoint) or "anthropic"
	BaseURL string        `yaml:"base_url" json:"base_url" mapstructure:"base_url"` // Base URL for the API
	APIKey  string        `yaml:"api_key" json:"api_key" mapstructure:"api_key"`    // API key (can use $ENV_VAR syntax)
	Models  []ModelConfig `yaml:"models" json:"models" mapstructure:"models"`
}

// ModelConfig represents a single model configuration
type ModelConfig struct {
	ID        string `yaml:"id" json:"id" mapstructure:"id"`
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens" mapstructure:"max_tokens"`
}

// ModelSelection represents a model choice with provider and model ID
type ModelSelection struct {
	Provider string `yaml:"provider" json:"provider" mapstructure:"provider"`
	Model    string `yaml:"model" json:"model" mapstructure:"model"`
}

// ProvidersConfig represents the complete providers configuration
type ProvidersConfig struct {
	Providers map[string]ProviderConfig `yaml:"providers" json:"providers" mapstructure:"providers"`
	Models    map[string]ModelSelection `yaml:"models" json:"models" mapstructure:"models"` // Named selections such as "judge"
}

// ExpandEnvVars expands environment variables in the format $VAR_NAME.
// An unset variable expands to the empty string.
func ExpandEnvVars(value string) string {
	if strings.HasPrefix(value, "$") {
		return os.Getenv(strings.TrimPrefix(value, "$"))
	}
	return value
}

// Resolve turns a named selection ("judge") or a "provider/model" string
// into a client Config with environment variables expanded.
func (p *ProvidersConfig) Resolve(modelStr string) (Config, error) {
	providerName, modelID := modelStr, ""
	if selection, ok := p.Models[modelStr]; ok {
		providerName, modelID = selection.Provider, selection.Model
	} else if parts := strings.SplitN(modelStr, "/", 2); len(parts) == 2 {
		providerName, modelID = parts[0], parts[1]
	} else {
		return Config{}, fmt.Errorf("invalid model string: %s (use 'provider/model' or a named selection)", modelStr)
	}

	provider, ok := p.Providers[providerName]
	if !ok {
		return Config{}, fmt.Errorf("provider %s not found", providerName)
	}

	cfg := Config{
		Provider: provider.Type,
		APIKey:   ExpandEnvVars(provider.APIKey),
		BaseURL:  os.ExpandEnv(provider.BaseURL),
		Model:    modelID,
	}
	if cfg.Provider == "" {
		cfg.Provider = providerName
	}

	// Providers that list their models reject unknown ones; an empty list
	// accepts any model ID the endpoint serves.
	if len(provider.Models) == 0 {
		return cfg, nil
	}
	for _, m := range provider.Models {
		if m.ID == modelID {
			cfg.MaxTokens = m.MaxTokens
			return cfg, nil
		}
	}

	return Config{}, fmt.Errorf("model %s not found in provider %s", modelID, providerName)
}
