// Package config is the typed run configuration, read through viper from
// flags, FABEVAL_* environment variables and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/zhang-3000/meituan/internal/llm"
)

var (
	ErrNoInput    = errors.New("no input table given")
	ErrNoSegments = errors.New("segment allow-list is empty")
)

// DefaultSegments are the industry segments tracked when none are
// configured.
var DefaultSegments = []string{"健身中心", "台球", "运动培训"}

type Config struct {
	Input       string                        `mapstructure:"input"`
	Output      OutputConfig                  `mapstructure:"output"`
	Segments    []string                      `mapstructure:"segments"`
	SkipOracle  bool                          `mapstructure:"skip_oracle"`
	Journal     string                        `mapstructure:"journal"`
	MetricsFile string                        `mapstructure:"metrics_file"`
	Oracle      OracleConfig                  `mapstructure:"oracle"`
	Providers   map[string]llm.ProviderConfig `mapstructure:"providers"`
	Models      map[string]llm.ModelSelection `mapstructure:"models"`
	Log         LogConfig                     `mapstructure:"log"`
}

type OutputConfig struct {
	Dir    string `mapstructure:"dir"`
	Prefix string `mapstructure:"prefix"`
	// Format is the extension of the output table, "xlsx" or "csv".
	Format string `mapstructure:"format"`
}

type OracleConfig struct {
	// Model is a named selection from models or "provider/model".
	Model         string        `mapstructure:"model"`
	Interval      time.Duration `mapstructure:"interval"`
	MaxAttempts   int           `mapstructure:"max_attempts"`
	RateLimitWait time.Duration `mapstructure:"rate_limit_wait"`
	ErrorWait     time.Duration `mapstructure:"error_wait"`
	PromptFile    string        `mapstructure:"prompt_file"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output.dir", "results/evaluation")
	v.SetDefault("output.prefix", "fab_evaluation")
	v.SetDefault("output.format", "xlsx")
	v.SetDefault("segments", DefaultSegments)
	v.SetDefault("skip_oracle", false)

	v.SetDefault("oracle.model", "openai/gpt-4.1")
	v.SetDefault("oracle.interval", time.Second)
	v.SetDefault("oracle.max_attempts", 10)
	v.SetDefault("oracle.rate_limit_wait", 2*time.Second)
	v.SetDefault("oracle.error_wait", 2*time.Second)

	v.SetDefault("providers.openai.type", "openai")
	v.SetDefault("providers.openai.api_key", "$OPENAI_API_KEY")
	v.SetDefault("providers.openai.base_url", "$OPENAI_BASE_URL")
	v.SetDefault("providers.anthropic.type", "anthropic")
	v.SetDefault("providers.anthropic.api_key", "$ANTHROPIC_API_KEY")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	cfg.Segments = splitSegments(cfg.Segments)
	cfg.Output.Format = strings.TrimPrefix(strings.ToLower(cfg.Output.Format), ".")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// splitSegments accepts both a list and a single comma separated value,
// which is how FABEVAL_SEGMENTS arrives.
func splitSegments(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(strings.ReplaceAll(s, "，", ","), ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c *Config) Validate() error {
	if c.Input == "" {
		return ErrNoInput
	}
	if len(c.Segments) == 0 {
		return ErrNoSegments
	}
	switch c.Output.Format {
	case "xlsx", "csv":
	default:
		return fmt.Errorf("unsupported output format %q", c.Output.Format)
	}
	if c.Oracle.MaxAttempts <= 0 {
		return fmt.Errorf("oracle.max_attempts must be positive, got %d", c.Oracle.MaxAttempts)
	}
	if c.Oracle.Interval < 0 || c.Oracle.RateLimitWait < 0 || c.Oracle.ErrorWait < 0 {
		return errors.New("oracle waits must not be negative")
	}
	return nil
}

// ProvidersConfig returns the provider section in the shape llm expects.
func (c *Config) ProvidersConfig() *llm.ProvidersConfig {
	return &llm.ProvidersConfig{Providers: c.Providers, Models: c.Models}
}

// OracleLLM resolves the oracle model to a client configuration.
func (c *Config) OracleLLM() (llm.Config, error) {
	return c.ProvidersConfig().Resolve(c.Oracle.Model)
}
