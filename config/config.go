// Package config loads and validates the advisor service configuration from
// file and ADVISOR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/llm"
)

// DefaultDomains is the evidence allow-list applied when a request does not
// supply its own. Broad coverage across the three advisory topics.
var DefaultDomains = []string{
	"who.int", "cdc.gov", "nhs.uk", "mayoclinic.org", "healthline.com",
	"medlineplus.gov", "examine.com", "sleepfoundation.org",
	"investopedia.com", "nerdwallet.com", "bankrate.com", "consumerfinance.gov",
	"lonelyplanet.com", "wikitravel.org", "wikivoyage.org",
}

// Config holds all configuration for the advisor service.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address        string        `mapstructure:"address"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

func (s ServerConfig) Validate() error {
	if strings.TrimSpace(s.Address) == "" {
		return fmt.Errorf("server.address is required")
	}
	return nil
}

// LLMConfig contains the default LLM provider settings. Requests may override
// any field per call.
type LLMConfig struct {
	Provider       string        `mapstructure:"provider"`
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	Temperature    float64       `mapstructure:"temperature"`
	MaxRetries     int           `mapstructure:"max_retries"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

func (l LLMConfig) Validate() error {
	switch l.Provider {
	case llm.ProviderStub, llm.ProviderGrok, llm.ProviderOpenAICompatible:
	default:
		return fmt.Errorf("llm.provider %q is not supported", l.Provider)
	}
	if l.Provider != llm.ProviderStub && strings.TrimSpace(l.APIKey) == "" {
		return fmt.Errorf("llm.api_key is required for provider %q", l.Provider)
	}
	return nil
}

// ToClientConfig converts the section into the client's own config type.
func (l LLMConfig) ToClientConfig() llm.Config {
	return llm.Config{
		Provider:       l.Provider,
		BaseURL:        l.BaseURL,
		APIKey:         l.APIKey,
		Model:          l.Model,
		EmbeddingModel: l.EmbeddingModel,
		Temperature:    l.Temperature,
		MaxRetries:     l.MaxRetries,
		Timeout:        l.Timeout,
	}
}

// RetrievalConfig bounds the evidence ranking stage.
type RetrievalConfig struct {
	BudgetK        int      `mapstructure:"budget_k"`
	AllowedDomains []string `mapstructure:"allowed_domains"`
}

func (r RetrievalConfig) Validate() error {
	if r.BudgetK <= 0 {
		return fmt.Errorf("retrieval.budget_k must be > 0")
	}
	return nil
}

// FetchConfig bounds the evidence fetch stage.
type FetchConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	MinTextLen  int           `mapstructure:"min_text_len"`
	MaxChars    int           `mapstructure:"max_chars"`
	MaxParallel int           `mapstructure:"max_parallel"`
	Headless    bool          `mapstructure:"headless"`
}

func (f FetchConfig) Validate() error {
	if f.MaxParallel <= 0 {
		return fmt.Errorf("fetch.max_parallel must be > 0")
	}
	return nil
}

// TelemetryConfig contains monitoring settings.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if err := c.Retrieval.Validate(); err != nil {
		return err
	}
	return c.Fetch.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.request_timeout", 5*time.Minute)
	v.SetDefault("llm.provider", llm.ProviderStub)
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.timeout", 90*time.Second)
	v.SetDefault("retrieval.budget_k", 8)
	v.SetDefault("retrieval.allowed_domains", DefaultDomains)
	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.min_text_len", 120)
	v.SetDefault("fetch.max_chars", 20000)
	v.SetDefault("fetch.max_parallel", 4)
	v.SetDefault("telemetry.enabled", true)
}

// LoadConfig loads configuration from the given file path, or from the usual
// lookup paths when path is empty. A missing file is not an error: defaults
// plus ADVISOR_* environment variables still produce a runnable config.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	setDefaults(v)

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("ADVISOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
