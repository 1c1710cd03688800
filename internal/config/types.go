// internal/config/types.go
package config

import (
	"time"

	dcerrors "github.com/valpere/DressCodex/internal/errors"
	"github.com/valpere/DressCodex/internal/duplicate"
	"github.com/valpere/DressCodex/internal/llm"
	"github.com/valpere/DressCodex/internal/monitoring"
	"github.com/valpere/DressCodex/internal/retailer"
	"github.com/valpere/DressCodex/internal/scraper"
	"github.com/valpere/DressCodex/internal/utils"
	"github.com/valpere/DressCodex/internal/wardrobe"
)

// Config is the top-level DressCodex configuration file.
type Config struct {
	Server    ServerConfig          `yaml:"server" json:"server"`
	Log       LogConfig             `yaml:"log" json:"log"`
	Fetch     FetchConfig           `yaml:"fetch" json:"fetch"`
	LLM       LLMConfig             `yaml:"llm" json:"llm"`
	Mongo     wardrobe.MongoOptions `yaml:"mongo" json:"mongo"`
	Detection duplicate.Thresholds  `yaml:"detection" json:"detection"`
	Metrics   MetricsConfig         `yaml:"metrics" json:"metrics"`
	Retailers []retailer.Override   `yaml:"retailers,omitempty" json:"retailers,omitempty"`
}

// ServerConfig configures cmd/server.
type ServerConfig struct {
	Address         string        `yaml:"address" json:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	// WatchConfig reloads retailer overrides when the file changes.
	WatchConfig bool `yaml:"watch_config" json:"watch_config"`
}

// LogConfig selects the zap level and encoder.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"` // console or json
}

// FetchConfig configures the product page fetcher.
type FetchConfig struct {
	Timeout           time.Duration     `yaml:"timeout" json:"timeout"`
	RetryAttempts     int               `yaml:"retry_attempts" json:"retry_attempts"`
	RetryDelay        time.Duration     `yaml:"retry_delay" json:"retry_delay"`
	RequestsPerSecond float64           `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int               `yaml:"burst" json:"burst"`
	MaxBodyBytes      int64             `yaml:"max_body_bytes" json:"max_body_bytes"`
	UserAgents        []string          `yaml:"user_agents,omitempty" json:"user_agents,omitempty"`
	Headers           map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// ClientConfig converts the section into scraper client settings.
func (f FetchConfig) ClientConfig(metrics *monitoring.MetricsManager, logger utils.Logger) scraper.ClientConfig {
	return scraper.ClientConfig{
		Timeout:       f.Timeout,
		RetryAttempts: f.RetryAttempts,
		RetryDelay:    f.RetryDelay,
		UserAgents:    f.UserAgents,
		Headers:       f.Headers,
		RateLimit:     f.RequestsPerSecond,
		RateBurst:     f.Burst,
		MaxBodyBytes:  f.MaxBodyBytes,
		Metrics:       metrics,
		Logger:        logger,
	}
}

// LLM provider names.
const (
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
)

// LLMConfig configures the optional language model capabilities.
type LLMConfig struct {
	Provider          string        `yaml:"provider" json:"provider"`
	BaseURL           string        `yaml:"base_url" json:"base_url"`
	APIKey            string        `yaml:"api_key" json:"-"`
	Model             string        `yaml:"model" json:"model"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second"`
	MaxTokens         int           `yaml:"max_tokens" json:"max_tokens"`
	// Synthesize enables selector synthesis for unknown retailers.
	Synthesize bool `yaml:"synthesize" json:"synthesize"`
	// Compare enables the similarity tier and duplicate verdicts.
	Compare bool                          `yaml:"compare" json:"compare"`
	Breaker dcerrors.CircuitBreakerConfig `yaml:"breaker" json:"breaker"`
	Retry   dcerrors.RetryConfig          `yaml:"retry" json:"retry"`
}

// Enabled reports whether a provider is configured.
func (l LLMConfig) Enabled() bool {
	return l.Provider == ProviderOpenAI
}

// OpenAIConfig converts the section into provider settings.
func (l LLMConfig) OpenAIConfig() llm.OpenAIConfig {
	return llm.OpenAIConfig{
		BaseURL:           l.BaseURL,
		APIKey:            l.APIKey,
		Model:             l.Model,
		Timeout:           l.Timeout,
		RequestsPerSecond: l.RequestsPerSecond,
		MaxTokens:         l.MaxTokens,
		Breaker:           l.Breaker,
		Retry:             l.Retry,
	}
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Path      string `yaml:"path" json:"path"`
	Namespace string `yaml:"namespace" json:"namespace"`
	GoMetrics bool   `yaml:"go_metrics" json:"go_metrics"`
}

// MonitoringConfig converts the section into a metrics manager config.
func (m MetricsConfig) MonitoringConfig() monitoring.MetricsConfig {
	return monitoring.MetricsConfig{
		Namespace:       m.Namespace,
		EnableGoMetrics: m.GoMetrics,
	}
}
