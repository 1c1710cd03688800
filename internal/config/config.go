// internal/config/config.go
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	dcerrors "github.com/valpere/DressCodex/internal/errors"
	"github.com/valpere/DressCodex/internal/retailer"
	"github.com/valpere/DressCodex/internal/utils"
)

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(filename string) (*Config, error) {
	if filename == "" {
		return nil, utils.NewError(utils.ErrCodeInvalidConfig, "configuration filename cannot be empty").
			WithoutStackTrace().Build()
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, utils.NewError(utils.ErrCodeInvalidConfig, "failed to read configuration file").
			WithCause(err).
			WithContext("file", filename).
			WithUserMessage(fmt.Sprintf("Cannot read configuration file %s.", filename)).
			Build()
	}

	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes. Environment references
// are expanded before parsing, then defaults are applied and the result is
// validated.
func LoadFromBytes(data []byte) (*Config, error) {
	if len(data) == 0 {
		return nil, utils.NewError(utils.ErrCodeInvalidConfig, "configuration data cannot be empty").
			WithoutStackTrace().Build()
	}

	var config Config
	if err := yaml.Unmarshal([]byte(expandEnvironmentVariables(string(data))), &config); err != nil {
		return nil, utils.WrapError(err, utils.ErrCodeInvalidConfig, "failed to parse YAML configuration")
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, utils.NewError(utils.ErrCodeInvalidConfig, "invalid configuration").
			WithCause(err).
			WithUserMessage(err.Error()).
			Build()
	}

	return &config, nil
}

// LoadFromReader loads configuration from an io.Reader
func LoadFromReader(reader io.Reader) (*Config, error) {
	if reader == nil {
		return nil, utils.NewError(utils.ErrCodeInvalidConfig, "reader cannot be nil").WithoutStackTrace().Build()
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrCodeInvalidConfig, "failed to read configuration")
	}

	return LoadFromBytes(data)
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var config Config
	applyDefaults(&config)
	return &config
}

// SaveToWriter validates config and writes it as YAML.
func SaveToWriter(config *Config, writer io.Writer) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if writer == nil {
		return fmt.Errorf("writer cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return utils.WrapError(err, utils.ErrCodeInvalidConfig, "invalid configuration")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	return nil
}

// SaveToFile saves configuration to a YAML file
func SaveToFile(config *Config, filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}
	defer f.Close()

	return SaveToWriter(config, f)
}

// GenerateTemplate returns a starter configuration with the language model
// and MongoDB disabled and one example retailer override.
func GenerateTemplate() Config {
	config := Config{
		Server: ServerConfig{Address: ":8080", WatchConfig: true},
		Log:    LogConfig{Level: "info", Format: "console"},
		LLM: LLMConfig{
			Provider:   ProviderNone,
			BaseURL:    "https://api.openai.com/v1",
			APIKey:     "${OPENAI_API_KEY}",
			Model:      "gpt-4o-mini",
			Synthesize: true,
			Compare:    true,
		},
		Metrics: MetricsConfig{Enabled: true, GoMetrics: true},
		Retailers: []retailer.Override{
			{
				Domain:   "tienda.example.com",
				Name:     "Tienda",
				Currency: retailer.EUR,
				Selectors: retailer.Selectors{
					Name:  []string{"h1.product-title"},
					Price: []string{".product-price .current"},
					Color: []string{".product-color .selected"},
					Image: []string{".product-gallery img"},
				},
			},
		},
	}
	config.Mongo.Database = "dresscodex"
	applyDefaults(&config)
	return config
}

// envPattern matches ${VAR} and ${VAR:-default}. Bare $VAR is left alone
// so selectors and prices containing "$" survive.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// expandEnvironmentVariables substitutes environment variables in the configuration
func expandEnvironmentVariables(content string) string {
	return envPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := envPattern.FindStringSubmatch(match)
		if value, ok := os.LookupEnv(groups[1]); ok && value != "" {
			return value
		}
		return groups[2]
	})
}

// applyDefaults applies default values to the configuration
func applyDefaults(config *Config) {
	if config.Server.Address == "" {
		config.Server.Address = ":8080"
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = 15 * time.Second
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = 60 * time.Second
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = 10 * time.Second
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "console"
	}

	if config.Fetch.Timeout == 0 {
		config.Fetch.Timeout = 30 * time.Second
	}
	if config.Fetch.RetryAttempts == 0 {
		config.Fetch.RetryAttempts = 2
	}
	if config.Fetch.RetryDelay == 0 {
		config.Fetch.RetryDelay = time.Second
	}
	if config.Fetch.RequestsPerSecond == 0 {
		config.Fetch.RequestsPerSecond = 2
	}
	if config.Fetch.Burst == 0 {
		config.Fetch.Burst = 5
	}
	if config.Fetch.MaxBodyBytes == 0 {
		config.Fetch.MaxBodyBytes = 5 << 20
	}

	if config.LLM.Provider == "" {
		config.LLM.Provider = ProviderNone
	}
	if config.LLM.BaseURL == "" {
		config.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if config.LLM.Model == "" {
		config.LLM.Model = "gpt-4o-mini"
	}
	if config.LLM.Timeout == 0 {
		config.LLM.Timeout = 30 * time.Second
	}
	if config.LLM.RequestsPerSecond == 0 {
		config.LLM.RequestsPerSecond = 1
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 1024
	}
	defaults := dcerrors.DefaultCircuitBreakerConfig()
	if config.LLM.Breaker.MaxFailures == 0 {
		config.LLM.Breaker.MaxFailures = defaults.MaxFailures
	}
	if config.LLM.Breaker.ResetTimeout == 0 {
		config.LLM.Breaker.ResetTimeout = defaults.ResetTimeout
	}
	if config.LLM.Retry == (dcerrors.RetryConfig{}) {
		config.LLM.Retry = dcerrors.DefaultRetryConfig()
	}

	if config.Mongo.Collection == "" {
		config.Mongo.Collection = "wardrobeitems"
	}
	if config.Mongo.Timeout == 0 {
		config.Mongo.Timeout = 10 * time.Second
	}

	config.Detection = config.Detection.WithDefaults()

	if config.Metrics.Path == "" {
		config.Metrics.Path = "/metrics"
	}
	if config.Metrics.Namespace == "" {
		config.Metrics.Namespace = "dresscodex"
	}
}
