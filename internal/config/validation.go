// internal/config/validation.go - validation with field paths
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/andybalholm/cascadia"

	"github.com/valpere/DressCodex/internal/retailer"
)

// ValidationError represents a detailed validation error
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult holds validation results
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []string          `json:"warnings"`
}

func (r *ValidationResult) addError(field, value, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: message})
}

// Validate returns nil or an error listing every invalid field.
func (c *Config) Validate() error {
	result := c.ValidateWithDetails()
	if !result.Valid {
		return formatValidationError(result)
	}
	return nil
}

// ValidateWithDetails runs every check and collects errors and warnings.
func (c *Config) ValidateWithDetails() *ValidationResult {
	result := &ValidationResult{
		Errors:   make([]ValidationError, 0),
		Warnings: make([]string, 0),
	}

	c.validateServer(result)
	c.validateLog(result)
	c.validateFetch(result)
	c.validateLLM(result)
	c.validateMongo(result)
	c.validateDetection(result)
	c.validateRetailers(result)

	result.Valid = len(result.Errors) == 0
	return result
}

func (c *Config) validateServer(result *ValidationResult) {
	if strings.TrimSpace(c.Server.Address) == "" {
		result.addError("server.address", "", "address is required")
	}
	if c.Server.ReadTimeout < 0 {
		result.addError("server.read_timeout", c.Server.ReadTimeout.String(), "must not be negative")
	}
	if c.Server.WriteTimeout < 0 {
		result.addError("server.write_timeout", c.Server.WriteTimeout.String(), "must not be negative")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		result.addError("metrics.path", c.Metrics.Path, "must start with /")
	}
}

func (c *Config) validateLog(result *ValidationResult) {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		result.addError("log.level", c.Log.Level, "must be one of debug, info, warn, error")
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		result.addError("log.format", c.Log.Format, "must be console or json")
	}
}

func (c *Config) validateFetch(result *ValidationResult) {
	f := c.Fetch
	if f.Timeout < 0 {
		result.addError("fetch.timeout", f.Timeout.String(), "must not be negative")
	}
	if f.RequestsPerSecond < 0 {
		result.addError("fetch.requests_per_second", fmt.Sprint(f.RequestsPerSecond), "must not be negative")
	}
	if f.Burst < 0 {
		result.addError("fetch.burst", fmt.Sprint(f.Burst), "must not be negative")
	}
	if f.MaxBodyBytes < 0 {
		result.addError("fetch.max_body_bytes", fmt.Sprint(f.MaxBodyBytes), "must not be negative")
	}
	if f.RetryAttempts > 10 {
		result.Warnings = append(result.Warnings, "fetch.retry_attempts above 10 makes failing extractions very slow")
	}
}

func (c *Config) validateLLM(result *ValidationResult) {
	l := c.LLM
	switch l.Provider {
	case ProviderNone:
		if l.Synthesize || l.Compare {
			result.Warnings = append(result.Warnings,
				"llm.synthesize and llm.compare have no effect while llm.provider is none")
		}
		return
	case ProviderOpenAI:
	default:
		result.addError("llm.provider", l.Provider, "must be none or openai")
		return
	}

	if u, err := url.Parse(l.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		result.addError("llm.base_url", l.BaseURL, "must be an absolute http(s) URL")
	}
	if strings.TrimSpace(l.Model) == "" {
		result.addError("llm.model", "", "model is required when a provider is set")
	}
	if l.APIKey == "" {
		result.Warnings = append(result.Warnings, "llm.api_key is empty; requests will be sent unauthenticated")
	}
	if l.RequestsPerSecond < 0 {
		result.addError("llm.requests_per_second", fmt.Sprint(l.RequestsPerSecond), "must not be negative")
	}
	if l.Breaker.MaxFailures < 0 {
		result.addError("llm.breaker.max_failures", fmt.Sprint(l.Breaker.MaxFailures), "must not be negative")
	}
	if l.Retry.MaxRetries < 0 {
		result.addError("llm.retry.max_retries", fmt.Sprint(l.Retry.MaxRetries), "must not be negative")
	}
}

func (c *Config) validateMongo(result *ValidationResult) {
	m := c.Mongo
	if m.URI == "" {
		return
	}
	if !strings.HasPrefix(m.URI, "mongodb://") && !strings.HasPrefix(m.URI, "mongodb+srv://") {
		result.addError("mongo.uri", "", "must start with mongodb:// or mongodb+srv://")
	}
	if m.Database == "" {
		result.addError("mongo.database", "", "database is required when mongo.uri is set")
	}
	switch m.ReadPreference {
	case "", "primary", "primaryPreferred", "secondary", "secondaryPreferred", "nearest":
	default:
		result.addError("mongo.read_preference", m.ReadPreference, "unknown read preference")
	}
}

func (c *Config) validateDetection(result *ValidationResult) {
	d := c.Detection
	check := func(field string, v float64) {
		if v < 0 || v > 1 {
			result.addError("detection."+field, fmt.Sprint(v), "must be between 0 and 1")
		}
	}
	check("similar", d.Similar)
	check("verdict", d.Verdict)
	check("exact_verdict", d.ExactVerdict)
	check("brand_color", d.BrandColor)
	check("subcategory_color", d.SubcategoryColor)
	if d.ExactVerdict < d.Verdict {
		result.addError("detection.exact_verdict", fmt.Sprint(d.ExactVerdict), "must not be below detection.verdict")
	}
}

func (c *Config) validateRetailers(result *ValidationResult) {
	seen := make(map[string]int, len(c.Retailers))
	for i, r := range c.Retailers {
		prefix := fmt.Sprintf("retailers[%d]", i)

		domain := strings.TrimSpace(r.Domain)
		if domain == "" {
			result.addError(prefix+".domain", "", "domain is required")
		} else if j, dup := seen[strings.ToLower(domain)]; dup {
			result.addError(prefix+".domain", domain, fmt.Sprintf("duplicates retailers[%d]", j))
		} else {
			seen[strings.ToLower(domain)] = i
		}

		switch r.Currency {
		case "", retailer.EUR, retailer.USD:
		default:
			result.addError(prefix+".currency", string(r.Currency), "must be EUR or USD")
		}

		lists := []struct {
			name      string
			selectors []string
		}{
			{"name", r.Selectors.Name},
			{"price", r.Selectors.Price},
			{"color", r.Selectors.Color},
			{"image", r.Selectors.Image},
			{"brand", r.Selectors.Brand},
		}
		for _, l := range lists {
			for k, sel := range l.selectors {
				if err := validateCSSSelector(sel); err != nil {
					result.addError(fmt.Sprintf("%s.selectors.%s[%d]", prefix, l.name, k), sel, err.Error())
				}
			}
		}
	}
}

// validateCSSSelector compiles selector the same way goquery will.
func validateCSSSelector(selector string) error {
	if strings.TrimSpace(selector) == "" {
		return fmt.Errorf("empty selector")
	}
	if _, err := cascadia.ParseGroup(selector); err != nil {
		return fmt.Errorf("invalid selector: %v", err)
	}
	return nil
}

// formatValidationError creates a comprehensive error message
func formatValidationError(result *ValidationResult) error {
	var errorMsg strings.Builder

	errorMsg.WriteString("configuration validation failed:")
	for i, err := range result.Errors {
		fmt.Fprintf(&errorMsg, "\n  %d. %s: %s", i+1, err.Field, err.Message)
		if err.Value != "" {
			fmt.Fprintf(&errorMsg, " (value: %s)", err.Value)
		}
	}

	return fmt.Errorf("%s", errorMsg.String())
}

// Suggestions returns fixes for the sections that failed validation.
func (r *ValidationResult) Suggestions() []string {
	suggestions := make([]string, 0)
	sections := make(map[string]bool)
	for _, err := range r.Errors {
		section, _, _ := strings.Cut(err.Field, ".")
		if i := strings.Index(section, "["); i >= 0 {
			section = section[:i]
		}
		sections[section] = true
	}

	if sections["retailers"] {
		suggestions = append(suggestions,
			"Test CSS selectors using browser developer tools",
			"Each retailer override needs a unique domain")
	}
	if sections["llm"] {
		suggestions = append(suggestions, "Set llm.provider to none to run without a language model")
	}
	if sections["mongo"] {
		suggestions = append(suggestions, "Leave mongo.uri empty to disable event storage")
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions,
			"Check YAML indentation and formatting",
			"Run 'dresscodex template' for a complete example")
	}
	return suggestions
}
