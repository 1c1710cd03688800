package retailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/valpere/DressCodex/internal/llm"
	"github.com/valpere/DressCodex/internal/monitoring"
	"github.com/valpere/DressCodex/internal/utils"
)

const synthesizerPrompt = `You write CSS selectors for fashion e-commerce product pages.
Given a product page URL, answer with ONE JSON object and nothing else:
{"name": "<retailer name>", "currency": "EUR" or "USD", "brand": "<brand if the shop sells a single brand, else empty>",
 "selectors": {"name": [...], "price": [...], "color": [...], "image": [...], "brand": [...]}}
Order each selector list from most to least specific. Prefer stable attributes
(itemprop, data-testid, meta tags) over generated class names.`

// LLMSynthesizer asks a language model for a retailer config.
type LLMSynthesizer struct {
	provider llm.Provider
	metrics  *monitoring.MetricsManager
}

// NewLLMSynthesizer creates a synthesizer over provider. metrics may be nil.
func NewLLMSynthesizer(provider llm.Provider, metrics *monitoring.MetricsManager) *LLMSynthesizer {
	return &LLMSynthesizer{provider: provider, metrics: metrics}
}

type synthesizedConfig struct {
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	Brand     string    `json:"brand"`
	Selectors Selectors `json:"selectors"`
}

// Synthesize implements Synthesizer.
func (s *LLMSynthesizer) Synthesize(ctx context.Context, pageURL string) (*Config, error) {
	if s.provider == nil || !s.provider.Available() {
		s.metrics.RecordCapabilityCall("config_synthesis", "absent")
		return nil, utils.NewError(utils.ErrCodeCapabilityUnavailable, "no language model configured").
			WithoutStackTrace().Build()
	}

	resp, err := s.provider.Generate(ctx, llm.Request{
		SystemPrompt: synthesizerPrompt,
		UserPrompt:   fmt.Sprintf("Product page URL: %s", pageURL),
		MaxTokens:    600,
		JSON:         true,
	})
	if err != nil {
		s.metrics.RecordCapabilityCall("config_synthesis", "failed")
		return nil, err
	}

	var parsed synthesizedConfig
	if err := llm.ParseJSON(resp.Content, &parsed); err != nil {
		s.metrics.RecordCapabilityCall("config_synthesis", "malformed")
		return nil, err
	}
	if len(parsed.Selectors.Name) == 0 {
		s.metrics.RecordCapabilityCall("config_synthesis", "malformed")
		return nil, utils.NewError(utils.ErrCodeMalformedResponse, "synthesized config has no name selectors").
			WithContext("url", pageURL).Build()
	}
	s.metrics.RecordCapabilityCall("config_synthesis", "ok")

	cfg := &Config{
		Name:         strings.TrimSpace(parsed.Name),
		BrandDefault: strings.TrimSpace(parsed.Brand),
		Selectors:    parsed.Selectors,
	}
	switch Currency(strings.ToUpper(parsed.Currency)) {
	case USD:
		cfg.DefaultCurrency = USD
	case EUR:
		cfg.DefaultCurrency = EUR
	}
	return cfg, nil
}
