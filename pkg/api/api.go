// pkg/api/api.go
package api

import (
	"context"

	"github.com/valpere/DressCodex/internal/catalog"
	"github.com/valpere/DressCodex/internal/color"
	"github.com/valpere/DressCodex/internal/config"
	"github.com/valpere/DressCodex/internal/duplicate"
	"github.com/valpere/DressCodex/internal/llm"
	"github.com/valpere/DressCodex/internal/monitoring"
	"github.com/valpere/DressCodex/internal/retailer"
	"github.com/valpere/DressCodex/internal/scraper"
	"github.com/valpere/DressCodex/internal/utils"
)

// Client composes retailer resolution, page fetching, extraction and
// duplicate detection behind one entry point.
type Client struct {
	resolver  *retailer.Resolver
	fetcher   scraper.Fetcher
	extractor *scraper.Extractor
	engine    *duplicate.Engine
	metrics   *monitoring.MetricsManager
	logger    utils.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithResolver replaces the default resolver.
func WithResolver(r *retailer.Resolver) ClientOption {
	return func(c *Client) { c.resolver = r }
}

// WithFetcher replaces the default HTTP fetcher.
func WithFetcher(f scraper.Fetcher) ClientOption {
	return func(c *Client) { c.fetcher = f }
}

// WithExtractor replaces the default extractor.
func WithExtractor(e *scraper.Extractor) ClientOption {
	return func(c *Client) { c.extractor = e }
}

// WithEngine replaces the default duplicate engine.
func WithEngine(e *duplicate.Engine) ClientOption {
	return func(c *Client) { c.engine = e }
}

// WithMetrics records metrics for every default component.
func WithMetrics(m *monitoring.MetricsManager) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the client logger.
func WithLogger(l utils.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client. Components not supplied as options are
// built with defaults and without a language model.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{logger: utils.NewComponentLogger("api")}
	for _, opt := range opts {
		opt(c)
	}

	if c.resolver == nil {
		c.resolver = retailer.NewResolver(retailer.WithMetrics(c.metrics))
	}
	if c.fetcher == nil {
		c.fetcher = scraper.NewHTTPClient(scraper.ClientConfig{Metrics: c.metrics})
	}
	if c.extractor == nil {
		c.extractor = scraper.NewExtractor(scraper.WithExtractorMetrics(c.metrics))
	}
	if c.engine == nil {
		c.engine = duplicate.NewEngine(duplicate.WithMetrics(c.metrics))
	}
	return c
}

// NewClientFromConfig wires every component from cfg. The language model
// provider is only created when cfg.LLM names one.
func NewClientFromConfig(cfg *config.Config, metrics *monitoring.MetricsManager) *Client {
	resolverOpts := []retailer.Option{retailer.WithMetrics(metrics)}
	engineOpts := []duplicate.Option{
		duplicate.WithMetrics(metrics),
		duplicate.WithThresholds(cfg.Detection),
	}

	if cfg.LLM.Enabled() {
		provider := llm.NewOpenAIProvider(cfg.LLM.OpenAIConfig())
		if cfg.LLM.Synthesize {
			resolverOpts = append(resolverOpts, retailer.WithSynthesizer(retailer.NewLLMSynthesizer(provider, metrics)))
		}
		if cfg.LLM.Compare {
			engineOpts = append(engineOpts, duplicate.WithComparator(duplicate.NewLLMComparator(provider, metrics)))
		}
	}

	resolver := retailer.NewResolver(resolverOpts...)
	resolver.Reload(cfg.Retailers)

	return NewClient(
		WithMetrics(metrics),
		WithResolver(resolver),
		WithFetcher(scraper.NewHTTPClient(cfg.Fetch.ClientConfig(metrics, utils.NewComponentLogger("fetcher")))),
		WithEngine(duplicate.NewEngine(engineOpts...)),
	)
}

// Resolver exposes the retailer resolver, e.g. for config reloads.
func (c *Client) Resolver() *retailer.Resolver { return c.resolver }

// Engine exposes the duplicate engine.
func (c *Client) Engine() *duplicate.Engine { return c.engine }

// ExtractProduct fetches pageURL with the retailer's headers and extracts
// the product from it.
func (c *Client) ExtractProduct(ctx context.Context, pageURL string) (*ExtractedProduct, error) {
	if !utils.IsValidURL(pageURL) {
		return nil, utils.NewError(utils.ErrCodeInvalidURL, "invalid product URL").
			WithContext("url", pageURL).
			WithUserMessage("Please provide an absolute http(s) product URL.").
			WithoutStackTrace().
			Build()
	}

	cfg := c.resolver.Resolve(ctx, pageURL)
	fetchURL := cfg.TransformURL(pageURL)
	page, err := c.fetcher.Fetch(ctx, fetchURL, cfg.Headers)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"url":      fetchURL,
		"retailer": cfg.Name,
		"attempts": page.Attempts,
	}).Debug("product page fetched")

	return c.extractor.ExtractHTML(string(page.Body), pageURL, cfg)
}

// ExtractFromHTML extracts a product from html the caller already fetched.
// pageURL selects the retailer config and resolves relative image URLs.
func (c *Client) ExtractFromHTML(ctx context.Context, pageURL, html string) (*ExtractedProduct, error) {
	if !utils.IsValidURL(pageURL) {
		return nil, utils.NewError(utils.ErrCodeInvalidURL, "invalid product URL").
			WithContext("url", pageURL).
			WithoutStackTrace().
			Build()
	}
	cfg := c.resolver.Resolve(ctx, pageURL)
	return c.extractor.ExtractHTML(html, pageURL, cfg)
}

// CheckDuplicates returns the ranked findings for the request's candidate.
func (c *Client) CheckDuplicates(ctx context.Context, req DuplicateCheckRequest) ([]Finding, error) {
	report, err := c.DetectDuplicates(ctx, req)
	if err != nil {
		return nil, err
	}
	return report.Findings, nil
}

// DetectDuplicates is CheckDuplicates plus the similarity tier status.
func (c *Client) DetectDuplicates(ctx context.Context, req DuplicateCheckRequest) (Report, error) {
	if err := req.Validate(); err != nil {
		return Report{}, invalidInput(err)
	}
	return c.engine.Detect(ctx, req.Candidate, req.ExistingItems), nil
}

// CheckDuplicate returns binary duplicate verdicts for the candidate.
func (c *Client) CheckDuplicate(ctx context.Context, req DuplicateCheckRequest) ([]Verdict, error) {
	if err := req.Validate(); err != nil {
		return nil, invalidInput(err)
	}
	return c.engine.CheckDuplicate(ctx, req.Candidate, req.ExistingItems), nil
}

// DetectEvent scans every pair of an event's items.
func (c *Client) DetectEvent(ctx context.Context, items []WardrobeItem) []Finding {
	return c.engine.DetectEvent(ctx, items)
}

// Classify detects the product type of text and normalizes rawColor.
// An empty rawColor is looked for in text instead.
func Classify(text, rawColor string) Classification {
	var out Classification
	if m, ok := catalog.Explain(text); ok {
		out.Type = m.Type
		out.Match = &m
	} else {
		out.Type = catalog.Other()
	}

	if rawColor == "" {
		rawColor = text
	}
	if name, ok := color.Normalize(rawColor); ok {
		out.Color = &name
		out.ColorDisplay = color.Display(name)
	}
	return out
}

func invalidInput(err error) error {
	return utils.NewError(utils.ErrCodeInvalidInput, err.Error()).
		WithCause(err).
		WithUserMessage(err.Error()).
		WithoutStackTrace().
		Build()
}
