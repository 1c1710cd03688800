// internal/scraper/extractor.go
package scraper

import (
	"html"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/valpere/DressCodex/internal/catalog"
	"github.com/valpere/DressCodex/internal/color"
	"github.com/valpere/DressCodex/internal/monitoring"
	"github.com/valpere/DressCodex/internal/retailer"
	"github.com/valpere/DressCodex/internal/utils"
)

// ErrNoName is returned when no name selector yields a value. Compare with
// errors.Is; the returned error carries the page URL as context.
var ErrNoName = utils.NewError(utils.ErrCodeNoName, "no product name found").
	WithoutStackTrace().
	WithUserMessage("We could not find a product name on that page.").
	Build()

// Extractor turns a parsed product page into an ExtractedProduct.
type Extractor struct {
	images  ImageSelector
	policy  *bluemonday.Policy
	metrics *monitoring.MetricsManager
	logger  utils.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithImageSelector replaces the HeuristicImageSelector.
func WithImageSelector(s ImageSelector) ExtractorOption {
	return func(e *Extractor) { e.images = s }
}

// WithExtractorMetrics records extraction outcomes and missing fields.
func WithExtractorMetrics(m *monitoring.MetricsManager) ExtractorOption {
	return func(e *Extractor) { e.metrics = m }
}

// WithExtractorLogger replaces the component logger.
func WithExtractorLogger(l utils.Logger) ExtractorOption {
	return func(e *Extractor) { e.logger = l }
}

// NewExtractor creates an extractor.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		images: NewHeuristicImageSelector(),
		policy: bluemonday.StrictPolicy(),
		logger: utils.NewComponentLogger("extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractHTML parses body and extracts it.
func (e *Extractor) ExtractHTML(body, pageURL string, cfg *retailer.Config) (*ExtractedProduct, error) {
	hp, err := NewHTMLParserFromString(body, pageURL)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrCodeParsingError, "failed to parse product page")
	}
	return e.extract(hp, pageURL, cfg)
}

// Extract reads name, price, color, image and brand from doc using cfg's
// ordered selectors. Only a missing name is an error (ErrNoName). A nil cfg
// uses the generic fallback for the page's host.
func (e *Extractor) Extract(doc *goquery.Document, pageURL string, cfg *retailer.Config) (*ExtractedProduct, error) {
	return e.extract(NewHTMLParserFromDocument(doc, pageURL), pageURL, cfg)
}

func (e *Extractor) extract(hp *HTMLParser, pageURL string, cfg *retailer.Config) (*ExtractedProduct, error) {
	start := time.Now()
	if cfg == nil {
		cfg = retailer.Fallback(utils.Hostname(pageURL))
	}
	log := e.logger.WithFields(map[string]interface{}{
		"retailer": cfg.Name,
		"url":      pageURL,
	})

	name, nameSelector, ok := hp.FirstMatch(cfg.Selectors.Name, e.nonEmpty)
	if !ok {
		e.metrics.RecordExtraction(cfg.Name, "no_name", time.Since(start))
		log.Warn("no selector produced a product name")
		return nil, utils.NewError(utils.ErrCodeNoName, ErrNoName.Message).
			WithUserMessage(ErrNoName.UserMessage).
			WithContext("url", pageURL).
			WithContext("retailer", cfg.Name).
			WithoutStackTrace().
			Build()
	}
	name = trimRetailerSuffix(e.clean(name), cfg.Name)

	product := &ExtractedProduct{
		Name:      name,
		Currency:  cfg.DefaultCurrency,
		Type:      catalog.Detect(name),
		SourceURL: cfg.TransformURL(pageURL),
		Retailer:  cfg.Name,
	}

	if raw, _, ok := hp.FirstMatch(cfg.Selectors.Price, func(v string) bool {
		_, parsed := ParsePrice(v)
		return parsed
	}); ok {
		amount, _ := ParsePrice(raw)
		value, _ := amount.Float64()
		product.Price = &value
		if currency, found := DetectCurrency(raw); found {
			product.Currency = currency
		}
	} else {
		e.metrics.RecordMissingField(cfg.Name, "price")
	}

	if raw, _, ok := hp.FirstMatch(cfg.Selectors.Color, e.nonEmpty); ok {
		product.RawColor = e.clean(raw)
		if n, found := color.Normalize(product.RawColor); found {
			product.Color = &n
		} else {
			log.WithField("raw_color", product.RawColor).Debug("color not in palette")
		}
	} else {
		e.metrics.RecordMissingField(cfg.Name, "color")
	}

	if img := e.images.SelectImage(hp.Document(), pageURL, cfg.Selectors.Image); img != "" {
		product.ImageURL = &img
	} else {
		e.metrics.RecordMissingField(cfg.Name, "image")
	}

	if brand := e.brand(hp, cfg); brand != "" {
		product.Brand = &brand
	} else {
		e.metrics.RecordMissingField(cfg.Name, "brand")
	}

	e.metrics.RecordExtraction(cfg.Name, "ok", time.Since(start))
	log.WithFields(map[string]interface{}{
		"name_selector": nameSelector,
		"type":          product.Type.String(),
	}).Debugf("extracted %q", product.Name)
	return product, nil
}

func (e *Extractor) brand(hp *HTMLParser, cfg *retailer.Config) string {
	if cfg.BrandDefault != "" {
		return cfg.BrandDefault
	}
	if raw, _, ok := hp.FirstMatch(cfg.Selectors.Brand, e.nonEmpty); ok {
		return e.clean(raw)
	}
	return cfg.BrandGuess
}

// clean strips markup, decodes entities and collapses whitespace.
func (e *Extractor) clean(s string) string {
	return utils.NormalizeSpaces(html.UnescapeString(e.policy.Sanitize(s)))
}

func (e *Extractor) nonEmpty(v string) bool {
	return e.clean(v) != ""
}

// trimRetailerSuffix drops a trailing "| Zara" or "- Zara" from page titles.
func trimRetailerSuffix(name, retailerName string) string {
	if retailerName == "" {
		return name
	}
	for _, sep := range []string{" | ", " - ", " – ", " · "} {
		suffix := sep + retailerName
		if len(name) > len(suffix) && strings.EqualFold(name[len(name)-len(suffix):], suffix) {
			if trimmed := strings.TrimSpace(name[:len(name)-len(suffix)]); trimmed != "" {
				return trimmed
			}
		}
	}
	return name
}
