// Package retailer resolves a product URL to the extraction configuration
// for its retailer: ordered CSS/meta selectors per field plus defaults.
package retailer

import (
	"strings"

	"github.com/valpere/DressCodex/internal/utils"
)

// Currency is the ISO code assumed for prices without a currency sign.
type Currency string

const (
	EUR Currency = "EUR"
	USD Currency = "USD"
)

// Source records how a Config was obtained.
type Source string

const (
	SourceRegistry    Source = "registry"
	SourceOverride    Source = "override"
	SourceSynthesized Source = "synthesized"
	SourceFallback    Source = "fallback"
)

// Selectors are ordered CSS selector lists per product field, most
// specific first.
type Selectors struct {
	Name  []string `yaml:"name" json:"name"`
	Price []string `yaml:"price" json:"price"`
	Color []string `yaml:"color" json:"color"`
	Image []string `yaml:"image" json:"image"`
	Brand []string `yaml:"brand,omitempty" json:"brand,omitempty"`
}

// Config is the extraction configuration for one retailer. Resolved
// configs are shared between requests and must not be modified.
type Config struct {
	Name            string    `json:"name"`
	Domain          string    `json:"domain"`
	DefaultCurrency Currency  `json:"default_currency"`
	Selectors       Selectors `json:"selectors"`
	// BrandDefault is used for every product of a single-brand retailer.
	BrandDefault string `json:"brand_default,omitempty"`
	// BrandGuess is used only when no brand selector matches.
	BrandGuess string `json:"brand_guess,omitempty"`
	// URLTransform rewrites product URLs before fetching; nil keeps them.
	URLTransform func(string) string `json:"-"`
	Headers      map[string]string   `json:"headers,omitempty"`
	Source       Source              `json:"source"`

	// key is the partial-match token, e.g. "zara" for "zara.com".
	key string
}

// TransformURL applies the retailer's URL rewrite, if any.
func (c *Config) TransformURL(rawURL string) string {
	if c == nil || c.URLTransform == nil {
		return rawURL
	}
	return c.URLTransform(rawURL)
}

func (c *Config) clone() *Config {
	out := *c
	out.Selectors = Selectors{
		Name:  append([]string(nil), c.Selectors.Name...),
		Price: append([]string(nil), c.Selectors.Price...),
		Color: append([]string(nil), c.Selectors.Color...),
		Image: append([]string(nil), c.Selectors.Image...),
		Brand: append([]string(nil), c.Selectors.Brand...),
	}
	if c.Headers != nil {
		out.Headers = make(map[string]string, len(c.Headers))
		for k, v := range c.Headers {
			out.Headers[k] = v
		}
	}
	return &out
}

// genericSelectors are broad selectors seen across most shops. They are
// appended after retailer-specific ones and make up the fallback config.
var genericSelectors = Selectors{
	Name: []string{
		"h1[itemprop='name']",
		"h1",
		"meta[property='og:title']",
		"meta[name='twitter:title']",
		"title",
	},
	Price: []string{
		"[itemprop='price']",
		"meta[property='product:price:amount']",
		"meta[property='og:price:amount']",
		"[data-testid*='price']",
		".price",
		"[class*='price']",
	},
	Color: []string{
		"[itemprop='color']",
		"meta[property='product:color']",
		"[data-testid*='color']",
		".color-name",
		".selected-color",
		"[class*='colour']",
		"[class*='color']",
	},
	Image: []string{
		"meta[property='og:image']",
		"meta[name='twitter:image']",
		"[itemprop='image']",
		".product-image img",
		"img[class*='product']",
	},
	Brand: []string{
		"[itemprop='brand'] [itemprop='name']",
		"[itemprop='brand']",
		"meta[property='product:brand']",
		"meta[property='og:brand']",
	},
}

// withFallbacks returns s with the generic selectors appended, skipping
// duplicates.
func withFallbacks(s Selectors) Selectors {
	return Selectors{
		Name:  appendUnique(s.Name, genericSelectors.Name),
		Price: appendUnique(s.Price, genericSelectors.Price),
		Color: appendUnique(s.Color, genericSelectors.Color),
		Image: appendUnique(s.Image, genericSelectors.Image),
		Brand: appendUnique(s.Brand, genericSelectors.Brand),
	}
}

func appendUnique(specific, generic []string) []string {
	out := make([]string, 0, len(specific)+len(generic))
	seen := make(map[string]bool, len(specific)+len(generic))
	for _, list := range [][]string{specific, generic} {
		for _, sel := range list {
			sel = strings.TrimSpace(sel)
			if sel == "" || seen[sel] {
				continue
			}
			seen[sel] = true
			out = append(out, sel)
		}
	}
	return out
}

// Fallback builds the generic config for host: broad selectors, a brand
// guessed from the domain name, and a currency guessed from the TLD.
func Fallback(host string) *Config {
	host = utils.Hostname(host)
	guess := brandFromHost(host)
	return &Config{
		Name:            guess,
		Domain:          host,
		DefaultCurrency: currencyFromHost(host),
		Selectors:       withFallbacks(Selectors{}),
		BrandGuess:      guess,
		Source:          SourceFallback,
	}
}

// brandFromHost turns "shop.acme-store.co.uk" into "Acme-Store".
func brandFromHost(host string) string {
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return utils.Capitalize(host)
	}
	i := len(labels) - 2
	switch labels[i] {
	case "co", "com", "org", "net":
		if i > 0 {
			i--
		}
	}
	return utils.Capitalize(labels[i])
}

func currencyFromHost(host string) Currency {
	switch {
	case strings.HasSuffix(host, ".com"), strings.HasSuffix(host, ".us"):
		return USD
	default:
		return EUR
	}
}

// stripQuery drops tracking query strings and fragments.
func stripQuery(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
