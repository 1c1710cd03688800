package retailer

import (
	"strings"
	"sync"

	"github.com/valpere/DressCodex/internal/utils"
)

// Registry is the static table of known retailers. Exact domain matches
// win over partial matches; partial matches are tried in table order.
type Registry struct {
	mu      sync.RWMutex
	entries []*Config
}

// NewRegistry creates a registry from configs. Each config gets the
// generic selectors appended.
func NewRegistry(configs ...*Config) *Registry {
	r := &Registry{}
	for _, c := range configs {
		r.Add(c)
	}
	return r
}

// DefaultRegistry returns a registry holding the built-in retailers.
func DefaultRegistry() *Registry {
	return NewRegistry(builtin()...)
}

// Add registers cfg, replacing an entry with the same domain.
func (r *Registry) Add(cfg *Config) {
	c := cfg.clone()
	c.Domain = utils.Hostname(c.Domain)
	if c.key == "" {
		c.key = keyFor(c.Domain)
	}
	if c.Source == "" {
		c.Source = SourceRegistry
	}
	if c.DefaultCurrency == "" {
		c.DefaultCurrency = EUR
	}
	c.Selectors = withFallbacks(c.Selectors)

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.Domain == c.Domain {
			r.entries[i] = c
			return
		}
	}
	r.entries = append(r.entries, c)
}

// Replace swaps in the entries of other.
func (r *Registry) Replace(other *Registry) {
	other.mu.RLock()
	entries := append([]*Config(nil), other.entries...)
	other.mu.RUnlock()

	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()
}

// Override describes a config-file change to one retailer. Empty fields
// keep the registered values; non-empty selector lists replace the
// retailer-specific ones.
type Override struct {
	Domain    string            `yaml:"domain" json:"domain"`
	Name      string            `yaml:"name" json:"name"`
	Currency  Currency          `yaml:"currency" json:"currency"`
	Brand     string            `yaml:"brand" json:"brand"`
	Selectors Selectors         `yaml:"selectors" json:"selectors"`
	Headers   map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// Apply merges o into the registry, adding a new retailer when the domain
// is unknown.
func (r *Registry) Apply(o Override) {
	domain := utils.Hostname(o.Domain)
	base, ok := r.exact(domain)
	if !ok {
		base = &Config{Domain: domain, Name: o.Name, DefaultCurrency: EUR}
	} else {
		base = base.clone()
	}

	if o.Name != "" {
		base.Name = o.Name
	}
	if o.Currency != "" {
		base.DefaultCurrency = o.Currency
	}
	if o.Brand != "" {
		base.BrandDefault = o.Brand
	}
	replace := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = src
		}
	}
	replace(&base.Selectors.Name, o.Selectors.Name)
	replace(&base.Selectors.Price, o.Selectors.Price)
	replace(&base.Selectors.Color, o.Selectors.Color)
	replace(&base.Selectors.Image, o.Selectors.Image)
	replace(&base.Selectors.Brand, o.Selectors.Brand)
	if len(o.Headers) > 0 {
		base.Headers = make(map[string]string, len(o.Headers))
		for k, v := range o.Headers {
			base.Headers[k] = v
		}
	}
	base.Source = SourceOverride

	r.Add(base)
}

// Lookup finds the config for host: exact domain first, then the first
// entry whose key is contained in host.
func (r *Registry) Lookup(host string) (*Config, bool) {
	host = utils.Hostname(host)
	if host == "" {
		return nil, false
	}
	if c, ok := r.exact(host); ok {
		return c, true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if strings.Contains(host, e.key) {
			return e, true
		}
	}
	return nil, false
}

func (r *Registry) exact(host string) (*Config, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.Domain == host {
			return e, true
		}
	}
	return nil, false
}

// keyFor derives the partial-match token: the domain without its TLD.
func keyFor(domain string) string {
	if i := strings.LastIndex(domain, "."); i > 0 {
		return domain[:i]
	}
	return domain
}

func builtin() []*Config {
	inditex := func(name, domain string) *Config {
		return &Config{
			Name:            name,
			Domain:          domain,
			DefaultCurrency: EUR,
			BrandDefault:    name,
			URLTransform:    stripQuery,
			Selectors: Selectors{
				Name:  []string{".product-detail-info__header-name", "h1.product-name", ".product-detail-info h1"},
				Price: []string{".money-amount__main", ".current-price-elem", ".product-detail-info .price"},
				Color: []string{".product-color-extended-name", ".product-detail-color-selector__selected-color-name", ".color-name"},
				Image: []string{".media-image__image", "picture.media-image img", ".product-detail-images img"},
			},
		}
	}

	return []*Config{
		inditex("Zara", "zara.com"),
		inditex("Bershka", "bershka.com"),
		inditex("Pull&Bear", "pullandbear.com"),
		inditex("Stradivarius", "stradivarius.com"),
		inditex("Massimo Dutti", "massimodutti.com"),
		inditex("Oysho", "oysho.com"),
		{
			Name:            "Mango",
			Domain:          "mango.com",
			DefaultCurrency: EUR,
			BrandDefault:    "Mango",
			URLTransform:    stripQuery,
			Selectors: Selectors{
				Name:  []string{"h1.product-name", "h1[class*='ProductDetail']", ".product-info-name"},
				Price: []string{"[data-testid='current-price']", ".product-prices .sale", ".product-sale"},
				Color: []string{".colors-info-name", "[data-testid='color-name']", ".product-colors .selected"},
				Image: []string{".image-btn img", "[data-testid='image-grid'] img"},
			},
		},
		{
			Name:            "H&M",
			Domain:          "hm.com",
			DefaultCurrency: EUR,
			BrandDefault:    "H&M",
			URLTransform:    stripQuery,
			key:             "hm.com",
			Selectors: Selectors{
				Name:  []string{"h1.product-item-headline", "h1[class*='ProductName']", "#js-product-name"},
				Price: []string{"#product-price .price-value", "[data-testid='price'] span", ".ProductPrice-module--productItemPrice"},
				Color: []string{".product-input-label", "[data-testid='color-selector'] h3", ".product-colors .selected"},
				Image: []string{".product-detail-main-image-container img", "[data-testid='grid-gallery'] img"},
			},
		},
		{
			Name:            "ASOS",
			Domain:          "asos.com",
			DefaultCurrency: EUR,
			URLTransform:    stripQuery,
			Selectors: Selectors{
				Name:  []string{"[data-testid='product-title']", "#pdp-react-critical-app h1"},
				Price: []string{"[data-testid='current-price']", ".current-price", "[data-id='current-price']"},
				Color: []string{"[data-testid='product-colour']", ".product-colour"},
				Image: []string{"[data-testid='primary-image']", ".gallery-image img"},
				Brand: []string{"[data-testid='brand-name']", ".product-description a[href*='/brand/']"},
			},
		},
		{
			Name:            "El Corte Inglés",
			Domain:          "elcorteingles.es",
			DefaultCurrency: EUR,
			key:             "elcorteingles",
			Selectors: Selectors{
				Name:  []string{".product_detail-title", "h1.title"},
				Price: []string{".price-sale", ".price._big", ".product_detail-price"},
				Color: []string{".color-name", ".product_detail-color"},
				Image: []string{".product_detail-image img", ".js-zoom-to-modal-image"},
				Brand: []string{".product_detail-brand", "a.brand"},
			},
		},
		{
			Name:            "Zalando",
			Domain:          "zalando.es",
			DefaultCurrency: EUR,
			key:             "zalando",
			Selectors: Selectors{
				Name:  []string{"h1 span", "h1"},
				Price: []string{"[data-testid='pdp-price-container'] span", "p[class*='price']"},
				Color: []string{"[data-testid='pdp-color-picker'] span", "[data-testid='color-selector'] span"},
				Image: []string{"[data-testid='pdp-gallery'] img"},
				Brand: []string{"h3 a", "[data-testid='pdp-brand-link']"},
			},
		},
		{
			Name:            "Uniqlo",
			Domain:          "uniqlo.com",
			DefaultCurrency: EUR,
			BrandDefault:    "Uniqlo",
			URLTransform:    stripQuery,
			Selectors: Selectors{
				Name:  []string{"h1.fr-head", "[data-test='product-name']"},
				Price: []string{".fr-price-currency", "[data-test='product-price']"},
				Color: []string{".fr-chip-label-color", "[data-test='selected-color']"},
				Image: []string{".fr-product-image img", ".pdp-image img"},
			},
		},
		{
			Name:            "COS",
			Domain:          "cos.com",
			DefaultCurrency: EUR,
			BrandDefault:    "COS",
			URLTransform:    stripQuery,
			key:             "cosstores",
			Selectors: Selectors{
				Name:  []string{"h1.product-title", "#product-detail h1"},
				Price: []string{"#product-price", ".product-price .price"},
				Color: []string{".color-title", ".selected-color-name"},
				Image: []string{".product-image img", ".o-product-image img"},
			},
		},
		{
			Name:            "SHEIN",
			Domain:          "shein.com",
			DefaultCurrency: USD,
			BrandDefault:    "SHEIN",
			URLTransform:    stripQuery,
			Selectors: Selectors{
				Name:  []string{".product-intro__head-name", "h1.product-intro__head-name"},
				Price: []string{".product-intro__head-price .from", ".product-intro__head-mainprice .original"},
				Color: []string{".product-intro__color_choose .color-name", ".product-intro__color-title span"},
				Image: []string{".product-intro__main-item img", ".crop-image-container img"},
			},
		},
		{
			Name:            "Nike",
			Domain:          "nike.com",
			DefaultCurrency: USD,
			BrandDefault:    "Nike",
			URLTransform:    stripQuery,
			Selectors: Selectors{
				Name:  []string{"#pdp_product_title", "h1[data-test='product-title']"},
				Price: []string{"[data-test='product-price']", "#price-container span"},
				Color: []string{".description-preview__color-description", "[data-test='product-description-color-description']"},
				Image: []string{"[data-testid='HeroImg']", ".css-viwop1 img"},
			},
		},
		{
			Name:            "Primark",
			Domain:          "primark.com",
			DefaultCurrency: EUR,
			BrandDefault:    "Primark",
			URLTransform:    stripQuery,
			Selectors: Selectors{
				Name:  []string{"h1[data-testautomation-id='product-title']", "h1.product-title"},
				Price: []string{"[data-testautomation-id='product-price']", ".product-price"},
				Color: []string{"[data-testautomation-id='product-colour']", ".product-colour"},
				Image: []string{"[data-testautomation-id='product-image'] img"},
			},
		},
	}
}
