package retailer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/DressCodex/internal/llm"
	"github.com/valpere/DressCodex/internal/monitoring"
	"github.com/valpere/DressCodex/internal/utils"
)

type countingSynthesizer struct {
	calls int32
	cfg   *Config
	err   error
}

func (s *countingSynthesizer) Synthesize(ctx context.Context, pageURL string) (*Config, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.cfg, s.err
}

func TestResolveRegistryExactAndPartial(t *testing.T) {
	r := NewResolver(WithLogger(utils.NewNopLogger()))

	zara := r.Resolve(context.Background(), "https://www.zara.com/es/en/dress-p0123.html?v1=99")
	assert.Equal(t, "Zara", zara.Name)
	assert.Equal(t, "Zara", zara.BrandDefault)
	assert.Equal(t, SourceRegistry, zara.Source)
	assert.Equal(t, ".product-detail-info__header-name", zara.Selectors.Name[0])
	assert.Contains(t, zara.Selectors.Name, "meta[property='og:title']", "generic fallbacks are appended")
	assert.Equal(t, "https://www.zara.com/es/en/dress-p0123.html", zara.TransformURL("https://www.zara.com/es/en/dress-p0123.html?v1=99"))

	hm := r.Resolve(context.Background(), "https://www2.hm.com/es_es/productpage.0970819001.html")
	assert.Equal(t, "H&M", hm.Name)

	zalando := r.Resolve(context.Background(), "https://www.zalando.fr/robe-longue.html")
	assert.Equal(t, "Zalando", zalando.Name)
}

func TestResolveCachesSamePointer(t *testing.T) {
	synth := &countingSynthesizer{cfg: &Config{
		Name:      "Acme",
		Selectors: Selectors{Name: []string{".pdp-title"}},
	}}
	cache := NewMemoryCache()
	r := NewResolver(WithSynthesizer(synth), WithCache(cache), WithLogger(utils.NewNopLogger()))

	first := r.Resolve(context.Background(), "https://shop.acme.example/item/1")
	second := r.Resolve(context.Background(), "https://SHOP.acme.example/item/2?ref=x")

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&synth.calls))
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, SourceSynthesized, first.Source)
	assert.Equal(t, []string{".pdp-title", "h1[itemprop='name']", "h1"}, first.Selectors.Name[:3])
	assert.Equal(t, "Acme", first.BrandGuess)
}

func TestResolveSynthesizerFailureFallsBack(t *testing.T) {
	synth := &countingSynthesizer{err: errors.New("model unavailable")}
	r := NewResolver(WithSynthesizer(synth), WithLogger(utils.NewNopLogger()))

	cfg := r.Resolve(context.Background(), "https://www.boutique-lumiere.fr/robe")
	require.NotNil(t, cfg)
	assert.Equal(t, SourceFallback, cfg.Source)
	assert.Equal(t, "Boutique-Lumiere", cfg.BrandGuess)
	assert.Empty(t, cfg.BrandDefault)
	assert.Equal(t, EUR, cfg.DefaultCurrency)
	assert.Equal(t, genericSelectors.Name, cfg.Selectors.Name)

	// the fallback is cached too
	again := r.Resolve(context.Background(), "https://boutique-lumiere.fr/other")
	assert.Same(t, cfg, again)
	assert.Equal(t, int32(1), atomic.LoadInt32(&synth.calls))
}

func TestResolveSynthesizerWithoutNameSelectorsFallsBack(t *testing.T) {
	synth := &countingSynthesizer{cfg: &Config{Name: "Empty"}}
	r := NewResolver(WithSynthesizer(synth), WithLogger(utils.NewNopLogger()))

	cfg := r.Resolve(context.Background(), "https://empty.example.com/p")
	assert.Equal(t, SourceFallback, cfg.Source)
}

func TestResolveRecordsMetrics(t *testing.T) {
	metrics := monitoring.NewMetricsManager(monitoring.MetricsConfig{})
	r := NewResolver(WithMetrics(metrics), WithLogger(utils.NewNopLogger()))

	r.Resolve(context.Background(), "https://www.mango.com/es/mujer/vestidos")
	r.Resolve(context.Background(), "https://unknown.example.org/p")

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() == "dresscodex_retailer_config_resolutions_total" {
			found = true
			assert.Len(t, f.GetMetric(), 2)
		}
	}
	assert.True(t, found)
}

func TestFallbackBrandGuess(t *testing.T) {
	testCases := []struct {
		host     string
		brand    string
		currency Currency
	}{
		{"www.acme.com", "Acme", USD},
		{"shop.tienda-moda.es", "Tienda-Moda", EUR},
		{"boutique.co.uk", "Boutique", EUR},
		{"localhost", "Localhost", EUR},
	}

	for _, tc := range testCases {
		t.Run(tc.host, func(t *testing.T) {
			cfg := Fallback(tc.host)
			assert.Equal(t, tc.brand, cfg.BrandGuess)
			assert.Equal(t, tc.currency, cfg.DefaultCurrency)
		})
	}
}

func TestRegistryApplyOverride(t *testing.T) {
	reg := DefaultRegistry()
	reg.Apply(Override{
		Domain:    "zara.com",
		Selectors: Selectors{Price: []string{".new-price"}},
	})
	reg.Apply(Override{
		Domain:    "www.tiendita.es",
		Name:      "Tiendita",
		Brand:     "Tiendita",
		Selectors: Selectors{Name: []string{".titulo"}},
	})

	zara, ok := reg.Lookup("zara.com")
	require.True(t, ok)
	assert.Equal(t, ".new-price", zara.Selectors.Price[0])
	assert.Equal(t, ".product-detail-info__header-name", zara.Selectors.Name[0], "name selectors kept")
	assert.Equal(t, SourceOverride, zara.Source)
	assert.NotNil(t, zara.URLTransform, "code-defined rewrite survives")

	tiendita, ok := reg.Lookup("https://tiendita.es/p/1")
	require.True(t, ok)
	assert.Equal(t, "Tiendita", tiendita.BrandDefault)
	assert.Equal(t, ".titulo", tiendita.Selectors.Name[0])
}

type stubProvider struct {
	available bool
	content   string
	err       error
}

func (p *stubProvider) Name() string    { return "stub" }
func (p *stubProvider) Available() bool { return p.available }
func (p *stubProvider) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	return llm.Response{Content: p.content}, p.err
}

func TestLLMSynthesizer(t *testing.T) {
	provider := &stubProvider{available: true, content: "```json\n" + `{
		"name": "Acme Fashion",
		"currency": "usd",
		"brand": "",
		"selectors": {"name": [".pdp h1"], "price": [".pdp .price"], "color": [], "image": [], "brand": [".pdp .brand"]}
	}` + "\n```"}

	cfg, err := NewLLMSynthesizer(provider, nil).Synthesize(context.Background(), "https://acme.example/p/1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Fashion", cfg.Name)
	assert.Equal(t, USD, cfg.DefaultCurrency)
	assert.Equal(t, []string{".pdp h1"}, cfg.Selectors.Name)
	assert.Equal(t, []string{".pdp .brand"}, cfg.Selectors.Brand)
}

func TestLLMSynthesizerErrors(t *testing.T) {
	_, err := NewLLMSynthesizer(&stubProvider{}, nil).Synthesize(context.Background(), "https://a.example")
	assert.Equal(t, utils.ErrCodeCapabilityUnavailable, utils.CodeOf(err))

	_, err = NewLLMSynthesizer(&stubProvider{available: true, content: "no idea"}, nil).Synthesize(context.Background(), "https://a.example")
	assert.Equal(t, utils.ErrCodeMalformedResponse, utils.CodeOf(err))

	_, err = NewLLMSynthesizer(&stubProvider{available: true, content: `{"name":"X","selectors":{}}`}, nil).Synthesize(context.Background(), "https://a.example")
	assert.Equal(t, utils.ErrCodeMalformedResponse, utils.CodeOf(err))
}

func TestResolverReload(t *testing.T) {
	r := NewResolver(WithLogger(utils.NewNopLogger()))
	before := r.Resolve(context.Background(), "https://www.tiendita.es/p/1")
	assert.Equal(t, SourceFallback, before.Source)

	r.Reload([]Override{{
		Domain:    "tiendita.es",
		Name:      "Tiendita",
		Selectors: Selectors{Name: []string{".titulo"}},
		Headers:   map[string]string{"Cookie": "country=es"},
	}})

	after := r.Resolve(context.Background(), "https://www.tiendita.es/p/1")
	assert.NotSame(t, before, after)
	assert.Equal(t, SourceOverride, after.Source)
	assert.Equal(t, "country=es", after.Headers["Cookie"])

	r.Reload(nil)
	reset := r.Resolve(context.Background(), "https://www.tiendita.es/p/1")
	assert.Equal(t, SourceFallback, reset.Source)
	_, ok := r.Registry().Lookup("zara.com")
	assert.True(t, ok, "built-in retailers survive a reload")
}
