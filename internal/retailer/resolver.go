package retailer

import (
	"context"

	"github.com/valpere/DressCodex/internal/monitoring"
	"github.com/valpere/DressCodex/internal/utils"
)

// Synthesizer generates a config for an unknown retailer, typically by
// asking a language model. It may fail; the Resolver then falls back.
type Synthesizer interface {
	Synthesize(ctx context.Context, pageURL string) (*Config, error)
}

// Resolver maps product URLs to retailer configs.
type Resolver struct {
	registry    *Registry
	cache       Cache
	synthesizer Synthesizer
	metrics     *monitoring.MetricsManager
	logger      utils.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRegistry replaces the built-in registry.
func WithRegistry(r *Registry) Option {
	return func(res *Resolver) { res.registry = r }
}

// WithCache replaces the default MemoryCache.
func WithCache(c Cache) Option {
	return func(res *Resolver) { res.cache = c }
}

// WithSynthesizer enables config synthesis for unknown hosts.
func WithSynthesizer(s Synthesizer) Option {
	return func(res *Resolver) { res.synthesizer = s }
}

// WithMetrics records resolutions by source.
func WithMetrics(m *monitoring.MetricsManager) Option {
	return func(res *Resolver) { res.metrics = m }
}

// WithLogger replaces the component logger.
func WithLogger(l utils.Logger) Option {
	return func(res *Resolver) { res.logger = l }
}

// NewResolver creates a resolver over the default registry and a fresh
// in-memory cache.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		logger: utils.NewComponentLogger("retailer-resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry = DefaultRegistry()
	}
	if r.cache == nil {
		r.cache = NewMemoryCache()
	}
	return r
}

// Registry returns the registry used for lookups.
func (r *Resolver) Registry() *Registry { return r.registry }

// Reload rebuilds the registry from the built-in retailers plus overrides
// and drops every cached config.
func (r *Resolver) Reload(overrides []Override) {
	fresh := DefaultRegistry()
	for _, o := range overrides {
		fresh.Apply(o)
	}
	r.registry.Replace(fresh)
	r.cache.Clear()
	r.logger.WithField("overrides", len(overrides)).Info("retailer registry reloaded")
}

// Resolve returns the config for pageURL. It never fails: unknown hosts
// get a synthesized config when a Synthesizer is set and succeeds, and
// the generic fallback otherwise. Every result is cached by host, so
// later calls for the same host return the same pointer.
func (r *Resolver) Resolve(ctx context.Context, pageURL string) *Config {
	host := utils.Hostname(pageURL)
	if cfg, ok := r.cache.Get(host); ok {
		return cfg
	}

	log := r.logger.WithField("host", host)
	cfg := r.lookup(ctx, pageURL, host, log)
	r.cache.Set(host, cfg)
	r.metrics.RecordConfigResolution(string(cfg.Source))
	log.WithField("source", cfg.Source).Debugf("resolved retailer config %q", cfg.Name)
	return cfg
}

func (r *Resolver) lookup(ctx context.Context, pageURL, host string, log utils.Logger) *Config {
	if cfg, ok := r.registry.Lookup(host); ok {
		return cfg
	}

	if host != "" && r.synthesizer != nil {
		cfg, err := r.synthesizer.Synthesize(ctx, pageURL)
		if err == nil && cfg != nil && len(cfg.Selectors.Name) > 0 {
			c := cfg.clone()
			c.Domain = host
			c.Source = SourceSynthesized
			c.Selectors = withFallbacks(c.Selectors)
			if c.DefaultCurrency == "" {
				c.DefaultCurrency = currencyFromHost(host)
			}
			if c.BrandDefault == "" && c.BrandGuess == "" {
				c.BrandGuess = brandFromHost(host)
			}
			if c.Name == "" {
				c.Name = brandFromHost(host)
			}
			return c
		}
		if err == nil {
			err = utils.NewError(utils.ErrCodeMalformedResponse, "synthesized config has no name selectors").Build()
		}
		log.WithField("error", err.Error()).Warn("config synthesis failed, using generic selectors")
	}

	return Fallback(host)
}
