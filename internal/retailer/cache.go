package retailer

import "sync"

// Cache stores resolved configs by normalized hostname.
type Cache interface {
	Get(host string) (*Config, bool)
	Set(host string, cfg *Config)
	Len() int
	Clear()
}

// MemoryCache is a process-lifetime Cache with no eviction.
type MemoryCache struct {
	mu      sync.RWMutex
	configs map[string]*Config
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{configs: make(map[string]*Config)}
}

func (c *MemoryCache) Get(host string) (*Config, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cfg, ok := c.configs[host]
	return cfg, ok
}

func (c *MemoryCache) Set(host string, cfg *Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configs[host] = cfg
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.configs)
}

func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configs = make(map[string]*Config)
}
