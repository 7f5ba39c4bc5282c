// Package siteconfig holds the process-wide cache of the CMS site
// configuration.
package siteconfig

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/storefront-bff/internal/domain"
	"github.com/storefront-bff/internal/infrastructure/metrics"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a successfully fetched configuration is served
// without asking the backend again.
const DefaultTTL = 5 * time.Minute

const flightKey = "site_config"

// Fetcher loads the current configuration from the backend.
type Fetcher interface {
	SiteConfig(ctx context.Context) (*domain.SiteConfiguration, error)
}

// Option configures a Cache.
type Option func(*Cache)

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithClock injects the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// Cache serves the site configuration from memory for ttl after each
// successful fetch. Failures are never cached: the caller gets the built-in
// default and the next call retries.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time
	group   singleflight.Group

	mu        sync.RWMutex
	value     *domain.SiteConfiguration
	fetchedAt time.Time
	gen       uint64
}

func New(fetcher Fetcher, opts ...Option) *Cache {
	c := &Cache{fetcher: fetcher, ttl: DefaultTTL, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Init warms the cache. A failure is returned for logging only; Get keeps
// working and will retry.
func (c *Cache) Init(ctx context.Context) error {
	_, err := c.refresh(ctx)
	return err
}

// Get returns the cached configuration, fetching it when absent or stale.
// The returned value is shared and must not be modified.
func (c *Cache) Get(ctx context.Context) *domain.SiteConfiguration {
	if v := c.fresh(); v != nil {
		metrics.SiteConfigLookups.WithLabelValues("hit").Inc()
		return v
	}
	v, err := c.refresh(ctx)
	if err != nil {
		metrics.SiteConfigLookups.WithLabelValues("fallback").Inc()
		slog.Warn("site config unavailable, serving defaults", "err", err)
		return domain.DefaultSiteConfiguration()
	}
	metrics.SiteConfigLookups.WithLabelValues("miss").Inc()
	return v
}

// Invalidate drops the cached value so the next Get refetches.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.value = nil
	c.fetchedAt = time.Time{}
	c.gen++
	c.mu.Unlock()
	c.group.Forget(flightKey)
}

func (c *Cache) fresh() *domain.SiteConfiguration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.value == nil || c.now().Sub(c.fetchedAt) >= c.ttl {
		return nil
	}
	return c.value
}

func (c *Cache) refresh(ctx context.Context) (*domain.SiteConfiguration, error) {
	c.mu.RLock()
	gen := c.gen
	c.mu.RUnlock()

	// The shared fetch must not die with whichever caller happened to start it.
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(flightKey, func() (interface{}, error) {
		cfg, err := c.fetcher.SiteConfig(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.value = cfg
			c.fetchedAt = c.now()
		}
		c.mu.Unlock()
		return cfg, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.SiteConfiguration), nil
}
