package compiler

import (
	"sync"
	"sync/atomic"

	"github.com/chazu/reify/reify"
)

// ---------------------------------------------------------------------------
// SiteCache: lazily built descriptors, one per generated call site
// ---------------------------------------------------------------------------

// SiteCache memoizes the descriptor used by each instance-check or cast
// site. The descriptor for a site is built on first use and never rebuilt;
// concurrent first uses of the same site run the builder once.
type SiteCache struct {
	mu    sync.Mutex
	sites map[string]*siteEntry

	// Statistics for profiling
	hits   atomic.Uint64
	misses atomic.Uint64
}

type siteEntry struct {
	once sync.Once
	desc *reify.Descriptor
	err  error
}

// NewSiteCache creates an empty cache.
func NewSiteCache() *SiteCache {
	return &SiteCache{sites: make(map[string]*siteEntry)}
}

// Get returns the descriptor for site, calling build the first time the
// site is seen. A build error is cached like a result.
func (c *SiteCache) Get(site string, build func() (*reify.Descriptor, error)) (*reify.Descriptor, error) {
	c.mu.Lock()
	e, ok := c.sites[site]
	if !ok {
		e = &siteEntry{}
		c.sites[site] = e
	}
	c.mu.Unlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	e.once.Do(func() {
		e.desc, e.err = build()
	})
	return e.desc, e.err
}

// Len returns the number of sites seen.
func (c *SiteCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sites)
}

// Stats returns the hit and miss counts.
func (c *SiteCache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Reset forgets every site.
func (c *SiteCache) Reset() {
	c.mu.Lock()
	c.sites = make(map[string]*siteEntry)
	c.mu.Unlock()
	c.hits.Store(0)
	c.misses.Store(0)
}
