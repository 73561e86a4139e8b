package recommend

import (
	"sync"
	"time"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/recommend"
	"github.com/wardrobe-hub/wardrobe-recs/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESULT CACHE
// ══════════════════════════════════════════════════════════════════════════════

const (
	// DefaultResultTTL is how long a computed recommendation list stays
	// servable without recomputing.
	DefaultResultTTL = 30 * time.Minute

	// DefaultResultCacheMax is the entry count above which a write sweeps
	// expired entries.
	DefaultResultCacheMax = 500
)

type resultEntry struct {
	response  *recommend.Response
	expiresAt time.Time
}

// ResultCache memoizes full recommendation responses keyed by the canonical
// request key. It is a process-local last line of defense in front of the
// strategy pipeline; the multi-tier cache handles the shared layers.
//
// Expired entries are served as misses and reaped lazily: a write that pushes
// the map past maxEntries sweeps everything stale.
type ResultCache struct {
	mu         sync.RWMutex
	entries    map[string]resultEntry
	ttl        time.Duration
	maxEntries int

	// now is swappable for tests.
	now func() time.Time
}

// NewResultCache creates a ResultCache. Non-positive arguments fall back to
// the defaults.
func NewResultCache(ttl time.Duration, maxEntries int) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultResultCacheMax
	}
	return &ResultCache{
		entries:    make(map[string]resultEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        timeutil.Now,
	}
}

// Get returns the cached response for the key, or false if absent or expired.
func (c *ResultCache) Get(key string) (*recommend.Response, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.response, true
}

// Set stores the response under the key and sweeps expired entries when the
// cache has grown past its size threshold.
func (c *ResultCache) Set(key string, response *recommend.Response) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = resultEntry{response: response, expiresAt: now.Add(c.ttl)}
	if len(c.entries) > c.maxEntries {
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
	}
}

// Invalidate drops every cached response. Recommendation lists can embed any
// catalog entry, so a single catalog change voids them all.
func (c *ResultCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]resultEntry)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
