// Package cache implements the multi-tier read-through cache used for all
// catalog lookups feeding the recommendation strategies.
//
// Tier order: L1 (in-process LRU with per-entry expiry) -> L2 (shared Redis)
// -> L3 (authoritative store, reached through a loader callback). Misses fall
// through and back-fill the faster tiers; transient tier failures degrade to
// a miss rather than erroring. Population races are tolerated - the last
// writer wins, which is acceptable because values are idempotent within
// their TTL window.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/shared"
	"github.com/wardrobe-hub/wardrobe-recs/internal/infrastructure/persistence/redis"
	"github.com/wardrobe-hub/wardrobe-recs/pkg/circuitbreaker"
	"github.com/wardrobe-hub/wardrobe-recs/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS & INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrNotFound is returned when no tier holds the key and the loader
	// reports the value absent. Callers treat it as "no value", not a fault.
	ErrNotFound = errors.New("cache: not found in any tier")

	// ErrNilLoader is returned when Get is called without a loader and the
	// key misses both cache tiers.
	ErrNilLoader = errors.New("cache: nil loader")
)

// Loader fetches the authoritative value for a key (the L3 read).
// It returns ErrNotFound (or any error wrapping it) when the value is absent.
type Loader func(ctx context.Context) (interface{}, error)

// L2Cache is the slice of the shared network cache used by the tier chain.
// Implemented by the redis package; faked in tests.
type L2Cache interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Ping(ctx context.Context) error
}

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds multi-tier cache settings.
type Config struct {
	// L1Size is the maximum number of entries in the in-process tier.
	L1Size int

	// L1TTL is the per-entry expiry for the in-process tier.
	L1TTL time.Duration

	// WarmConcurrency bounds the fan-out of Warm.
	WarmConcurrency int

	// ProbeTimeout caps L2/L3 liveness probes in Health.
	ProbeTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		L1Size:          1000,
		L1TTL:           5 * time.Minute,
		WarmConcurrency: 8,
		ProbeTimeout:    2 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// STATS
// ══════════════════════════════════════════════════════════════════════════════

// TierStats holds hit/miss counters and the derived hit rate for one tier.
type TierStats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Stats aggregates per-tier counters.
type Stats struct {
	L1      TierStats `json:"l1"`
	L2      TierStats `json:"l2"`
	L3      TierStats `json:"l3"`
	Errors  int64     `json:"errors"`
	Entries int       `json:"l1_entries"`
}

func rate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// ══════════════════════════════════════════════════════════════════════════════
// MULTI-TIER CACHE
// ══════════════════════════════════════════════════════════════════════════════

// MultiTier chains the three cache tiers behind a single read-through Get.
// Values cross tiers as raw JSON so one encoding serves both L1 and L2.
type MultiTier struct {
	l1      *lru.LRU[string, []byte]
	l2      L2Cache // nil when the shared cache is disabled
	breaker *circuitbreaker.CircuitBreaker
	config  Config
	log     *logger.Logger

	// l3Probe reports authoritative-store liveness for Health.
	l3Probe func(ctx context.Context) error

	l1Hits   atomic.Int64
	l1Misses atomic.Int64
	l2Hits   atomic.Int64
	l2Misses atomic.Int64
	l3Hits   atomic.Int64
	l3Misses atomic.Int64
	errors   atomic.Int64
}

// Option configures the MultiTier cache.
type Option func(*MultiTier)

// WithL3Probe sets the liveness probe for the authoritative store.
func WithL3Probe(probe func(ctx context.Context) error) Option {
	return func(m *MultiTier) { m.l3Probe = probe }
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(m *MultiTier) { m.log = log }
}

// New creates a MultiTier cache. l2 may be nil, in which case the chain is
// L1 -> loader only.
func New(cfg Config, l2 L2Cache, opts ...Option) *MultiTier {
	if cfg.L1Size <= 0 {
		cfg.L1Size = DefaultConfig().L1Size
	}
	if cfg.L1TTL <= 0 {
		cfg.L1TTL = DefaultConfig().L1TTL
	}
	if cfg.WarmConcurrency <= 0 {
		cfg.WarmConcurrency = DefaultConfig().WarmConcurrency
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultConfig().ProbeTimeout
	}

	m := &MultiTier{
		l1:     lru.NewLRU[string, []byte](cfg.L1Size, nil, cfg.L1TTL),
		l2:     l2,
		config: cfg,
		log:    logger.Default().With(logger.Component("multitier-cache")),
	}
	m.breaker = circuitbreaker.CacheBreaker(func(name string, from, to circuitbreaker.State) {
		m.log.Warn("circuit breaker state change",
			logger.String("breaker", name),
			logger.String("from", from.String()),
			logger.String("to", to.String()),
		)
	})

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// ─────────────────────────────────────────────────────────────────────────────
// Read-Through Get
// ─────────────────────────────────────────────────────────────────────────────

// Get resolves key through the tier chain and decodes the value into dest.
// L1 hits return immediately and refresh recency. An L1 miss checks L2 and
// back-fills L1 on a hit. An L2 miss invokes the loader and back-fills both
// tiers with the key's TTL class. Transient failures on any tier count as
// misses, so a backend outage resolves to ErrNotFound instead of raising.
// Returns ErrNotFound when every tier resolves to absent.
func (m *MultiTier) Get(ctx context.Context, key string, dest interface{}, loader Loader) error {
	// L1
	if data, ok := m.l1.Get(key); ok {
		m.l1Hits.Add(1)
		return json.Unmarshal(data, dest)
	}
	m.l1Misses.Add(1)

	// L2
	if data, ok := m.getL2(ctx, key); ok {
		m.l2Hits.Add(1)
		m.l1.Add(key, data)
		return json.Unmarshal(data, dest)
	}
	m.l2Misses.Add(1)

	// L3
	if loader == nil {
		return ErrNilLoader
	}
	value, err := loader(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			m.l3Misses.Add(1)
			return ErrNotFound
		}
		m.errors.Add(1)
		if shared.IsUnavailable(err) {
			// Transient store outage: readers resolve absent and degrade,
			// the same way an L2 failure does. Only the durable write path
			// is allowed to surface backend unavailability.
			m.l3Misses.Add(1)
			m.log.Warn("l3 load failed, resolving as not found",
				logger.CacheKey(key),
				logger.Err(err),
			)
			return ErrNotFound
		}
		return err
	}
	m.l3Hits.Add(1)

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal loaded value: %w", err)
	}

	m.l1.Add(key, data)
	m.setL2(ctx, key, data)

	return json.Unmarshal(data, dest)
}

// Set writes the value into L1 and L2 with the key's TTL class.
func (m *MultiTier) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal value: %w", err)
	}

	m.l1.Add(key, data)
	m.setL2(ctx, key, data)
	return nil
}

// Invalidate removes the key from L1 and L2. The authoritative store is the
// owning collaborator's responsibility.
func (m *MultiTier) Invalidate(ctx context.Context, key string) error {
	m.l1.Remove(key)

	if m.l2 == nil {
		return nil
	}
	return m.breaker.Execute(ctx, func(ctx context.Context) error {
		return m.l2.Delete(ctx, key)
	})
}

// InvalidatePattern bulk-removes matching L2 keys. L1 entries are left to
// expire naturally within their 5-minute TTL.
func (m *MultiTier) InvalidatePattern(ctx context.Context, prefix string) error {
	if m.l2 == nil {
		return nil
	}
	return m.breaker.Execute(ctx, func(ctx context.Context) error {
		return m.l2.DeleteByPattern(ctx, prefix+"*")
	})
}

// Warm concurrently resolves the given keys through the tier chain so later
// reads hit warm tiers. Individual failures are logged, never fatal.
func (m *MultiTier) Warm(ctx context.Context, keys []string, loaderFor func(key string) Loader) {
	if len(keys) == 0 {
		return
	}

	sem := make(chan struct{}, m.config.WarmConcurrency)
	var wg sync.WaitGroup

	for _, key := range keys {
		wg.Add(1)
		sem <- struct{}{}
		go func(key string) {
			defer wg.Done()
			defer func() { <-sem }()

			var discard json.RawMessage
			if err := m.Get(ctx, key, &discard, loaderFor(key)); err != nil && !errors.Is(err, ErrNotFound) {
				m.log.Warn("cache warm failed",
					logger.CacheKey(key),
					logger.Err(err),
				)
			}
		}(key)
	}

	wg.Wait()
}

// ─────────────────────────────────────────────────────────────────────────────
// Stats & Health
// ─────────────────────────────────────────────────────────────────────────────

// Stats returns a snapshot of per-tier hit/miss counters.
func (m *MultiTier) Stats() Stats {
	l1h, l1m := m.l1Hits.Load(), m.l1Misses.Load()
	l2h, l2m := m.l2Hits.Load(), m.l2Misses.Load()
	l3h, l3m := m.l3Hits.Load(), m.l3Misses.Load()

	return Stats{
		L1:      TierStats{Hits: l1h, Misses: l1m, HitRate: rate(l1h, l1m)},
		L2:      TierStats{Hits: l2h, Misses: l2m, HitRate: rate(l2h, l2m)},
		L3:      TierStats{Hits: l3h, Misses: l3m, HitRate: rate(l3h, l3m)},
		Errors:  m.errors.Load(),
		Entries: m.l1.Len(),
	}
}

// Health probes each tier with a short timeout and returns tier -> alive.
// L1 is in-process and always true. Probe failures are logged and reported
// as tier-unavailable, never raised.
func (m *MultiTier) Health(ctx context.Context) map[string]bool {
	health := map[string]bool{
		"l1": true,
		"l2": false,
		"l3": false,
	}

	probeCtx, cancel := context.WithTimeout(ctx, m.config.ProbeTimeout)
	defer cancel()

	if m.l2 != nil {
		if err := m.l2.Ping(probeCtx); err != nil {
			m.log.Warn("l2 health probe failed", logger.Err(err))
		} else {
			health["l2"] = true
		}
	}

	if m.l3Probe != nil {
		if err := m.l3Probe(probeCtx); err != nil {
			m.log.Warn("l3 health probe failed", logger.Err(err))
		} else {
			health["l3"] = true
		}
	}

	return health
}

// ─────────────────────────────────────────────────────────────────────────────
// L2 Helpers
// ─────────────────────────────────────────────────────────────────────────────

// getL2 reads from the shared cache through the circuit breaker.
// Any failure - miss, network error, open breaker - reports a miss.
func (m *MultiTier) getL2(ctx context.Context, key string) ([]byte, bool) {
	if m.l2 == nil {
		return nil, false
	}

	var data []byte
	err := m.breaker.Execute(ctx, func(ctx context.Context) error {
		var getErr error
		data, getErr = m.l2.GetBytes(ctx, key)
		if errors.Is(getErr, redis.ErrCacheMiss) {
			data = nil
			return nil
		}
		return getErr
	})
	if err != nil {
		m.errors.Add(1)
		m.log.Debug("l2 get failed, degrading to miss",
			logger.CacheKey(key),
			logger.Err(err),
		)
		return nil, false
	}

	return data, data != nil
}

// setL2 writes to the shared cache best-effort; failures are logged.
func (m *MultiTier) setL2(ctx context.Context, key string, data []byte) {
	if m.l2 == nil {
		return
	}

	err := m.breaker.Execute(ctx, func(ctx context.Context) error {
		return m.l2.SetBytes(ctx, key, data, redis.TTLForKey(key))
	})
	if err != nil {
		m.errors.Add(1)
		m.log.Debug("l2 set failed",
			logger.CacheKey(key),
			logger.Err(err),
		)
	}
}
