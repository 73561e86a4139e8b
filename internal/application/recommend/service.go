package recommend

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/interaction"
	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/recommend"
	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/shared"
	"github.com/wardrobe-hub/wardrobe-recs/internal/infrastructure/cache"
	"github.com/wardrobe-hub/wardrobe-recs/internal/infrastructure/persistence/redis"
	"github.com/wardrobe-hub/wardrobe-recs/pkg/logger"
	"github.com/wardrobe-hub/wardrobe-recs/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOMMENDATION SERVICE
// ══════════════════════════════════════════════════════════════════════════════

// trendingDefaultDays is the lookback for the raw trending-items read.
const trendingDefaultDays = 7

// Tracker accepts interaction events for asynchronous ingestion.
// Implemented by the ingest buffer.
type Tracker interface {
	Track(event *interaction.Event) error
}

// Service is the facade in front of the strategy pipeline. It owns request
// normalization and validation, result memoization, the diversity pass, and
// cache administration.
type Service struct {
	strategies map[recommend.Algorithm]Strategy
	ensemble   *EnsembleRanker
	results    *ResultCache
	catalog    *cache.CachedCatalog
	tiers      *cache.MultiTier
	store      interaction.Store
	tracker    Tracker
	log        *logger.Logger
}

// NewService wires the strategies behind a single entry point.
func NewService(
	strategies []Strategy,
	ensemble *EnsembleRanker,
	results *ResultCache,
	catalog *cache.CachedCatalog,
	tiers *cache.MultiTier,
	store interaction.Store,
	tracker Tracker,
	log *logger.Logger,
) *Service {
	byAlgorithm := make(map[recommend.Algorithm]Strategy, len(strategies))
	for _, s := range strategies {
		byAlgorithm[s.Algorithm()] = s
	}
	if log == nil {
		log = logger.Default()
	}

	return &Service{
		strategies: byAlgorithm,
		ensemble:   ensemble,
		results:    results,
		catalog:    catalog,
		tiers:      tiers,
		store:      store,
		tracker:    tracker,
		log:        log.With(logger.Component("recommend-service")),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Recommendations
// ─────────────────────────────────────────────────────────────────────────────

// GetRecommendations validates and dispatches the request to its strategy,
// applies the optional diversity pass, and memoizes the final response.
// Validation failures are synchronous and never reach a strategy.
func (s *Service) GetRecommendations(ctx context.Context, req recommend.Request) (*recommend.Response, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := req.CacheKey()
	if cached, ok := s.results.Get(key); ok {
		s.log.Debug("result cache hit", logger.CacheKey(key))
		return cached, nil
	}

	strategy, ok := s.strategies[req.Type]
	if !ok {
		// Validate accepts only registered algorithms, so this indicates
		// a wiring gap, not a bad request.
		return nil, shared.ErrUnknownStrategy
	}

	started := time.Now()
	items, err := strategy.Recommend(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.Diversity && len(items) > req.Limit {
		items = s.ensemble.Diversify(items, req.Limit)
	} else {
		items = recommend.Truncate(items, req.Limit)
	}

	response := &recommend.Response{
		Items:     items,
		Algorithm: req.Type,
		ElapsedMs: time.Since(started).Milliseconds(),
		Total:     len(items),
	}
	s.results.Set(key, response)

	s.log.Debug("recommendations computed",
		logger.Algorithm(req.Type.String()),
		logger.Int("count", len(items)),
		logger.Latency(time.Since(started)),
	)

	return response, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Interactions
// ─────────────────────────────────────────────────────────────────────────────

// TrackInteraction validates and enqueues one interaction event. The write
// is asynchronous: the event lands durably on the next buffer flush.
func (s *Service) TrackInteraction(ctx context.Context, userID, itemID uuid.UUID, typ interaction.Type, eventContext map[string]string) error {
	event, err := interaction.NewEvent(userID, itemID, typ, eventContext)
	if err != nil {
		return err
	}
	return s.tracker.Track(event)
}

// GetUserRecentInteractions returns the user's latest events, newest first.
func (s *Service) GetUserRecentInteractions(ctx context.Context, userID uuid.UUID, limit int) ([]*interaction.Event, error) {
	if limit <= 0 {
		limit = recommend.DefaultLimit
	}
	return s.store.RecentByUser(ctx, userID, limit)
}

// GetUserTopItems returns the items the user interacts with most.
func (s *Service) GetUserTopItems(ctx context.Context, userID uuid.UUID, limit int) ([]interaction.ItemCount, error) {
	if limit <= 0 {
		limit = recommend.DefaultLimit
	}
	return s.store.TopItemsByUser(ctx, userID, limit)
}

// GetItemInteractionStats returns aggregate per-type counts for one item.
func (s *Service) GetItemInteractionStats(ctx context.Context, itemID uuid.UUID) (*interaction.ItemStats, error) {
	return s.store.ItemStats(ctx, itemID)
}

// GetTrendingItems returns the raw most-interacted items of the last week,
// without the decay weighting the trending strategy applies.
func (s *Service) GetTrendingItems(ctx context.Context, limit int) ([]interaction.ItemCount, error) {
	if limit <= 0 {
		limit = recommend.DefaultLimit
	}
	return s.store.TopItems(ctx, timeutil.DaysAgo(trendingDefaultDays), limit)
}

// ─────────────────────────────────────────────────────────────────────────────
// Cache Administration
// ─────────────────────────────────────────────────────────────────────────────

// InvalidateItem drops the item from the catalog cache tiers along with the
// derived list and recommendation keys, and voids memoized results.
func (s *Service) InvalidateItem(ctx context.Context, itemID uuid.UUID) error {
	s.results.Invalidate()

	if err := s.catalog.Invalidate(ctx, itemID); err != nil {
		return err
	}
	return s.tiers.InvalidatePattern(ctx, redis.PrefixRecommendation)
}

// InvalidateAll voids memoized results and every shared-cache key class
// this service owns.
func (s *Service) InvalidateAll(ctx context.Context) error {
	s.results.Invalidate()

	for _, prefix := range []string{redis.PrefixItem, redis.PrefixList, redis.PrefixRecommendation} {
		if err := s.tiers.InvalidatePattern(ctx, prefix); err != nil {
			return err
		}
	}
	return nil
}

// WarmCache pre-loads the given catalog entries through the tier chain.
func (s *Service) WarmCache(ctx context.Context, itemIDs []uuid.UUID) {
	s.catalog.Warm(ctx, itemIDs)
	s.log.Info("cache warmed", logger.Int("items", len(itemIDs)))
}

// CacheStats returns a snapshot of per-tier hit/miss counters.
func (s *Service) CacheStats() cache.Stats {
	return s.tiers.Stats()
}

// HealthCheck probes the cache tiers and returns tier -> alive.
func (s *Service) HealthCheck(ctx context.Context) map[string]bool {
	return s.tiers.Health(ctx)
}
