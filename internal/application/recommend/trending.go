package recommend

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/recommend"
	"github.com/wardrobe-hub/wardrobe-recs/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// TRENDING STRATEGY
// ══════════════════════════════════════════════════════════════════════════════

// Recency windows and their decay weights. Windows are disjoint: a view
// counts in exactly one window, so the most recent day contributes at full
// weight and older activity decays.
const (
	trendWindow1d = 1
	trendWindow3d = 3
	trendWindow7d = 7

	trendWeight1d = 1.0
	trendWeight3d = 0.5
	trendWeight7d = 0.25
)

// TrendingStrategy ranks entries by time-decayed view counts over 1/3/7-day
// windows. Entries with zero decayed score are excluded.
type TrendingStrategy struct {
	catalog CatalogReader
	store   interactionStore

	// now is swappable for tests.
	now func() time.Time
}

// NewTrendingStrategy creates a TrendingStrategy.
func NewTrendingStrategy(catalog CatalogReader, store interactionStore) *TrendingStrategy {
	return &TrendingStrategy{
		catalog: catalog,
		store:   store,
		now:     timeutil.Now,
	}
}

// Algorithm returns the strategy's algorithm tag.
func (s *TrendingStrategy) Algorithm() recommend.Algorithm {
	return recommend.AlgorithmTrending
}

// Recommend returns entries trending over the last week.
func (s *TrendingStrategy) Recommend(ctx context.Context, req recommend.Request) ([]recommend.ScoredItem, error) {
	now := s.now()

	scores, err := s.decayedScores(ctx, now)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return []recommend.ScoredItem{}, nil
	}

	ids := make([]uuid.UUID, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}

	entries, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]recommend.ScoredItem, 0, len(entries))
	for _, e := range activeCandidates(entries, req.Category, uuid.Nil) {
		items = append(items, recommend.ScoredItem{
			Entry:     e,
			Score:     scores[e.ID],
			Reason:    "trending this week",
			Algorithm: recommend.AlgorithmTrending,
		})
	}

	recommend.SortByScore(items)
	return recommend.Truncate(items, req.Limit), nil
}

// decayedScores sums weighted view counts across the three disjoint windows.
func (s *TrendingStrategy) decayedScores(ctx context.Context, now time.Time) (map[uuid.UUID]float64, error) {
	windows := []struct {
		from, to time.Time
		weight   float64
	}{
		{timeutil.WindowStart(now, trendWindow1d), now, trendWeight1d},
		{timeutil.WindowStart(now, trendWindow3d), timeutil.WindowStart(now, trendWindow1d), trendWeight3d},
		{timeutil.WindowStart(now, trendWindow7d), timeutil.WindowStart(now, trendWindow3d), trendWeight7d},
	}

	scores := make(map[uuid.UUID]float64)
	for _, w := range windows {
		counts, err := s.store.ViewCountsBetween(ctx, w.from, w.to)
		if err != nil {
			return nil, err
		}
		for id, count := range counts {
			scores[id] += float64(count) * w.weight
		}
	}

	// Zero-score entries never rank.
	for id, score := range scores {
		if score == 0 {
			delete(scores, id)
		}
	}

	return scores, nil
}
