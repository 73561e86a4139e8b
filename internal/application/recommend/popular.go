package recommend

import (
	"context"

	"github.com/google/uuid"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/catalog"
	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/recommend"
)

// ══════════════════════════════════════════════════════════════════════════════
// POPULAR STRATEGY
// ══════════════════════════════════════════════════════════════════════════════

// PopularStrategy ranks entries by popularity score, then favorite count,
// then use count. The score is a linear function of rank: 100 - 2*rank.
type PopularStrategy struct {
	catalog CatalogReader
}

// NewPopularStrategy creates a PopularStrategy.
func NewPopularStrategy(catalog CatalogReader) *PopularStrategy {
	return &PopularStrategy{catalog: catalog}
}

// Algorithm returns the strategy's algorithm tag.
func (s *PopularStrategy) Algorithm() recommend.Algorithm {
	return recommend.AlgorithmPopular
}

// Recommend returns the most popular active entries.
func (s *PopularStrategy) Recommend(ctx context.Context, req recommend.Request) ([]recommend.ScoredItem, error) {
	entries, err := s.catalog.List(ctx, catalog.Filter{
		Category:   catalog.Category(req.Category),
		ActiveOnly: true,
		Limit:      req.Limit,
	})
	if err != nil {
		return nil, err
	}

	// The repository already orders by popularity, favorites, uses.
	items := make([]recommend.ScoredItem, 0, len(entries))
	for rank, e := range entries {
		items = append(items, recommend.ScoredItem{
			Entry:     e,
			Score:     float64(100 - 2*rank),
			Reason:    "popular right now",
			Algorithm: recommend.AlgorithmPopular,
		})
	}

	return items, nil
}

// recommendExcluding is a popular pass that skips the given IDs. Used by the
// personalized fallback so a user's own favorites don't come back as
// recommendations.
func (s *PopularStrategy) recommendExcluding(ctx context.Context, req recommend.Request, exclude map[uuid.UUID]struct{}) ([]recommend.ScoredItem, error) {
	entries, err := s.catalog.List(ctx, catalog.Filter{
		Category:   catalog.Category(req.Category),
		ActiveOnly: true,
		Limit:      req.Limit + len(exclude),
	})
	if err != nil {
		return nil, err
	}

	items := make([]recommend.ScoredItem, 0, req.Limit)
	rank := 0
	for _, e := range entries {
		if _, skip := exclude[e.ID]; skip {
			continue
		}
		if len(items) >= req.Limit {
			break
		}
		items = append(items, recommend.ScoredItem{
			Entry:     e,
			Score:     float64(100 - 2*rank),
			Reason:    "popular right now",
			Algorithm: recommend.AlgorithmPopular,
		})
		rank++
	}

	return items, nil
}
