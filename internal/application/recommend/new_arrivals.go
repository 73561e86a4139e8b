package recommend

import (
	"context"
	"sort"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/catalog"
	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/recommend"
	"github.com/wardrobe-hub/wardrobe-recs/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// NEW ARRIVALS STRATEGY
// ══════════════════════════════════════════════════════════════════════════════

// newArrivalWindowDays is how far back an entry still counts as new.
const newArrivalWindowDays = 30

// NewArrivalsStrategy surfaces entries created in the last 30 days, newest
// first with featured entries breaking ties. Score = 100 - rank.
type NewArrivalsStrategy struct {
	catalog CatalogReader
}

// NewNewArrivalsStrategy creates a NewArrivalsStrategy.
func NewNewArrivalsStrategy(catalog CatalogReader) *NewArrivalsStrategy {
	return &NewArrivalsStrategy{catalog: catalog}
}

// Algorithm returns the strategy's algorithm tag.
func (s *NewArrivalsStrategy) Algorithm() recommend.Algorithm {
	return recommend.AlgorithmNewArrivals
}

// Recommend returns the newest active entries.
func (s *NewArrivalsStrategy) Recommend(ctx context.Context, req recommend.Request) ([]recommend.ScoredItem, error) {
	entries, err := s.catalog.List(ctx, catalog.Filter{
		Category:     catalog.Category(req.Category),
		ActiveOnly:   true,
		CreatedAfter: timeutil.DaysAgo(newArrivalWindowDays),
		NewestFirst:  true,
		Limit:        candidatePoolSize,
	})
	if err != nil {
		return nil, err
	}

	// The fetch is already recency-ordered so a bounded pool never drops
	// the newest entries; re-sort to pin the featured tie-break.
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].Featured && !entries[j].Featured
	})

	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	items := make([]recommend.ScoredItem, 0, len(entries))
	for rank, e := range entries {
		items = append(items, recommend.ScoredItem{
			Entry:     e,
			Score:     float64(100 - rank),
			Reason:    "new arrival",
			Algorithm: recommend.AlgorithmNewArrivals,
		})
	}

	return items, nil
}
