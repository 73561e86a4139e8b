package recommend

import (
	"context"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/catalog"
	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/recommend"
	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLEMENTARY STRATEGY
// ══════════════════════════════════════════════════════════════════════════════

// Complementary scoring: a candidate from an adjacent category starts at the
// base score and earns bonuses for sharing an occasion or season with the
// reference, since those make the pairing wearable together.
const (
	complementaryBase     = 50.0
	complementaryOccasion = 25.0
	complementarySeason   = 25.0
)

// categoryAdjacency maps each category to the categories that pair with it.
// Categories without a row fall back to the similar strategy.
var categoryAdjacency = map[catalog.Category][]catalog.Category{
	catalog.CategoryTops:      {catalog.CategoryBottoms, catalog.CategoryOuterwear},
	catalog.CategoryBottoms:   {catalog.CategoryTops, catalog.CategoryShoes},
	catalog.CategoryDresses:   {catalog.CategoryOuterwear, catalog.CategoryShoes, catalog.CategoryAccessories},
	catalog.CategoryOuterwear: {catalog.CategoryTops, catalog.CategoryDresses},
	catalog.CategoryShoes:     {catalog.CategoryBottoms, catalog.CategoryDresses, catalog.CategoryBags},
	catalog.CategoryBags:      {catalog.CategoryShoes, catalog.CategoryAccessories},
}

// ComplementaryStrategy suggests items that pair with a reference item:
// bottoms for a top, a jacket for a dress. Candidate categories come from
// a static adjacency table.
type ComplementaryStrategy struct {
	catalog CatalogReader
	similar *SimilarStrategy
}

// NewComplementaryStrategy creates a ComplementaryStrategy.
func NewComplementaryStrategy(catalog CatalogReader, similar *SimilarStrategy) *ComplementaryStrategy {
	return &ComplementaryStrategy{catalog: catalog, similar: similar}
}

// Algorithm returns the strategy's algorithm tag.
func (s *ComplementaryStrategy) Algorithm() recommend.Algorithm {
	return recommend.AlgorithmComplementary
}

// Recommend returns entries that complement the reference item.
func (s *ComplementaryStrategy) Recommend(ctx context.Context, req recommend.Request) ([]recommend.ScoredItem, error) {
	if req.ItemID == nil {
		return nil, shared.ErrMissingItemID
	}

	ref, err := s.catalog.GetByID(ctx, *req.ItemID)
	if err != nil {
		return nil, err
	}

	adjacent, ok := categoryAdjacency[ref.Category]
	if !ok {
		// No adjacency row: similar items are the best we can offer.
		return s.similar.rankAgainst(ctx, ref, req)
	}

	var items []recommend.ScoredItem
	for _, category := range adjacent {
		candidates, err := s.catalog.List(ctx, catalog.Filter{
			Category:   category,
			ActiveOnly: true,
			Limit:      candidatePoolSize,
		})
		if err != nil {
			return nil, err
		}

		for _, e := range activeCandidates(candidates, req.Category, ref.ID) {
			items = append(items, recommend.ScoredItem{
				Entry:     e,
				Score:     s.score(ref, e),
				Reason:    "pairs well with " + ref.Name,
				Algorithm: recommend.AlgorithmComplementary,
			})
		}
	}

	recommend.SortByScore(items)
	return recommend.Truncate(items, req.Limit), nil
}

func (s *ComplementaryStrategy) score(ref, candidate *catalog.Entry) float64 {
	score := complementaryBase
	if anyOverlap(ref.Occasions, candidate.Occasions) {
		score += complementaryOccasion
	}
	if anyOverlap(ref.Seasons, candidate.Seasons) {
		score += complementarySeason
	}
	return score
}

func anyOverlap(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}
