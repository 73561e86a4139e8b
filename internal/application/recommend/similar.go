package recommend

import (
	"context"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/catalog"
	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/recommend"
	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SIMILAR STRATEGY
// ══════════════════════════════════════════════════════════════════════════════

// SimilarStrategy ranks candidates by feature overlap with a reference item.
// When the reference carries a subtype, candidates are restricted to it.
type SimilarStrategy struct {
	catalog CatalogReader
	scorer  *SimilarityScorer
}

// NewSimilarStrategy creates a SimilarStrategy.
func NewSimilarStrategy(catalog CatalogReader, scorer *SimilarityScorer) *SimilarStrategy {
	return &SimilarStrategy{catalog: catalog, scorer: scorer}
}

// Algorithm returns the strategy's algorithm tag.
func (s *SimilarStrategy) Algorithm() recommend.Algorithm {
	return recommend.AlgorithmSimilar
}

// Recommend returns the entries most similar to the reference item.
func (s *SimilarStrategy) Recommend(ctx context.Context, req recommend.Request) ([]recommend.ScoredItem, error) {
	if req.ItemID == nil {
		return nil, shared.ErrMissingItemID
	}

	ref, err := s.catalog.GetByID(ctx, *req.ItemID)
	if err != nil {
		return nil, err
	}

	return s.rankAgainst(ctx, ref, req)
}

// rankAgainst scores the candidate pool against the reference entry.
// Shared with the complementary strategy's fallback path.
func (s *SimilarStrategy) rankAgainst(ctx context.Context, ref *catalog.Entry, req recommend.Request) ([]recommend.ScoredItem, error) {
	candidates, err := s.catalog.List(ctx, catalog.Filter{
		Type:       ref.Type,
		ActiveOnly: true,
		Limit:      candidatePoolSize,
	})
	if err != nil {
		return nil, err
	}

	items := make([]recommend.ScoredItem, 0, len(candidates))
	for _, e := range activeCandidates(candidates, req.Category, ref.ID) {
		score, matched := s.scorer.Score(ref, e)
		if score == 0 {
			continue
		}
		items = append(items, recommend.ScoredItem{
			Entry:     e,
			Score:     score,
			Reason:    s.scorer.Reason(matched),
			Algorithm: recommend.AlgorithmSimilar,
		})
	}

	recommend.SortByScore(items)
	return recommend.Truncate(items, req.Limit), nil
}
