package recommend

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/catalog"
	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/recommend"
)

// ══════════════════════════════════════════════════════════════════════════════
// PERSONALIZED STRATEGY
// ══════════════════════════════════════════════════════════════════════════════

// Profile-derived cuts for the content-based pass.
const (
	topCategoryCount = 3
	topTagCount      = 5

	// minSharedFavorites is how many favorited items two users must share
	// before the collaborative pass treats them as taste neighbors.
	minSharedFavorites = 2

	// featuredBonus lifts featured entries in the content-based ranking.
	featuredBonus = 10.0
)

// PersonalizedStrategy blends a collaborative pass (what taste neighbors
// favorited) with a content-based pass (entries matching the user's top
// categories and tags) through the ensemble ranker. Without a user ID, or
// when the user has no history to learn from, it falls back to popular.
type PersonalizedStrategy struct {
	catalog   CatalogReader
	store     interactionStore
	extractor *PreferenceExtractor
	ensemble  *EnsembleRanker
	popular   *PopularStrategy
}

// NewPersonalizedStrategy creates a PersonalizedStrategy.
func NewPersonalizedStrategy(
	catalog CatalogReader,
	store interactionStore,
	extractor *PreferenceExtractor,
	ensemble *EnsembleRanker,
	popular *PopularStrategy,
) *PersonalizedStrategy {
	return &PersonalizedStrategy{
		catalog:   catalog,
		store:     store,
		extractor: extractor,
		ensemble:  ensemble,
		popular:   popular,
	}
}

// Algorithm returns the strategy's algorithm tag.
func (s *PersonalizedStrategy) Algorithm() recommend.Algorithm {
	return recommend.AlgorithmPersonalized
}

// Recommend returns recommendations tailored to the requesting user.
// The merged list is capped at limit*2 so the diversity pass downstream
// still has material to choose from.
func (s *PersonalizedStrategy) Recommend(ctx context.Context, req recommend.Request) ([]recommend.ScoredItem, error) {
	if req.UserID == nil {
		return s.popular.Recommend(ctx, req)
	}

	profile, err := s.extractor.BuildProfile(ctx, *req.UserID)
	if err != nil {
		return nil, err
	}
	if profile.IsEmpty() {
		return s.popular.Recommend(ctx, req)
	}

	passSize := (req.Limit*3 + 1) / 2 // ceil(limit * 1.5)

	collaborative, err := s.collaborativePass(ctx, profile, req, passSize)
	if err != nil {
		return nil, err
	}

	contentBased, err := s.contentPass(ctx, profile, req, passSize)
	if err != nil {
		return nil, err
	}

	if len(collaborative) == 0 && len(contentBased) == 0 {
		favorited := make(map[uuid.UUID]struct{}, len(profile.RecentFavoriteIDs))
		for _, id := range profile.RecentFavoriteIDs {
			favorited[id] = struct{}{}
		}
		return s.popular.recommendExcluding(ctx, req, favorited)
	}

	return s.ensemble.Merge(collaborative, contentBased,
		WeightCollaborative, WeightContentBased, req.Limit*2), nil
}

// collaborativePass ranks items favorited by users who share at least two
// favorites with this user, by distinct co-favoriting-user count, then by
// popularity. Scores are linear in rank.
func (s *PersonalizedStrategy) collaborativePass(ctx context.Context, profile *recommend.PreferenceProfile, req recommend.Request, passSize int) ([]recommend.ScoredItem, error) {
	counts, err := s.store.CoFavoriteCounts(ctx, profile.UserID, minSharedFavorites)
	if err != nil {
		return nil, err
	}
	if len(counts) == 0 {
		return nil, nil
	}

	coUsers := make(map[uuid.UUID]int64, len(counts))
	ids := make([]uuid.UUID, 0, len(counts))
	for _, ic := range counts {
		coUsers[ic.ItemID] = ic.Count
		ids = append(ids, ic.ItemID)
	}

	entries, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	candidates := activeCandidates(entries, req.Category, uuid.Nil)
	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := coUsers[candidates[i].ID], coUsers[candidates[j].ID]
		if ci != cj {
			return ci > cj
		}
		return candidates[i].PopularityScore > candidates[j].PopularityScore
	})
	if len(candidates) > passSize {
		candidates = candidates[:passSize]
	}

	items := make([]recommend.ScoredItem, 0, len(candidates))
	for rank, e := range candidates {
		items = append(items, recommend.ScoredItem{
			Entry:     e,
			Score:     float64(100 - 2*rank),
			Reason:    "favorited by people with similar taste",
			Algorithm: recommend.AlgorithmPersonalized,
		})
	}

	return items, nil
}

// contentPass ranks entries from the user's top-3 categories carrying their
// top-5 tags, excluding already-favorited items, by popularity with a
// featured bonus. When no candidate in the top categories carries a top tag,
// the tag filter is lifted so the pass still contributes category matches.
func (s *PersonalizedStrategy) contentPass(ctx context.Context, profile *recommend.PreferenceProfile, req recommend.Request, passSize int) ([]recommend.ScoredItem, error) {
	topCategories := profile.TopCategories(topCategoryCount)
	topTags := profile.TopTags(topTagCount)
	if len(topCategories) == 0 {
		return nil, nil
	}

	tagSet := make(map[string]struct{}, len(topTags))
	for _, t := range topTags {
		tagSet[t] = struct{}{}
	}

	var pool []*catalog.Entry
	seen := make(map[uuid.UUID]struct{})
	for _, cat := range topCategories {
		entries, err := s.catalog.List(ctx, catalog.Filter{
			Category:   catalog.Category(cat),
			ActiveOnly: true,
			Limit:      candidatePoolSize,
		})
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if _, dup := seen[e.ID]; dup {
				continue
			}
			seen[e.ID] = struct{}{}
			pool = append(pool, e)
		}
	}

	candidates := make([]*catalog.Entry, 0, len(pool))
	for _, e := range activeCandidates(pool, req.Category, uuid.Nil) {
		if profile.HasFavorited(e.ID) {
			continue
		}
		candidates = append(candidates, e)
	}

	if len(tagSet) > 0 {
		tagged := make([]*catalog.Entry, 0, len(candidates))
		for _, e := range candidates {
			if hasAnyTag(e.Tags, tagSet) {
				tagged = append(tagged, e)
			}
		}
		if len(tagged) > 0 {
			candidates = tagged
		}
	}

	items := make([]recommend.ScoredItem, 0, passSize)
	for _, e := range candidates {
		score := e.PopularityScore
		if e.Featured {
			score += featuredBonus
		}
		if score > 100 {
			score = 100
		}
		items = append(items, recommend.ScoredItem{
			Entry:     e,
			Score:     score,
			Reason:    "matches your style",
			Algorithm: recommend.AlgorithmPersonalized,
		})
	}

	recommend.SortByScore(items)
	return recommend.Truncate(items, passSize), nil
}

func hasAnyTag(tags []string, set map[string]struct{}) bool {
	for _, t := range tags {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}
