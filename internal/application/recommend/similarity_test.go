package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/catalog"
)

func TestSimilarityScorer_CategoryMatch(t *testing.T) {
	scorer := NewSimilarityScorer()

	a := newTestEntry("white tee", catalog.CategoryTops)
	b := newTestEntry("black tee", catalog.CategoryTops)

	score, matched := scorer.Score(a, b)
	assert.Equal(t, 30.0, score)
	assert.Equal(t, []string{"category"}, matched)
}

func TestSimilarityScorer_TagOverlapRatio(t *testing.T) {
	scorer := NewSimilarityScorer()

	// 2 shared tags out of max(3, 2) = 3 -> ratio 2/3, weight 20.
	a := newTestEntry("a", catalog.CategoryTops, withTags("casual", "cotton", "summer"))
	b := newTestEntry("b", catalog.CategoryShoes, withTags("casual", "cotton"))

	score, matched := scorer.Score(a, b)
	assert.InDelta(t, 2.0/3.0*20.0, score, 1e-9)
	assert.Equal(t, []string{"tags"}, matched)
}

func TestSimilarityScorer_AllFeatures(t *testing.T) {
	scorer := NewSimilarityScorer()

	a := newTestEntry("a", catalog.CategoryDresses,
		withTags("floral"),
		withColors("red"),
		withOccasions("party"),
		withSeasons("summer"),
		withStyles("boho"),
	)
	b := newTestEntry("b", catalog.CategoryDresses,
		withTags("floral"),
		withColors("red"),
		withOccasions("party"),
		withSeasons("summer"),
		withStyles("boho"),
	)

	score, matched := scorer.Score(a, b)
	assert.Equal(t, 100.0, score)
	assert.Equal(t, []string{"category", "tags", "colors", "occasions", "seasons", "styles"}, matched)
}

func TestSimilarityScorer_EmptyFeatureSetScoresZero(t *testing.T) {
	scorer := NewSimilarityScorer()

	a := newTestEntry("a", catalog.CategoryTops, withTags("casual"))
	b := newTestEntry("b", catalog.CategoryShoes) // no tags at all

	score, matched := scorer.Score(a, b)
	assert.Equal(t, 0.0, score)
	assert.Empty(t, matched)
}

func TestSimilarityScorer_DuplicateValuesCountOnce(t *testing.T) {
	scorer := NewSimilarityScorer()

	a := newTestEntry("a", catalog.CategoryShoes, withColors("red", "red"))
	b := newTestEntry("b", catalog.CategoryTops, withColors("red"))

	// Distinct sets are {red} vs {red}: full overlap, ratio 1.
	score, _ := scorer.Score(a, b)
	assert.Equal(t, 15.0, score)
}

func TestSimilarityScorer_Reason(t *testing.T) {
	scorer := NewSimilarityScorer()

	assert.Equal(t, "similar item", scorer.Reason(nil))
	assert.Equal(t, "matches on category, tags", scorer.Reason([]string{"category", "tags"}))
}
