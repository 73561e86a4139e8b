package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/catalog"
	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/recommend"
)

func scored(e *catalog.Entry, score float64, algo recommend.Algorithm) recommend.ScoredItem {
	return recommend.ScoredItem{Entry: e, Score: score, Algorithm: algo}
}

func TestEnsembleRanker_MergeWeightsSingleLists(t *testing.T) {
	ranker := NewEnsembleRanker()

	a := newTestEntry("a", catalog.CategoryTops)
	b := newTestEntry("b", catalog.CategoryShoes)

	merged := ranker.Merge(
		[]recommend.ScoredItem{scored(a, 100, recommend.AlgorithmPersonalized)},
		[]recommend.ScoredItem{scored(b, 100, recommend.AlgorithmPersonalized)},
		0.6, 0.4, 10,
	)

	assert.Len(t, merged, 2)
	assert.Equal(t, a.ID, merged[0].Entry.ID)
	assert.Equal(t, 60.0, merged[0].Score)
	assert.Equal(t, 40.0, merged[1].Score)
}

func TestEnsembleRanker_MergeSumsDualPresence(t *testing.T) {
	ranker := NewEnsembleRanker()

	e := newTestEntry("both", catalog.CategoryTops)

	merged := ranker.Merge(
		[]recommend.ScoredItem{scored(e, 80, recommend.AlgorithmPersonalized)},
		[]recommend.ScoredItem{scored(e, 50, recommend.AlgorithmPersonalized)},
		0.6, 0.4, 10,
	)

	assert.Len(t, merged, 1)
	assert.InDelta(t, 80*0.6+50*0.4, merged[0].Score, 1e-9)
	assert.Equal(t, recommend.AlgorithmEnsemble, merged[0].Algorithm)
}

func TestEnsembleRanker_MergeTruncates(t *testing.T) {
	ranker := NewEnsembleRanker()

	var a []recommend.ScoredItem
	for i := 0; i < 5; i++ {
		a = append(a, scored(newTestEntry("x", catalog.CategoryTops), float64(100-i), recommend.AlgorithmPopular))
	}

	merged := ranker.Merge(a, nil, 0.6, 0.4, 3)
	assert.Len(t, merged, 3)
}

func TestEnsembleRanker_DiversifyPrefersUnseenPairs(t *testing.T) {
	ranker := NewEnsembleRanker()

	tee1 := newTestEntry("tee1", catalog.CategoryTops, withType("t-shirt"))
	tee2 := newTestEntry("tee2", catalog.CategoryTops, withType("t-shirt"))
	jeans := newTestEntry("jeans", catalog.CategoryBottoms, withType("jeans"))
	boots := newTestEntry("boots", catalog.CategoryShoes, withType("boots"))

	items := []recommend.ScoredItem{
		scored(tee1, 100, recommend.AlgorithmPopular),
		scored(tee2, 90, recommend.AlgorithmPopular),
		scored(jeans, 80, recommend.AlgorithmPopular),
		scored(boots, 70, recommend.AlgorithmPopular),
	}

	picked := ranker.Diversify(items, 3)

	assert.Len(t, picked, 3)
	// tee2 duplicates tee1's (category, type) pair and is displaced by the
	// novel jeans and boots.
	assert.Equal(t, tee1.ID, picked[0].Entry.ID)
	assert.Equal(t, jeans.ID, picked[1].Entry.ID)
	assert.Equal(t, boots.ID, picked[2].Entry.ID)
}

func TestEnsembleRanker_DiversifyFillsFromScoreOrder(t *testing.T) {
	ranker := NewEnsembleRanker()

	// All entries share one pair: only the first is novel, the rest fill
	// in input order.
	e1 := newTestEntry("e1", catalog.CategoryTops, withType("t-shirt"))
	e2 := newTestEntry("e2", catalog.CategoryTops, withType("t-shirt"))
	e3 := newTestEntry("e3", catalog.CategoryTops, withType("t-shirt"))

	items := []recommend.ScoredItem{
		scored(e1, 100, recommend.AlgorithmPopular),
		scored(e2, 90, recommend.AlgorithmPopular),
		scored(e3, 80, recommend.AlgorithmPopular),
	}

	picked := ranker.Diversify(items, 2)
	assert.Len(t, picked, 2)
	assert.Equal(t, e1.ID, picked[0].Entry.ID)
	assert.Equal(t, e2.ID, picked[1].Entry.ID)
}

func TestEnsembleRanker_DiversifyNoOpWhenWithinLimit(t *testing.T) {
	ranker := NewEnsembleRanker()

	e1 := newTestEntry("e1", catalog.CategoryTops, withType("t-shirt"))
	items := []recommend.ScoredItem{scored(e1, 100, recommend.AlgorithmPopular)}

	picked := ranker.Diversify(items, 5)
	assert.Len(t, picked, 1)
	assert.Equal(t, e1.ID, picked[0].Entry.ID)
}

func TestEnsembleRanker_DiversifyNeverDuplicates(t *testing.T) {
	ranker := NewEnsembleRanker()

	var items []recommend.ScoredItem
	for i := 0; i < 10; i++ {
		items = append(items, scored(
			newTestEntry("e", catalog.CategoryTops, withType("t-shirt")),
			float64(100-i), recommend.AlgorithmPopular,
		))
	}

	picked := ranker.Diversify(items, 6)
	assert.Len(t, picked, 6)

	seen := make(map[string]bool)
	for _, item := range picked {
		assert.False(t, seen[item.Entry.ID.String()])
		seen[item.Entry.ID.String()] = true
	}
}
