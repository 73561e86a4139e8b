package recommend

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/shared"
)

func TestAlgorithm_IsValid(t *testing.T) {
	for _, a := range []Algorithm{
		AlgorithmPersonalized, AlgorithmTrending, AlgorithmSimilar,
		AlgorithmComplementary, AlgorithmPopular, AlgorithmNewArrivals,
	} {
		assert.True(t, a.IsValid(), a.String())
	}

	// The ensemble tag is produced by merging, never requested.
	assert.False(t, AlgorithmEnsemble.IsValid())
	assert.False(t, Algorithm("bogus").IsValid())
}

func TestAlgorithm_RequiresItemID(t *testing.T) {
	assert.True(t, AlgorithmSimilar.RequiresItemID())
	assert.True(t, AlgorithmComplementary.RequiresItemID())
	assert.False(t, AlgorithmPersonalized.RequiresItemID())
	assert.False(t, AlgorithmPopular.RequiresItemID())
}

func TestRequest_Normalize(t *testing.T) {
	r := Request{Type: AlgorithmPopular}
	r.Normalize()
	assert.Equal(t, DefaultLimit, r.Limit)

	r = Request{Type: AlgorithmPopular, Limit: 500}
	r.Normalize()
	assert.Equal(t, MaxLimit, r.Limit)

	r = Request{Type: AlgorithmPopular, Limit: 25}
	r.Normalize()
	assert.Equal(t, 25, r.Limit)
}

func TestRequest_Validate(t *testing.T) {
	r := Request{Type: "bogus", Limit: 10}
	assert.ErrorIs(t, r.Validate(), shared.ErrUnknownStrategy)

	r = Request{Type: AlgorithmSimilar, Limit: 10}
	assert.ErrorIs(t, r.Validate(), shared.ErrMissingItemID)

	nilID := uuid.Nil
	r = Request{Type: AlgorithmComplementary, ItemID: &nilID, Limit: 10}
	assert.ErrorIs(t, r.Validate(), shared.ErrMissingItemID)

	itemID := uuid.New()
	r = Request{Type: AlgorithmSimilar, ItemID: &itemID, Limit: 10}
	assert.NoError(t, r.Validate())

	r = Request{Type: AlgorithmPopular, Limit: 10}
	assert.NoError(t, r.Validate())
}

func TestRequest_CacheKeyCanonical(t *testing.T) {
	userID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	itemID := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	r := Request{
		Type:      AlgorithmSimilar,
		UserID:    &userID,
		ItemID:    &itemID,
		Limit:     10,
		Category:  "tops",
		Diversity: true,
	}

	assert.Equal(t,
		"similar:u=11111111-1111-1111-1111-111111111111:i=22222222-2222-2222-2222-222222222222:l=10:c=tops:d=true",
		r.CacheKey(),
	)

	// Optional IDs stay as empty slots so distinct requests never collide.
	empty := Request{Type: AlgorithmPopular, Limit: 10}
	assert.Equal(t, "popular:u=:i=:l=10:c=:d=false", empty.CacheKey())
}

func TestRequest_CacheKeyDistinguishesFields(t *testing.T) {
	base := Request{Type: AlgorithmPopular, Limit: 10}
	other := Request{Type: AlgorithmPopular, Limit: 20}
	assert.NotEqual(t, base.CacheKey(), other.CacheKey())

	withCategory := Request{Type: AlgorithmPopular, Limit: 10, Category: "shoes"}
	assert.NotEqual(t, base.CacheKey(), withCategory.CacheKey())
}
