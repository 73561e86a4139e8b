package recommend

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPreferenceProfile_IsEmpty(t *testing.T) {
	p := NewPreferenceProfile(uuid.New())
	assert.True(t, p.IsEmpty())

	p.CategoryWeights["tops"] = 1
	assert.False(t, p.IsEmpty())
}

func TestPreferenceProfile_HasFavorited(t *testing.T) {
	p := NewPreferenceProfile(uuid.New())
	id := uuid.New()

	assert.False(t, p.HasFavorited(id))

	p.RecentFavoriteIDs = append(p.RecentFavoriteIDs, id)
	assert.True(t, p.HasFavorited(id))
}

func TestPreferenceProfile_TopCategoriesCutAndOrder(t *testing.T) {
	p := NewPreferenceProfile(uuid.New())
	p.CategoryWeights["tops"] = 5
	p.CategoryWeights["shoes"] = 3
	p.CategoryWeights["bags"] = 2
	p.CategoryWeights["dresses"] = 1

	assert.Equal(t, []string{"tops", "shoes", "bags"}, p.TopCategories(3))
}

func TestPreferenceProfile_TopTagsTieBreaksAlphabetically(t *testing.T) {
	p := NewPreferenceProfile(uuid.New())
	p.TagWeights["casual"] = 2
	p.TagWeights["boho"] = 2
	p.TagWeights["formal"] = 2

	// Equal weights: deterministic alphabetical order.
	assert.Equal(t, []string{"boho", "casual"}, p.TopTags(2))
}

func TestPreferenceProfile_TopKeysShorterThanN(t *testing.T) {
	p := NewPreferenceProfile(uuid.New())
	p.TagWeights["casual"] = 1

	assert.Equal(t, []string{"casual"}, p.TopTags(5))
	assert.Empty(t, p.TopCategories(3))
}
