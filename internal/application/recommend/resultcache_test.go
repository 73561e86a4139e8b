package recommend

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/recommend"
)

func TestResultCache_SetGet(t *testing.T) {
	cache := NewResultCache(time.Minute, 10)

	response := &recommend.Response{Algorithm: recommend.AlgorithmPopular, Total: 3}
	cache.Set("popular:u=:i=:l=10:c=:d=false", response)

	got, ok := cache.Get("popular:u=:i=:l=10:c=:d=false")
	assert.True(t, ok)
	assert.Equal(t, response, got)

	_, ok = cache.Get("other-key")
	assert.False(t, ok)
}

func TestResultCache_ExpiredEntriesMiss(t *testing.T) {
	cache := NewResultCache(time.Minute, 10)

	now := time.Now().UTC()
	cache.now = func() time.Time { return now }
	cache.Set("key", &recommend.Response{})

	cache.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, ok := cache.Get("key")
	assert.False(t, ok)
}

func TestResultCache_SweepsExpiredPastThreshold(t *testing.T) {
	cache := NewResultCache(time.Minute, 5)

	now := time.Now().UTC()
	cache.now = func() time.Time { return now }
	for i := 0; i < 5; i++ {
		cache.Set(fmt.Sprintf("old-%d", i), &recommend.Response{})
	}

	// The sixth write happens after the first five expired and pushes the
	// map past the threshold, sweeping them.
	cache.now = func() time.Time { return now.Add(2 * time.Minute) }
	cache.Set("fresh", &recommend.Response{})

	assert.Equal(t, 1, cache.Len())
	_, ok := cache.Get("fresh")
	assert.True(t, ok)
}

func TestResultCache_Invalidate(t *testing.T) {
	cache := NewResultCache(time.Minute, 10)
	cache.Set("key", &recommend.Response{})

	cache.Invalidate()

	assert.Equal(t, 0, cache.Len())
	_, ok := cache.Get("key")
	assert.False(t, ok)
}
