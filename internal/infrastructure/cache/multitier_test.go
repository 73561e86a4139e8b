package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/shared"
	"github.com/wardrobe-hub/wardrobe-recs/internal/infrastructure/persistence/redis"
)

// fakeL2 is an in-memory stand-in for the shared cache tier.
type fakeL2 struct {
	mu       sync.Mutex
	data     map[string][]byte
	failGets bool
	pingErr  error
}

func newFakeL2() *fakeL2 {
	return &fakeL2{data: make(map[string][]byte)}
}

func (f *fakeL2) GetBytes(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGets {
		return nil, errors.New("connection refused")
	}
	data, ok := f.data[key]
	if !ok {
		return nil, redis.ErrCacheMiss
	}
	return data, nil
}

func (f *fakeL2) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeL2) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeL2) DeleteByPattern(ctx context.Context, pattern string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := pattern[:len(pattern)-1] // trailing "*"
	for k := range f.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(f.data, k)
		}
	}
	return nil
}

func (f *fakeL2) Ping(ctx context.Context) error { return f.pingErr }

type payload struct {
	Name string `json:"name"`
}

// countingLoader returns a loader that records how often it runs.
func countingLoader(value interface{}, err error) (Loader, *int) {
	calls := new(int)
	return func(ctx context.Context) (interface{}, error) {
		*calls++
		return value, err
	}, calls
}

func TestMultiTier_LoaderBackfillsBothTiers(t *testing.T) {
	l2 := newFakeL2()
	tiers := New(DefaultConfig(), l2)

	loader, calls := countingLoader(&payload{Name: "linen shirt"}, nil)

	var got payload
	err := tiers.Get(context.Background(), "item:1", &got, loader)
	assert.NoError(t, err)
	assert.Equal(t, "linen shirt", got.Name)
	assert.Equal(t, 1, *calls)

	// Second read is an L1 hit: the loader stays cold.
	var again payload
	err = tiers.Get(context.Background(), "item:1", &again, loader)
	assert.NoError(t, err)
	assert.Equal(t, 1, *calls)

	// The value also landed in L2.
	_, ok := l2.data["item:1"]
	assert.True(t, ok)
}

func TestMultiTier_SetThenGetNeverTouchesLoader(t *testing.T) {
	tiers := New(DefaultConfig(), newFakeL2())

	err := tiers.Set(context.Background(), "item:1", &payload{Name: "denim jacket"})
	assert.NoError(t, err)

	loader, calls := countingLoader(nil, errors.New("should not be called"))

	var got payload
	err = tiers.Get(context.Background(), "item:1", &got, loader)
	assert.NoError(t, err)
	assert.Equal(t, "denim jacket", got.Name)
	assert.Equal(t, 0, *calls)
}

func TestMultiTier_L2HitBackfillsL1(t *testing.T) {
	l2 := newFakeL2()
	l2.data["item:1"] = []byte(`{"name":"wool coat"}`)

	tiers := New(DefaultConfig(), l2)

	var got payload
	err := tiers.Get(context.Background(), "item:1", &got, nil)
	assert.NoError(t, err)
	assert.Equal(t, "wool coat", got.Name)

	stats := tiers.Stats()
	assert.Equal(t, int64(1), stats.L2.Hits)
	assert.Equal(t, 1, stats.Entries) // backfilled into L1
}

func TestMultiTier_InvalidateForcesRefetch(t *testing.T) {
	l2 := newFakeL2()
	tiers := New(DefaultConfig(), l2)

	loader, calls := countingLoader(&payload{Name: "v1"}, nil)

	var got payload
	assert.NoError(t, tiers.Get(context.Background(), "item:1", &got, loader))
	assert.Equal(t, 1, *calls)

	assert.NoError(t, tiers.Invalidate(context.Background(), "item:1"))
	_, ok := l2.data["item:1"]
	assert.False(t, ok)

	assert.NoError(t, tiers.Get(context.Background(), "item:1", &got, loader))
	assert.Equal(t, 2, *calls)
}

func TestMultiTier_InvalidatePatternClearsL2Only(t *testing.T) {
	l2 := newFakeL2()
	l2.data["list:a"] = []byte(`{}`)
	l2.data["list:b"] = []byte(`{}`)
	l2.data["item:1"] = []byte(`{}`)

	tiers := New(DefaultConfig(), l2)

	assert.NoError(t, tiers.InvalidatePattern(context.Background(), "list:"))
	assert.Len(t, l2.data, 1)
	_, ok := l2.data["item:1"]
	assert.True(t, ok)
}

func TestMultiTier_NotFoundPropagates(t *testing.T) {
	tiers := New(DefaultConfig(), newFakeL2())

	loader, _ := countingLoader(nil, ErrNotFound)

	var got payload
	err := tiers.Get(context.Background(), "item:missing", &got, loader)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMultiTier_TransientL3FailureResolvesNotFound(t *testing.T) {
	tiers := New(DefaultConfig(), newFakeL2())

	loader, calls := countingLoader(nil,
		shared.WrapError("catalog", "GetByID", shared.ErrBackendUnavailable, "db down", errors.New("connection refused")))

	var got payload
	err := tiers.Get(context.Background(), "item:1", &got, loader)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, *calls)

	stats := tiers.Stats()
	assert.Equal(t, int64(1), stats.Errors)
	assert.Equal(t, int64(1), stats.L3.Misses)
}

func TestMultiTier_UnexpectedL3ErrorPropagates(t *testing.T) {
	tiers := New(DefaultConfig(), newFakeL2())

	boom := errors.New("corrupt row")
	loader, _ := countingLoader(nil, boom)

	var got payload
	err := tiers.Get(context.Background(), "item:1", &got, loader)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestMultiTier_NilLoaderOnFullMiss(t *testing.T) {
	tiers := New(DefaultConfig(), newFakeL2())

	var got payload
	err := tiers.Get(context.Background(), "item:1", &got, nil)
	assert.ErrorIs(t, err, ErrNilLoader)
}

func TestMultiTier_L2FailureDegradesToMiss(t *testing.T) {
	l2 := newFakeL2()
	l2.failGets = true

	tiers := New(DefaultConfig(), l2)

	loader, calls := countingLoader(&payload{Name: "fallback"}, nil)

	var got payload
	err := tiers.Get(context.Background(), "item:1", &got, loader)
	assert.NoError(t, err)
	assert.Equal(t, "fallback", got.Name)
	assert.Equal(t, 1, *calls)
}

func TestMultiTier_StatsHitRate(t *testing.T) {
	tiers := New(DefaultConfig(), newFakeL2())

	loader, _ := countingLoader(&payload{Name: "x"}, nil)

	var got payload
	assert.NoError(t, tiers.Get(context.Background(), "item:1", &got, loader))
	assert.NoError(t, tiers.Get(context.Background(), "item:1", &got, loader))

	stats := tiers.Stats()
	assert.Equal(t, int64(1), stats.L1.Hits)
	assert.Equal(t, int64(1), stats.L1.Misses)
	assert.Equal(t, 0.5, stats.L1.HitRate)
	assert.Equal(t, int64(1), stats.L3.Hits)
}

func TestMultiTier_Warm(t *testing.T) {
	tiers := New(DefaultConfig(), newFakeL2())

	var mu sync.Mutex
	loaded := make(map[string]int)

	tiers.Warm(context.Background(), []string{"item:1", "item:2", "item:3"}, func(key string) Loader {
		return func(ctx context.Context) (interface{}, error) {
			mu.Lock()
			loaded[key]++
			mu.Unlock()
			return &payload{Name: key}, nil
		}
	})

	assert.Len(t, loaded, 3)

	// All warmed keys now resolve without their loaders.
	var got payload
	err := tiers.Get(context.Background(), "item:2", &got, nil)
	assert.NoError(t, err)
	assert.Equal(t, "item:2", got.Name)
}

func TestMultiTier_Health(t *testing.T) {
	l2 := newFakeL2()
	tiers := New(DefaultConfig(), l2, WithL3Probe(func(ctx context.Context) error { return nil }))

	health := tiers.Health(context.Background())
	assert.True(t, health["l1"])
	assert.True(t, health["l2"])
	assert.True(t, health["l3"])

	l2.pingErr = errors.New("down")
	health = tiers.Health(context.Background())
	assert.True(t, health["l1"])
	assert.False(t, health["l2"])
}

func TestMultiTier_NoL2StillServes(t *testing.T) {
	tiers := New(DefaultConfig(), nil)

	loader, calls := countingLoader(&payload{Name: "solo"}, nil)

	var got payload
	assert.NoError(t, tiers.Get(context.Background(), "item:1", &got, loader))
	assert.NoError(t, tiers.Get(context.Background(), "item:1", &got, loader))
	assert.Equal(t, 1, *calls)

	health := tiers.Health(context.Background())
	assert.False(t, health["l2"])
}
