package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/catalog"
	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/interaction"
	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/recommend"
	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/shared"
	"github.com/wardrobe-hub/wardrobe-recs/internal/infrastructure/cache"
)

// fakeRepo satisfies catalog.Repository for wiring the cached catalog.
type fakeRepo struct {
	fakeCatalog
}

func (f *fakeRepo) IncrementViewCount(ctx context.Context, id uuid.UUID) error  { return nil }
func (f *fakeRepo) IncrementUseCount(ctx context.Context, id uuid.UUID) error   { return nil }
func (f *fakeRepo) RecomputePopularity(ctx context.Context, id uuid.UUID) error { return nil }

// fullFakeStore satisfies the complete interaction.Store.
type fullFakeStore struct {
	*fakeStore
}

func (f *fullFakeStore) InsertBatch(ctx context.Context, events []*interaction.Event) error {
	return nil
}

func (f *fullFakeStore) TopItemsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]interaction.ItemCount, error) {
	return nil, nil
}

func (f *fullFakeStore) ItemStats(ctx context.Context, itemID uuid.UUID) (*interaction.ItemStats, error) {
	return &interaction.ItemStats{ItemID: itemID}, nil
}

func (f *fullFakeStore) TopItems(ctx context.Context, since time.Time, limit int) ([]interaction.ItemCount, error) {
	return nil, nil
}

type fakeTracker struct {
	events []*interaction.Event
}

func (f *fakeTracker) Track(event *interaction.Event) error {
	f.events = append(f.events, event)
	return nil
}

type stubStrategy struct {
	algo  recommend.Algorithm
	items []recommend.ScoredItem
	calls int
}

func (s *stubStrategy) Algorithm() recommend.Algorithm { return s.algo }

func (s *stubStrategy) Recommend(ctx context.Context, req recommend.Request) ([]recommend.ScoredItem, error) {
	s.calls++
	return s.items, nil
}

func newTestService(strategies []Strategy, tracker Tracker) *Service {
	tiers := cache.New(cache.Config{}, nil)
	cachedCatalog := cache.NewCachedCatalog(tiers, &fakeRepo{})
	store := &fullFakeStore{fakeStore: newFakeStore()}

	return NewService(strategies, NewEnsembleRanker(),
		NewResultCache(time.Minute, 100),
		cachedCatalog, tiers, store, tracker, nil)
}

func TestService_RejectsUnknownAlgorithm(t *testing.T) {
	service := newTestService(nil, &fakeTracker{})

	_, err := service.GetRecommendations(context.Background(), recommend.Request{
		Type: "bogus",
	})

	assert.ErrorIs(t, err, shared.ErrUnknownStrategy)
}

func TestService_RejectsSimilarWithoutItemID(t *testing.T) {
	service := newTestService(nil, &fakeTracker{})

	_, err := service.GetRecommendations(context.Background(), recommend.Request{
		Type: recommend.AlgorithmSimilar,
	})

	assert.ErrorIs(t, err, shared.ErrMissingItemID)
}

func TestService_MemoizesResponses(t *testing.T) {
	stub := &stubStrategy{
		algo: recommend.AlgorithmPopular,
		items: []recommend.ScoredItem{
			scored(newTestEntry("e", catalog.CategoryTops), 100, recommend.AlgorithmPopular),
		},
	}
	service := newTestService([]Strategy{stub}, &fakeTracker{})

	req := recommend.Request{Type: recommend.AlgorithmPopular, Limit: 10}

	first, err := service.GetRecommendations(context.Background(), req)
	assert.NoError(t, err)

	second, err := service.GetRecommendations(context.Background(), req)
	assert.NoError(t, err)

	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, first, second)
}

func TestService_NormalizesLimit(t *testing.T) {
	var items []recommend.ScoredItem
	for i := 0; i < 80; i++ {
		items = append(items, scored(
			newTestEntry("e", catalog.CategoryTops), float64(100-i), recommend.AlgorithmPopular))
	}
	stub := &stubStrategy{algo: recommend.AlgorithmPopular, items: items}
	service := newTestService([]Strategy{stub}, &fakeTracker{})

	// Zero limit -> default 10.
	resp, err := service.GetRecommendations(context.Background(), recommend.Request{
		Type: recommend.AlgorithmPopular,
	})
	assert.NoError(t, err)
	assert.Len(t, resp.Items, 10)

	// Over-cap limit -> max 50.
	resp, err = service.GetRecommendations(context.Background(), recommend.Request{
		Type:  recommend.AlgorithmPopular,
		Limit: 500,
	})
	assert.NoError(t, err)
	assert.Len(t, resp.Items, 50)
}

func TestService_DiversityPassReordersDuplicatePairs(t *testing.T) {
	tee1 := newTestEntry("tee1", catalog.CategoryTops, withType("t-shirt"))
	tee2 := newTestEntry("tee2", catalog.CategoryTops, withType("t-shirt"))
	jeans := newTestEntry("jeans", catalog.CategoryBottoms, withType("jeans"))

	stub := &stubStrategy{
		algo: recommend.AlgorithmPopular,
		items: []recommend.ScoredItem{
			scored(tee1, 100, recommend.AlgorithmPopular),
			scored(tee2, 90, recommend.AlgorithmPopular),
			scored(jeans, 80, recommend.AlgorithmPopular),
		},
	}
	service := newTestService([]Strategy{stub}, &fakeTracker{})

	resp, err := service.GetRecommendations(context.Background(), recommend.Request{
		Type:      recommend.AlgorithmPopular,
		Limit:     2,
		Diversity: true,
	})

	assert.NoError(t, err)
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, tee1.ID, resp.Items[0].Entry.ID)
	assert.Equal(t, jeans.ID, resp.Items[1].Entry.ID)
}

func TestService_TrackInteraction(t *testing.T) {
	tracker := &fakeTracker{}
	service := newTestService(nil, tracker)

	userID, itemID := uuid.New(), uuid.New()

	err := service.TrackInteraction(context.Background(), userID, itemID, interaction.TypeView, nil)
	assert.NoError(t, err)
	assert.Len(t, tracker.events, 1)
	assert.Equal(t, itemID, tracker.events[0].ItemID)

	err = service.TrackInteraction(context.Background(), userID, itemID, "bogus", nil)
	assert.ErrorIs(t, err, interaction.ErrInvalidType)
	assert.Len(t, tracker.events, 1)
}
