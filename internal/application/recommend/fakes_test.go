package recommend

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/catalog"
	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/interaction"
	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/shared"
)

// In-memory fakes for the catalog reader and the interaction store.

type fakeCatalog struct {
	entries []*catalog.Entry

	getCalls  int
	listCalls int
}

func (f *fakeCatalog) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Entry, error) {
	f.getCalls++
	for _, e := range f.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, shared.ErrEntryNotFound
}

func (f *fakeCatalog) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Entry, error) {
	out := make([]*catalog.Entry, 0, len(ids))
	for _, id := range ids {
		if e, err := f.GetByID(ctx, id); err == nil {
			out = append(out, e)
		}
	}
	return out, nil
}

// List mirrors the repository ordering: popularity, favorites, uses, or
// creation time when the filter asks for newest first.
func (f *fakeCatalog) List(ctx context.Context, filter catalog.Filter) ([]*catalog.Entry, error) {
	f.listCalls++

	out := make([]*catalog.Entry, 0, len(f.entries))
	for _, e := range f.entries {
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if filter.Type != "" && e.Type != filter.Type {
			continue
		}
		if filter.ActiveOnly && !e.IsActive {
			continue
		}
		if !filter.CreatedAfter.IsZero() && e.CreatedAt.Before(filter.CreatedAfter) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if filter.NewestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		if out[i].PopularityScore != out[j].PopularityScore {
			return out[i].PopularityScore > out[j].PopularityScore
		}
		if out[i].FavoriteCount != out[j].FavoriteCount {
			return out[i].FavoriteCount > out[j].FavoriteCount
		}
		return out[i].UseCount > out[j].UseCount
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type timedView struct {
	itemID     uuid.UUID
	occurredAt time.Time
}

type fakeStore struct {
	favorites   map[uuid.UUID][]uuid.UUID // userID -> favorited item IDs
	coFavorites map[uuid.UUID][]interaction.ItemCount
	recent      map[uuid.UUID][]*interaction.Event
	views       []timedView
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		favorites:   make(map[uuid.UUID][]uuid.UUID),
		coFavorites: make(map[uuid.UUID][]interaction.ItemCount),
		recent:      make(map[uuid.UUID][]*interaction.Event),
	}
}

func (f *fakeStore) FavoriteItemIDs(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error) {
	ids := f.favorites[userID]
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (f *fakeStore) CoFavoriteCounts(ctx context.Context, userID uuid.UUID, minShared int) ([]interaction.ItemCount, error) {
	return f.coFavorites[userID], nil
}

func (f *fakeStore) RecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*interaction.Event, error) {
	events := f.recent[userID]
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (f *fakeStore) ViewCountsBetween(ctx context.Context, from, to time.Time) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64)
	for _, v := range f.views {
		if !v.occurredAt.Before(from) && v.occurredAt.Before(to) {
			counts[v.itemID]++
		}
	}
	return counts, nil
}

// entryBuilder keeps test setup terse.
type entryOpt func(*catalog.Entry)

func newTestEntry(name string, category catalog.Category, opts ...entryOpt) *catalog.Entry {
	e := &catalog.Entry{
		ID:        uuid.New(),
		Name:      name,
		Category:  category,
		IsActive:  true,
		CreatedAt: time.Now().UTC().Add(-90 * 24 * time.Hour),
		UpdatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func withType(t string) entryOpt         { return func(e *catalog.Entry) { e.Type = t } }
func withTags(tags ...string) entryOpt   { return func(e *catalog.Entry) { e.Tags = tags } }
func withColors(c ...string) entryOpt    { return func(e *catalog.Entry) { e.Colors = c } }
func withOccasions(o ...string) entryOpt { return func(e *catalog.Entry) { e.Occasions = o } }
func withSeasons(s ...string) entryOpt   { return func(e *catalog.Entry) { e.Seasons = s } }
func withStyles(s ...string) entryOpt    { return func(e *catalog.Entry) { e.Styles = s } }
func withPopularity(p float64) entryOpt  { return func(e *catalog.Entry) { e.PopularityScore = p } }
func withFeatured() entryOpt             { return func(e *catalog.Entry) { e.Featured = true } }
func withInactive() entryOpt             { return func(e *catalog.Entry) { e.IsActive = false } }
func withCreatedAt(t time.Time) entryOpt { return func(e *catalog.Entry) { e.CreatedAt = t } }
