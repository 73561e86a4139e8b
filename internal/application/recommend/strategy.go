// Package recommend implements the recommendation strategies, ensemble
// ranking, and the service facade that callers (the HTTP/GraphQL edge,
// out of scope here) talk to.
package recommend

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/catalog"
	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/interaction"
	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/recommend"
)

// CatalogReader is the read slice of the catalog used by the strategies.
// In production it is the cached catalog, so every lookup flows through the
// multi-tier chain.
type CatalogReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*catalog.Entry, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Entry, error)
	List(ctx context.Context, filter catalog.Filter) ([]*catalog.Entry, error)
}

// Strategy is a self-contained algorithm producing ranked candidates for one
// recommendation request type. Implementations either complete fully or
// return an error - never a silently truncated list.
type Strategy interface {
	Algorithm() recommend.Algorithm
	Recommend(ctx context.Context, req recommend.Request) ([]recommend.ScoredItem, error)
}

// candidatePoolSize is how many entries a strategy pulls from the catalog
// before scoring, so ranking has enough material beyond the request limit.
const candidatePoolSize = 200

// matchesCategory applies the optional request category filter.
func matchesCategory(e *catalog.Entry, category string) bool {
	return category == "" || string(e.Category) == category
}

// activeCandidates filters a candidate pool down to active entries matching
// the optional category filter, excluding the given ID (the reference item).
func activeCandidates(entries []*catalog.Entry, category string, exclude uuid.UUID) []*catalog.Entry {
	out := make([]*catalog.Entry, 0, len(entries))
	for _, e := range entries {
		if !e.IsActive || e.ID == exclude {
			continue
		}
		if !matchesCategory(e, category) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// interactionStore narrows interaction.Store to what the strategies read.
type interactionStore interface {
	FavoriteItemIDs(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error)
	CoFavoriteCounts(ctx context.Context, userID uuid.UUID, minShared int) ([]interaction.ItemCount, error)
	RecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*interaction.Event, error)
	ViewCountsBetween(ctx context.Context, from, to time.Time) (map[uuid.UUID]int64, error)
}
