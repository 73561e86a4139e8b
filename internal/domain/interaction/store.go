package interaction

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ItemCount pairs an item with an aggregate count, ordered by the query.
type ItemCount struct {
	ItemID uuid.UUID
	Count  int64
}

// ItemStats aggregates interaction counts for a single item.
type ItemStats struct {
	ItemID        uuid.UUID
	ViewCount     int64
	UseCount      int64
	FavoriteCount int64
	ShareCount    int64
	LastSeenAt    time.Time
}

// Store defines the interface for durable interaction-event persistence.
// Writes arrive as batches from the in-memory buffer; reads go straight to
// the durable store, never to the buffer, so just-flushed events become
// visible only after the flush completes.
type Store interface {
	// InsertBatch writes all events as a single durable batch.
	// Either the whole batch lands or the call errors; a transient error
	// means the caller may safely retry the identical batch.
	InsertBatch(ctx context.Context, events []*Event) error

	// RecentByUser returns the user's most recent events, newest first.
	RecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Event, error)

	// FavoriteItemIDs returns the IDs of the user's most recently
	// favorited items, newest first, capped at limit.
	FavoriteItemIDs(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error)

	// CoFavoriteCounts implements the collaborative pass: among users who
	// share at least minShared favorited items with the given user, count
	// the distinct co-favoriting users per candidate item. The user's own
	// favorites are excluded from the result.
	CoFavoriteCounts(ctx context.Context, userID uuid.UUID, minShared int) ([]ItemCount, error)

	// TopItemsByUser returns the items the user interacted with most,
	// by total event count descending.
	TopItemsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]ItemCount, error)

	// ItemStats returns aggregate counts for one item.
	ItemStats(ctx context.Context, itemID uuid.UUID) (*ItemStats, error)

	// TopItems returns the most-interacted items since the given time,
	// by event count descending.
	TopItems(ctx context.Context, since time.Time, limit int) ([]ItemCount, error)

	// ViewCountsBetween returns per-item view counts for events with
	// from <= occurred_at < to. Backs the trending recency windows.
	ViewCountsBetween(ctx context.Context, from, to time.Time) (map[uuid.UUID]int64, error)
}
