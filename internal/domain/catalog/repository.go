package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows List queries. Zero values mean "no constraint".
type Filter struct {
	Category     Category
	Type         string
	ActiveOnly   bool
	CreatedAfter time.Time

	// NewestFirst orders results by creation time instead of popularity,
	// so a bounded fetch keeps the most recent entries.
	NewestFirst bool

	Limit  int
	Offset int
}

// Repository defines the interface for catalog persistence.
// This interface is implemented by the infrastructure layer; it also serves
// as the authoritative store behind the multi-tier cache.
type Repository interface {
	// Lookup operations

	// GetByID returns a single entry. Returns a not-found error for
	// unknown or inactive-filtered IDs.
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)

	// GetByIDs returns entries for the given IDs. Missing IDs are
	// silently omitted; order follows the input where possible.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Entry, error)

	// List returns entries matching the filter with pagination.
	List(ctx context.Context, filter Filter) ([]*Entry, error)

	// Counter operations, driven by the interaction-ingestion path.

	// IncrementViewCount bumps the view counter for an entry.
	IncrementViewCount(ctx context.Context, id uuid.UUID) error

	// IncrementUseCount bumps the use counter for an entry.
	IncrementUseCount(ctx context.Context, id uuid.UUID) error

	// RecomputePopularity recalculates the popularity score from the
	// entry's counters and recency. Invoked on a sampled subset of
	// counter updates to bound cost.
	RecomputePopularity(ctx context.Context, id uuid.UUID) error
}
