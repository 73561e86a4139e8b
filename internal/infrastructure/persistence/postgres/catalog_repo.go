// Package postgres implements the PostgreSQL persistence layer.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/catalog"
	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// entryColumns is the canonical select list for catalog_entries.
const entryColumns = `
	id, name, category, item_type,
	tags, colors, occasions, seasons, styles,
	popularity_score, view_count, use_count, favorite_count,
	featured, is_active, created_at, updated_at
`

// CatalogRepository implements catalog.Repository for PostgreSQL.
// It is the authoritative store (L3) behind the multi-tier cache.
type CatalogRepository struct {
	conn *Connection
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(conn *Connection) *CatalogRepository {
	return &CatalogRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Lookup Operations
// ─────────────────────────────────────────────────────────────────────────────

// GetByID returns a catalog entry by ID.
func (r *CatalogRepository) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM catalog_entries WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	entry, err := r.scanEntry(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get catalog entry: %w", err)
	}

	return entry, nil
}

// GetByIDs returns catalog entries for the given IDs. Missing IDs are omitted.
func (r *CatalogRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Entry, error) {
	if len(ids) == 0 {
		return []*catalog.Entry{}, nil
	}

	query := `SELECT ` + entryColumns + ` FROM catalog_entries WHERE id = ANY($1)`

	rows, err := r.conn.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog entries: %w", err)
	}
	defer rows.Close()

	entries, err := r.scanEntries(rows)
	if err != nil {
		return nil, err
	}

	// Preserve input order where possible.
	byID := make(map[uuid.UUID]*catalog.Entry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	ordered := make([]*catalog.Entry, 0, len(entries))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			ordered = append(ordered, e)
		}
	}

	return ordered, nil
}

// List returns catalog entries matching the filter with pagination.
func (r *CatalogRepository) List(ctx context.Context, filter catalog.Filter) ([]*catalog.Entry, error) {
	var conditions []string
	var args []interface{}

	if filter.Category != "" {
		args = append(args, string(filter.Category))
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("item_type = $%d", len(args)))
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active")
	}
	if !filter.CreatedAfter.IsZero() {
		args = append(args, filter.CreatedAfter)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}

	query := `SELECT ` + entryColumns + ` FROM catalog_entries`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	if filter.NewestFirst {
		query += " ORDER BY created_at DESC, featured DESC"
	} else {
		query += " ORDER BY popularity_score DESC, favorite_count DESC, use_count DESC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog entries: %w", err)
	}
	defer rows.Close()

	return r.scanEntries(rows)
}

// ─────────────────────────────────────────────────────────────────────────────
// Counter Operations
// ─────────────────────────────────────────────────────────────────────────────

// IncrementViewCount bumps the view counter for an entry.
func (r *CatalogRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	return r.incrementCounter(ctx, id, "view_count")
}

// IncrementUseCount bumps the use counter for an entry.
func (r *CatalogRepository) IncrementUseCount(ctx context.Context, id uuid.UUID) error {
	return r.incrementCounter(ctx, id, "use_count")
}

func (r *CatalogRepository) incrementCounter(ctx context.Context, id uuid.UUID, column string) error {
	query := fmt.Sprintf(`
		UPDATE catalog_entries
		SET %s = %s + 1, updated_at = NOW()
		WHERE id = $1
	`, column, column)

	result, err := r.conn.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", column, err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrEntryNotFound
	}

	return nil
}

// RecomputePopularity recalculates the popularity score from the entry's
// counters plus a recency boost for entries created in the last 30 days.
// Weights: favorites dominate, uses matter more than views.
func (r *CatalogRepository) RecomputePopularity(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE catalog_entries
		SET popularity_score = LEAST(100,
				view_count * 0.1 + use_count * 0.5 + favorite_count * 2.0
				+ CASE WHEN created_at >= NOW() - INTERVAL '30 days' THEN 10 ELSE 0 END
				+ CASE WHEN featured THEN 5 ELSE 0 END
			),
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.conn.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to recompute popularity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrEntryNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *CatalogRepository) scanEntry(row pgx.Row) (*catalog.Entry, error) {
	var e catalog.Entry
	var category string

	err := row.Scan(
		&e.ID,
		&e.Name,
		&category,
		&e.Type,
		&e.Tags,
		&e.Colors,
		&e.Occasions,
		&e.Seasons,
		&e.Styles,
		&e.PopularityScore,
		&e.ViewCount,
		&e.UseCount,
		&e.FavoriteCount,
		&e.Featured,
		&e.IsActive,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Category = catalog.Category(category)
	return &e, nil
}

func (r *CatalogRepository) scanEntries(rows pgx.Rows) ([]*catalog.Entry, error) {
	var entries []*catalog.Entry

	for rows.Next() {
		entry, err := r.scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if entries == nil {
		entries = []*catalog.Entry{}
	}
	return entries, nil
}
