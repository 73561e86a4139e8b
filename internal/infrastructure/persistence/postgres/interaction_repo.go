// Package postgres implements the PostgreSQL persistence layer.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/interaction"
	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// INTERACTION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// InteractionRepository implements interaction.Store for PostgreSQL.
// It is the durable store behind the ingestion buffer; all read APIs query
// it directly, never the in-memory buffer.
type InteractionRepository struct {
	conn *Connection
}

// NewInteractionRepository creates a new InteractionRepository.
func NewInteractionRepository(conn *Connection) *InteractionRepository {
	return &InteractionRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Write Path
// ─────────────────────────────────────────────────────────────────────────────

// InsertBatch writes all events as a single multi-row INSERT.
// The whole batch lands atomically; a transient error leaves the store
// unchanged so the identical batch can be retried.
func (r *InteractionRepository) InsertBatch(ctx context.Context, events []*interaction.Event) error {
	if len(events) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`
		INSERT INTO interaction_events (id, user_id, item_id, event_type, context, occurred_at)
		VALUES `)

	args := make([]interface{}, 0, len(events)*6)
	for i, ev := range events {
		ctxJSON, err := json.Marshal(ev.Context)
		if err != nil {
			return fmt.Errorf("failed to marshal event context: %w", err)
		}
		if ev.Context == nil {
			ctxJSON = []byte("{}")
		}

		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 6
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6)
		args = append(args, ev.ID, ev.UserID, ev.ItemID, string(ev.Type), ctxJSON, ev.OccurredAt)
	}

	if _, err := r.conn.Exec(ctx, sb.String(), args...); err != nil {
		return shared.WrapError("interaction", "InsertBatch",
			shared.ErrBackendUnavailable, "batch insert failed", err)
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Read Path
// ─────────────────────────────────────────────────────────────────────────────

// RecentByUser returns the user's most recent events, newest first.
func (r *InteractionRepository) RecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*interaction.Event, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, item_id, event_type, context, occurred_at
		FROM interaction_events
		WHERE user_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`

	rows, err := r.conn.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent interactions: %w", err)
	}
	defer rows.Close()

	return r.scanEvents(rows)
}

// FavoriteItemIDs returns the IDs of the user's most recently favorited
// items, newest first.
func (r *InteractionRepository) FavoriteItemIDs(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT item_id, MAX(occurred_at) AS last_favorited
		FROM interaction_events
		WHERE user_id = $1 AND event_type = 'favorite'
		GROUP BY item_id
		ORDER BY last_favorited DESC
		LIMIT $2
	`

	rows, err := r.conn.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorite items: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		var last time.Time
		if err := rows.Scan(&id, &last); err != nil {
			return nil, fmt.Errorf("failed to scan favorite item: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// CoFavoriteCounts finds users sharing at least minShared favorited items
// with the given user, then counts the distinct co-favoriting users per
// candidate item, excluding the user's own favorites.
func (r *InteractionRepository) CoFavoriteCounts(ctx context.Context, userID uuid.UUID, minShared int) ([]interaction.ItemCount, error) {
	if minShared <= 0 {
		minShared = 2
	}

	query := `
		WITH my_favorites AS (
			SELECT DISTINCT item_id
			FROM interaction_events
			WHERE user_id = $1 AND event_type = 'favorite'
		),
		similar_users AS (
			SELECT e.user_id
			FROM interaction_events e
			JOIN my_favorites f ON f.item_id = e.item_id
			WHERE e.event_type = 'favorite' AND e.user_id <> $1
			GROUP BY e.user_id
			HAVING COUNT(DISTINCT e.item_id) >= $2
		)
		SELECT e.item_id, COUNT(DISTINCT e.user_id) AS co_users
		FROM interaction_events e
		JOIN similar_users s ON s.user_id = e.user_id
		WHERE e.event_type = 'favorite'
		  AND e.item_id NOT IN (SELECT item_id FROM my_favorites)
		GROUP BY e.item_id
		ORDER BY co_users DESC
	`

	rows, err := r.conn.Query(ctx, query, userID, minShared)
	if err != nil {
		return nil, fmt.Errorf("failed to query co-favorites: %w", err)
	}
	defer rows.Close()

	return r.scanItemCounts(rows)
}

// TopItemsByUser returns the items the user interacted with most.
func (r *InteractionRepository) TopItemsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]interaction.ItemCount, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT item_id, COUNT(*) AS cnt
		FROM interaction_events
		WHERE user_id = $1
		GROUP BY item_id
		ORDER BY cnt DESC
		LIMIT $2
	`

	rows, err := r.conn.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top items by user: %w", err)
	}
	defer rows.Close()

	return r.scanItemCounts(rows)
}

// ItemStats returns aggregate counts for a single item.
func (r *InteractionRepository) ItemStats(ctx context.Context, itemID uuid.UUID) (*interaction.ItemStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE event_type = 'view'),
			COUNT(*) FILTER (WHERE event_type = 'use'),
			COUNT(*) FILTER (WHERE event_type = 'favorite'),
			COUNT(*) FILTER (WHERE event_type = 'share'),
			COALESCE(MAX(occurred_at), 'epoch'::timestamptz)
		FROM interaction_events
		WHERE item_id = $1
	`

	stats := &interaction.ItemStats{ItemID: itemID}
	err := r.conn.QueryRow(ctx, query, itemID).Scan(
		&stats.ViewCount,
		&stats.UseCount,
		&stats.FavoriteCount,
		&stats.ShareCount,
		&stats.LastSeenAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query item stats: %w", err)
	}

	return stats, nil
}

// TopItems returns the most-interacted items since the given time.
func (r *InteractionRepository) TopItems(ctx context.Context, since time.Time, limit int) ([]interaction.ItemCount, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT item_id, COUNT(*) AS cnt
		FROM interaction_events
		WHERE occurred_at >= $1
		GROUP BY item_id
		ORDER BY cnt DESC
		LIMIT $2
	`

	rows, err := r.conn.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top items: %w", err)
	}
	defer rows.Close()

	return r.scanItemCounts(rows)
}

// ViewCountsBetween returns per-item view counts for events with
// from <= occurred_at < to. Backs the trending recency windows.
func (r *InteractionRepository) ViewCountsBetween(ctx context.Context, from, to time.Time) (map[uuid.UUID]int64, error) {
	query := `
		SELECT item_id, COUNT(*) AS cnt
		FROM interaction_events
		WHERE event_type = 'view' AND occurred_at >= $1 AND occurred_at < $2
		GROUP BY item_id
	`

	rows, err := r.conn.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query view counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int64)
	for rows.Next() {
		var id uuid.UUID
		var cnt int64
		if err := rows.Scan(&id, &cnt); err != nil {
			return nil, fmt.Errorf("failed to scan view count: %w", err)
		}
		counts[id] = cnt
	}

	return counts, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *InteractionRepository) scanEvents(rows pgx.Rows) ([]*interaction.Event, error) {
	var events []*interaction.Event

	for rows.Next() {
		var ev interaction.Event
		var typ string
		var ctxJSON []byte

		err := rows.Scan(&ev.ID, &ev.UserID, &ev.ItemID, &typ, &ctxJSON, &ev.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		ev.Type = interaction.Type(typ)
		if len(ctxJSON) > 0 {
			if err := json.Unmarshal(ctxJSON, &ev.Context); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event context: %w", err)
			}
		}

		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if events == nil {
		events = []*interaction.Event{}
	}
	return events, nil
}

func (r *InteractionRepository) scanItemCounts(rows pgx.Rows) ([]interaction.ItemCount, error) {
	var counts []interaction.ItemCount

	for rows.Next() {
		var ic interaction.ItemCount
		if err := rows.Scan(&ic.ItemID, &ic.Count); err != nil {
			return nil, fmt.Errorf("failed to scan item count: %w", err)
		}
		counts = append(counts, ic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if counts == nil {
		counts = []interaction.ItemCount{}
	}
	return counts, nil
}
