// Package postgres implements the PostgreSQL persistence layer.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE CATALOG ENTRIES
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create catalog_entries table
-- Version: 001

CREATE TABLE IF NOT EXISTS catalog_entries (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(200) NOT NULL,
    category VARCHAR(30) NOT NULL,
    item_type VARCHAR(60) NOT NULL DEFAULT '',

    -- Feature properties driving similarity scoring
    tags TEXT[] NOT NULL DEFAULT '{}',
    colors TEXT[] NOT NULL DEFAULT '{}',
    occasions TEXT[] NOT NULL DEFAULT '{}',
    seasons TEXT[] NOT NULL DEFAULT '{}',
    styles TEXT[] NOT NULL DEFAULT '{}',

    -- Popularity and counters, maintained by the ingestion path
    popularity_score DOUBLE PRECISION NOT NULL DEFAULT 0,
    view_count BIGINT NOT NULL DEFAULT 0,
    use_count BIGINT NOT NULL DEFAULT 0,
    favorite_count BIGINT NOT NULL DEFAULT 0,

    featured BOOLEAN NOT NULL DEFAULT FALSE,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    -- Constraints for data integrity
    CONSTRAINT valid_category CHECK (category IN (
        'tops', 'bottoms', 'dresses', 'outerwear',
        'shoes', 'accessories', 'bags', 'activewear'
    )),
    CONSTRAINT valid_counters CHECK (
        view_count >= 0 AND use_count >= 0 AND favorite_count >= 0
    )
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_catalog_category ON catalog_entries(category);
CREATE INDEX IF NOT EXISTS idx_catalog_item_type ON catalog_entries(item_type);
CREATE INDEX IF NOT EXISTS idx_catalog_popularity ON catalog_entries(popularity_score DESC);
CREATE INDEX IF NOT EXISTS idx_catalog_created_at ON catalog_entries(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_catalog_active_popularity
    ON catalog_entries(popularity_score DESC) WHERE is_active;

-- GIN index for tag filtering in the content-based pass
CREATE INDEX IF NOT EXISTS idx_catalog_tags ON catalog_entries USING GIN(tags);
`

const migration001Down = `
DROP TABLE IF EXISTS catalog_entries;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE INTERACTION EVENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create interaction_events table
-- Version: 002

-- Append-only event log. Rows arrive as flushed batches from the
-- in-memory buffer; nothing updates or deletes them.
CREATE TABLE IF NOT EXISTS interaction_events (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL,
    item_id UUID NOT NULL,
    event_type VARCHAR(20) NOT NULL,
    context JSONB NOT NULL DEFAULT '{}'::jsonb,
    occurred_at TIMESTAMP WITH TIME ZONE NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_event_type CHECK (event_type IN (
        'view', 'use', 'favorite', 'search', 'share'
    ))
);

-- Indexes for the read paths: recent-by-user, per-item aggregates,
-- trending recency windows
CREATE INDEX IF NOT EXISTS idx_events_user_occurred
    ON interaction_events(user_id, occurred_at DESC);
CREATE INDEX IF NOT EXISTS idx_events_item_occurred
    ON interaction_events(item_id, occurred_at DESC);
CREATE INDEX IF NOT EXISTS idx_events_type_occurred
    ON interaction_events(event_type, occurred_at DESC);
CREATE INDEX IF NOT EXISTS idx_events_user_type
    ON interaction_events(user_id, event_type, occurred_at DESC);
`

const migration002Down = `
DROP TABLE IF EXISTS interaction_events;
`
