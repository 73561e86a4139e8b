package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/catalog"
	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/shared"
	"github.com/wardrobe-hub/wardrobe-recs/internal/infrastructure/persistence/redis"
)

// CachedCatalog routes catalog reads through the multi-tier cache with the
// authoritative repository as the loader. Single entries use the item TTL
// class; list queries use the list TTL class.
type CachedCatalog struct {
	tiers *MultiTier
	repo  catalog.Repository
}

// NewCachedCatalog creates a cached catalog reader.
func NewCachedCatalog(tiers *MultiTier, repo catalog.Repository) *CachedCatalog {
	return &CachedCatalog{tiers: tiers, repo: repo}
}

// GetByID resolves a single entry through the tier chain.
func (c *CachedCatalog) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Entry, error) {
	var entry catalog.Entry
	err := c.tiers.Get(ctx, redis.ItemKey(id.String()), &entry, func(ctx context.Context) (interface{}, error) {
		e, err := c.repo.GetByID(ctx, id)
		if err != nil {
			if shared.IsNotFound(err) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		return e, nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, shared.ErrEntryNotFound
		}
		return nil, err
	}

	return &entry, nil
}

// GetByIDs resolves entries one key at a time so each ID keeps its own
// cache lifetime. Missing IDs are omitted.
func (c *CachedCatalog) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Entry, error) {
	entries := make([]*catalog.Entry, 0, len(ids))
	for _, id := range ids {
		entry, err := c.GetByID(ctx, id)
		if err != nil {
			if shared.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// List resolves a filtered list query through the tier chain under the
// list TTL class.
func (c *CachedCatalog) List(ctx context.Context, filter catalog.Filter) ([]*catalog.Entry, error) {
	key := redis.ListKey(listQueryKey(filter))

	var entries []*catalog.Entry
	err := c.tiers.Get(ctx, key, &entries, func(ctx context.Context) (interface{}, error) {
		return c.repo.List(ctx, filter)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []*catalog.Entry{}, nil
		}
		return nil, err
	}

	return entries, nil
}

// Invalidate drops the cached entry for one item from L1 and L2, and
// bulk-invalidates derived list keys in L2.
func (c *CachedCatalog) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := c.tiers.Invalidate(ctx, redis.ItemKey(id.String())); err != nil {
		return err
	}
	return c.tiers.InvalidatePattern(ctx, redis.PrefixList)
}

// Warm pre-loads the given entries through the tier chain.
func (c *CachedCatalog) Warm(ctx context.Context, ids []uuid.UUID) {
	keys := make([]string, len(ids))
	byKey := make(map[string]uuid.UUID, len(ids))
	for i, id := range ids {
		key := redis.ItemKey(id.String())
		keys[i] = key
		byKey[key] = id
	}

	c.tiers.Warm(ctx, keys, func(key string) Loader {
		id := byKey[key]
		return func(ctx context.Context) (interface{}, error) {
			e, err := c.repo.GetByID(ctx, id)
			if err != nil {
				if shared.IsNotFound(err) {
					return nil, ErrNotFound
				}
				return nil, err
			}
			return e, nil
		}
	})
}

// listQueryKey canonicalizes a filter into a cache key suffix.
func listQueryKey(f catalog.Filter) string {
	return fmt.Sprintf("cat=%s:type=%s:act=%t:after=%d:new=%t:l=%d:o=%d",
		f.Category, f.Type, f.ActiveOnly, f.CreatedAfter.Unix(), f.NewestFirst, f.Limit, f.Offset)
}
