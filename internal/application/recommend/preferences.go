package recommend

import (
	"context"

	"github.com/google/uuid"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/interaction"
	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/recommend"
)

// ══════════════════════════════════════════════════════════════════════════════
// PREFERENCE EXTRACTOR
// ══════════════════════════════════════════════════════════════════════════════

// maxProfileFavorites bounds how many recent favorites feed a profile.
const maxProfileFavorites = 50

// PreferenceExtractor builds a transient per-user preference profile from
// the user's favorite and interaction history. Profiles live for one
// recommendation call and are never persisted.
type PreferenceExtractor struct {
	catalog CatalogReader
	store   interactionStore
}

// NewPreferenceExtractor creates a PreferenceExtractor.
func NewPreferenceExtractor(catalog CatalogReader, store interactionStore) *PreferenceExtractor {
	return &PreferenceExtractor{catalog: catalog, store: store}
}

// BuildProfile derives a profile from the user's 50 most recent favorites.
// Each favorited entry contributes one unit of weight per feature value it
// carries, so frequency across favorites becomes the weight.
func (p *PreferenceExtractor) BuildProfile(ctx context.Context, userID uuid.UUID) (*recommend.PreferenceProfile, error) {
	profile := recommend.NewPreferenceProfile(userID)

	favoriteIDs, err := p.store.FavoriteItemIDs(ctx, userID, maxProfileFavorites)
	if err != nil {
		return nil, err
	}
	profile.RecentFavoriteIDs = favoriteIDs

	if len(favoriteIDs) > 0 {
		entries, err := p.catalog.GetByIDs(ctx, favoriteIDs)
		if err != nil {
			return nil, err
		}

		for _, e := range entries {
			profile.CategoryWeights[string(e.Category)]++
			accumulate(profile.TagWeights, e.Tags)
			accumulate(profile.ColorWeights, e.Colors)
			accumulate(profile.OccasionWeights, e.Occasions)
			accumulate(profile.SeasonWeights, e.Seasons)
			accumulate(profile.StyleWeights, e.Styles)
		}
	}

	// Recent views and uses provide secondary signal for the id lists.
	recent, err := p.store.RecentByUser(ctx, userID, maxProfileFavorites)
	if err != nil {
		return nil, err
	}
	for _, ev := range recent {
		switch ev.Type {
		case interaction.TypeView:
			profile.RecentViewIDs = append(profile.RecentViewIDs, ev.ItemID)
		case interaction.TypeUse:
			profile.RecentUseIDs = append(profile.RecentUseIDs, ev.ItemID)
		}
	}

	return profile, nil
}

func accumulate(weights map[string]float64, values []string) {
	for _, v := range values {
		weights[v]++
	}
}
