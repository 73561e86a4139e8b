package recommend

import (
	"sort"

	"github.com/google/uuid"
)

// PreferenceProfile is a transient, derived view of a user's taste.
// It lives only for the duration of one recommendation call and is never
// persisted.
type PreferenceProfile struct {
	UserID uuid.UUID

	CategoryWeights map[string]float64
	TagWeights      map[string]float64
	ColorWeights    map[string]float64
	OccasionWeights map[string]float64
	SeasonWeights   map[string]float64
	StyleWeights    map[string]float64

	RecentFavoriteIDs []uuid.UUID
	RecentViewIDs     []uuid.UUID
	RecentUseIDs      []uuid.UUID
}

// NewPreferenceProfile returns an empty profile with initialized maps.
func NewPreferenceProfile(userID uuid.UUID) *PreferenceProfile {
	return &PreferenceProfile{
		UserID:          userID,
		CategoryWeights: make(map[string]float64),
		TagWeights:      make(map[string]float64),
		ColorWeights:    make(map[string]float64),
		OccasionWeights: make(map[string]float64),
		SeasonWeights:   make(map[string]float64),
		StyleWeights:    make(map[string]float64),
	}
}

// IsEmpty reports whether the profile carries no signal at all.
func (p *PreferenceProfile) IsEmpty() bool {
	return len(p.RecentFavoriteIDs) == 0 && len(p.CategoryWeights) == 0
}

// HasFavorited reports whether the given item is among the recent favorites.
func (p *PreferenceProfile) HasFavorited(itemID uuid.UUID) bool {
	for _, id := range p.RecentFavoriteIDs {
		if id == itemID {
			return true
		}
	}
	return false
}

// TopCategories returns the n highest-weighted categories.
// Ties break alphabetically so the cut is deterministic.
func (p *PreferenceProfile) TopCategories(n int) []string {
	return topKeys(p.CategoryWeights, n)
}

// TopTags returns the n highest-weighted tags.
func (p *PreferenceProfile) TopTags(n int) []string {
	return topKeys(p.TagWeights, n)
}

func topKeys(weights map[string]float64, n int) []string {
	keys := make([]string, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if weights[keys[i]] != weights[keys[j]] {
			return weights[keys[i]] > weights[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if n > 0 && len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
