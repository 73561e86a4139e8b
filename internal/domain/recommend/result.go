package recommend

import (
	"sort"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/catalog"
)

// ScoredItem is one ranked recommendation: a catalog entry with the score
// (0-100), a human-readable reason, and the algorithm that produced it.
type ScoredItem struct {
	Entry     *catalog.Entry
	Score     float64
	Reason    string
	Algorithm Algorithm
}

// Response is the result of one recommendation request.
type Response struct {
	Items     []ScoredItem
	Algorithm Algorithm
	ElapsedMs int64
	Total     int
}

// SortByScore orders items score-descending. The sort is stable: ties keep
// their original candidate order.
func SortByScore(items []ScoredItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
}

// Truncate caps the list at limit without copying.
func Truncate(items []ScoredItem, limit int) []ScoredItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
