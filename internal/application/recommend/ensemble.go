package recommend

import (
	"github.com/google/uuid"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/recommend"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENSEMBLE RANKER
// ══════════════════════════════════════════════════════════════════════════════

// Fixed ensemble weights for the personalized strategy: the collaborative
// pass carries more signal than the content-based pass.
const (
	WeightCollaborative = 0.6
	WeightContentBased  = 0.4
)

// EnsembleRanker merges multiple strategy outputs with fixed weights and
// applies diversity constraints. It is stateless and safe for concurrent use.
type EnsembleRanker struct{}

// NewEnsembleRanker creates an EnsembleRanker.
func NewEnsembleRanker() *EnsembleRanker {
	return &EnsembleRanker{}
}

// Merge combines two scored lists with the given weights. An entry present
// in both lists receives the sum of its weighted constituent scores and is
// retagged as "ensemble"; entries in one list keep their single weighted
// score. The result is sorted score-descending (stable) and truncated to
// limit entries.
func (r *EnsembleRanker) Merge(a, b []recommend.ScoredItem, wa, wb float64, limit int) []recommend.ScoredItem {
	merged := make([]recommend.ScoredItem, 0, len(a)+len(b))
	index := make(map[uuid.UUID]int, len(a))

	for _, item := range a {
		item.Score *= wa
		index[item.Entry.ID] = len(merged)
		merged = append(merged, item)
	}

	for _, item := range b {
		if i, ok := index[item.Entry.ID]; ok {
			merged[i].Score += item.Score * wb
			merged[i].Algorithm = recommend.AlgorithmEnsemble
			continue
		}
		item.Score *= wb
		merged = append(merged, item)
	}

	recommend.SortByScore(merged)
	return recommend.Truncate(merged, limit)
}

// Diversify greedily reorders the top of the list to prefer unseen
// (category, type) pairs, then fills the remaining slots in original score
// order. It never introduces items absent from the input, never duplicates,
// and its output is deterministic for identical input ordering: ties between
// equally novel candidates keep input order.
func (r *EnsembleRanker) Diversify(items []recommend.ScoredItem, limit int) []recommend.ScoredItem {
	if limit <= 0 || len(items) <= limit {
		return recommend.Truncate(items, limit)
	}

	picked := make([]recommend.ScoredItem, 0, limit)
	used := make([]bool, len(items))
	seen := make(map[string]struct{}, limit)

	// First pass: highest-scored entries with unseen category/type pairs.
	for i, item := range items {
		if len(picked) >= limit {
			break
		}
		key := string(item.Entry.Category) + "/" + item.Entry.Type
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		used[i] = true
		picked = append(picked, item)
	}

	// Second pass: fill remaining slots by original score order.
	for i, item := range items {
		if len(picked) >= limit {
			break
		}
		if used[i] {
			continue
		}
		used[i] = true
		picked = append(picked, item)
	}

	return picked
}
