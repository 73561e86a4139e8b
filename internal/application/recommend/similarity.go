package recommend

import (
	"strings"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/catalog"
)

// ══════════════════════════════════════════════════════════════════════════════
// SIMILARITY SCORER
// ══════════════════════════════════════════════════════════════════════════════

// Feature weights. Category identity dominates; tag overlap carries the most
// among the set features; seasonal and style overlap matter least.
const (
	weightCategory = 30.0
	weightTags     = 20.0
	weightColors   = 15.0
	weightOccasion = 15.0
	weightSeasons  = 10.0
	weightStyles   = 10.0
)

// SimilarityScorer computes pairwise feature-overlap scores between two
// catalog entries. Scores fall in [0, 100].
type SimilarityScorer struct{}

// NewSimilarityScorer creates a SimilarityScorer.
func NewSimilarityScorer() *SimilarityScorer {
	return &SimilarityScorer{}
}

// Score returns the similarity between two entries and the names of the
// matched feature groups, for building the recommendation reason.
func (s *SimilarityScorer) Score(a, b *catalog.Entry) (float64, []string) {
	var score float64
	var matched []string

	if a.Category == b.Category {
		score += weightCategory
		matched = append(matched, "category")
	}

	if r := overlapRatio(a.Tags, b.Tags); r > 0 {
		score += r * weightTags
		matched = append(matched, "tags")
	}
	if r := overlapRatio(a.Colors, b.Colors); r > 0 {
		score += r * weightColors
		matched = append(matched, "colors")
	}
	if r := overlapRatio(a.Occasions, b.Occasions); r > 0 {
		score += r * weightOccasion
		matched = append(matched, "occasions")
	}
	if r := overlapRatio(a.Seasons, b.Seasons); r > 0 {
		score += r * weightSeasons
		matched = append(matched, "seasons")
	}
	if r := overlapRatio(a.Styles, b.Styles); r > 0 {
		score += r * weightStyles
		matched = append(matched, "styles")
	}

	return score, matched
}

// Reason renders the matched feature groups into a reason string.
func (s *SimilarityScorer) Reason(matched []string) string {
	if len(matched) == 0 {
		return "similar item"
	}
	return "matches on " + strings.Join(matched, ", ")
}

// overlapRatio returns |intersection| / max(|a|, |b|).
// Either set being empty yields 0.
func overlapRatio(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}

	var common int
	seen := make(map[string]struct{}, len(b))
	for _, v := range b {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		if _, ok := set[v]; ok {
			common++
		}
	}

	maxLen := len(set)
	if len(seen) > maxLen {
		maxLen = len(seen)
	}

	return float64(common) / float64(maxLen)
}
