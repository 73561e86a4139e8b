// Package recommend contains the domain types for recommendation requests,
// scored results, and transient user preference profiles.
package recommend

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/shared"
)

// Algorithm identifies a recommendation strategy.
type Algorithm string

const (
	AlgorithmPersonalized  Algorithm = "personalized"
	AlgorithmTrending      Algorithm = "trending"
	AlgorithmSimilar       Algorithm = "similar"
	AlgorithmComplementary Algorithm = "complementary"
	AlgorithmPopular       Algorithm = "popular"
	AlgorithmNewArrivals   Algorithm = "new_arrivals"

	// AlgorithmEnsemble tags results produced by merging two strategy
	// outputs; it is never requested directly.
	AlgorithmEnsemble Algorithm = "ensemble"
)

// IsValid checks if the algorithm is a requestable strategy.
func (a Algorithm) IsValid() bool {
	switch a {
	case AlgorithmPersonalized, AlgorithmTrending, AlgorithmSimilar,
		AlgorithmComplementary, AlgorithmPopular, AlgorithmNewArrivals:
		return true
	}
	return false
}

// String returns the string representation of the algorithm.
func (a Algorithm) String() string {
	return string(a)
}

// RequiresItemID reports whether the algorithm needs a reference item.
func (a Algorithm) RequiresItemID() bool {
	return a == AlgorithmSimilar || a == AlgorithmComplementary
}

// Limit bounds.
const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// Request is a normalized recommendation request.
type Request struct {
	Type      Algorithm
	UserID    *uuid.UUID // required for meaningful personalization, optional otherwise
	ItemID    *uuid.UUID // required for similar/complementary
	Limit     int
	Category  string // optional category filter
	Diversity bool   // apply the diversity pass before truncation
}

// Normalize applies limit defaults and caps in place.
func (r *Request) Normalize() {
	if r.Limit <= 0 {
		r.Limit = DefaultLimit
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
}

// Validate checks the request and returns a validation error on failure.
// Validation failures are rejected synchronously and never retried.
func (r *Request) Validate() error {
	if !r.Type.IsValid() {
		return shared.ErrUnknownStrategy
	}
	if r.Type.RequiresItemID() && (r.ItemID == nil || *r.ItemID == uuid.Nil) {
		return shared.ErrMissingItemID
	}
	return nil
}

// CacheKey returns the canonical cache key for this request: the algorithm
// plus every filter field, so two requests collide only when they would
// produce the same result set.
func (r *Request) CacheKey() string {
	var b strings.Builder
	b.WriteString(string(r.Type))
	b.WriteString(":u=")
	if r.UserID != nil {
		b.WriteString(r.UserID.String())
	}
	b.WriteString(":i=")
	if r.ItemID != nil {
		b.WriteString(r.ItemID.String())
	}
	fmt.Fprintf(&b, ":l=%d:c=%s:d=%t", r.Limit, r.Category, r.Diversity)
	return b.String()
}
