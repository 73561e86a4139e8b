// Package catalog contains domain entities and business logic for
// wardrobe catalog entries - the items the recommendation engine ranks.
// This is a pure domain layer with zero external dependencies beyond uuid.
package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Domain errors for catalog package.
var (
	ErrInvalidEntryID  = errors.New("catalog: invalid entry ID")
	ErrEmptyName       = errors.New("catalog: name cannot be empty")
	ErrInvalidCategory = errors.New("catalog: invalid category")
)

// Category represents a top-level wardrobe category.
type Category string

const (
	CategoryTops        Category = "tops"
	CategoryBottoms     Category = "bottoms"
	CategoryDresses     Category = "dresses"
	CategoryOuterwear   Category = "outerwear"
	CategoryShoes       Category = "shoes"
	CategoryAccessories Category = "accessories"
	CategoryBags        Category = "bags"
	CategoryActivewear  Category = "activewear"
)

// IsValid checks if the category is one of the known values.
func (c Category) IsValid() bool {
	switch c {
	case CategoryTops, CategoryBottoms, CategoryDresses, CategoryOuterwear,
		CategoryShoes, CategoryAccessories, CategoryBags, CategoryActivewear:
		return true
	}
	return false
}

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}

// AllCategories returns every known category.
func AllCategories() []Category {
	return []Category{
		CategoryTops, CategoryBottoms, CategoryDresses, CategoryOuterwear,
		CategoryShoes, CategoryAccessories, CategoryBags, CategoryActivewear,
	}
}

// Entry represents a single catalog item.
//
// Identity fields are immutable after creation. Counters and the popularity
// score are mutated only through the interaction-ingestion path; any mutation
// is followed by cache invalidation for the entry's key.
type Entry struct {
	ID       uuid.UUID
	Name     string
	Category Category
	Type     string // free-form subtype within the category, e.g. "t-shirt", "sneakers"

	// Feature properties driving similarity scoring.
	Tags      []string
	Colors    []string
	Occasions []string
	Seasons   []string
	Styles    []string

	// Popularity and counters, maintained asynchronously.
	PopularityScore float64
	ViewCount       int64
	UseCount        int64
	FavoriteCount   int64

	Featured  bool
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewEntry creates a new active catalog entry.
func NewEntry(id uuid.UUID, name string, category Category) (*Entry, error) {
	if id == uuid.Nil {
		return nil, ErrInvalidEntryID
	}
	if name == "" {
		return nil, ErrEmptyName
	}
	if !category.IsValid() {
		return nil, ErrInvalidCategory
	}

	now := time.Now().UTC()
	return &Entry{
		ID:        id,
		Name:      name,
		Category:  category,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsNewArrival reports whether the entry was created within the given window.
func (e *Entry) IsNewArrival(since time.Time) bool {
	return !e.CreatedAt.Before(since)
}

// Deactivate marks the entry as inactive so strategies stop surfacing it.
func (e *Entry) Deactivate() {
	e.IsActive = false
	e.UpdatedAt = time.Now().UTC()
}
