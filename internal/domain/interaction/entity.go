// Package interaction contains domain entities for user-item interaction
// events: the append-only telemetry that feeds counters, popularity, and
// the personalized/trending strategies.
package interaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Domain errors for interaction package.
var (
	ErrInvalidUserID = errors.New("interaction: invalid user ID")
	ErrInvalidItemID = errors.New("interaction: invalid item ID")
	ErrInvalidType   = errors.New("interaction: invalid interaction type")
)

// Type classifies an interaction event.
type Type string

const (
	TypeView     Type = "view"
	TypeUse      Type = "use"
	TypeFavorite Type = "favorite"
	TypeSearch   Type = "search"
	TypeShare    Type = "share"
)

// IsValid checks if the type is one of the known values.
func (t Type) IsValid() bool {
	switch t {
	case TypeView, TypeUse, TypeFavorite, TypeSearch, TypeShare:
		return true
	}
	return false
}

// String returns the string representation of the type.
func (t Type) String() string {
	return string(t)
}

// Event is a single append-only interaction record.
// Events are buffered in memory and written durably in batches.
type Event struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	ItemID     uuid.UUID
	Type       Type
	Context    map[string]string // optional, e.g. {"source": "search", "query": "linen"}
	OccurredAt time.Time
}

// NewEvent creates a validated interaction event stamped with the current time.
func NewEvent(userID, itemID uuid.UUID, typ Type, context map[string]string) (*Event, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUserID
	}
	if itemID == uuid.Nil {
		return nil, ErrInvalidItemID
	}
	if !typ.IsValid() {
		return nil, ErrInvalidType
	}

	return &Event{
		ID:         uuid.New(),
		UserID:     userID,
		ItemID:     itemID,
		Type:       typ,
		Context:    context,
		OccurredAt: time.Now().UTC(),
	}, nil
}
