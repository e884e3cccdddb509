// Package itinerary provides stored itinerary management for tourists.
package itinerary

import (
	"errors"
	"time"

	"github.com/tripsentry/tripsentry/internal/geo"
)

// Repository errors.
var (
	ErrEntryNotFound = errors.New("itinerary entry not found")
)

// Validation constants.
const (
	MaxLocationLength = 120
)

// Entry is a stored itinerary entry.
type Entry struct {
	ID        string
	TouristID string

	// Location is the human-readable place label.
	Location string

	// Point optionally pins the entry to exact coordinates. Entries without
	// a point rely on the place directory for label resolution.
	Point *geo.Point

	Start     time.Time
	End       time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
