// Package tracking stores tourists' reported location trails.
package tracking

import (
	"errors"
	"time"

	"github.com/tripsentry/tripsentry/internal/geo"
)

// Repository errors.
var (
	ErrNoSamples = errors.New("no location samples recorded")
)

// Sample is one reported position for a tourist.
type Sample struct {
	TouristID string
	Point     geo.Point
	Timestamp time.Time
}
