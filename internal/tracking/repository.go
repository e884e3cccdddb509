package tracking

import (
	"context"
	"time"
)

// Repository defines the interface for location trail persistence.
type Repository interface {
	// Append stores samples for a tourist.
	Append(ctx context.Context, samples []*Sample) error

	// Latest retrieves the most recent sample for a tourist.
	// Returns ErrNoSamples when the tourist has no trail.
	Latest(ctx context.Context, touristID string) (*Sample, error)

	// ListSince retrieves a tourist's samples newer than since, oldest
	// first, up to limit.
	ListSince(ctx context.Context, touristID string, since time.Time, limit int) ([]*Sample, error)

	// TouristIDs lists every tourist with at least one stored sample.
	TouristIDs(ctx context.Context) ([]string, error)

	// PruneBefore deletes samples older than before, across all tourists,
	// and reports how many were removed.
	PruneBefore(ctx context.Context, before time.Time) (int64, error)
}
