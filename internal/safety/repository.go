package safety

import "context"

// Repository defines persistence for assessment records.
type Repository interface {
	// Create stores a new assessment record.
	Create(ctx context.Context, rec *Record) error

	// Latest retrieves the most recent assessment for a tourist.
	// Returns ErrAssessmentNotFound when the tourist has none.
	Latest(ctx context.Context, touristID string) (*Record, error)

	// ListByTourist retrieves up to limit assessments for a tourist,
	// most recent first.
	ListByTourist(ctx context.Context, touristID string, limit int) ([]*Record, error)
}
