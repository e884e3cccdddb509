package itinerary

import "context"

// ListOptions contains options for listing itinerary entries.
type ListOptions struct {
	Limit  int
	Cursor string
}

// ListResult contains the results of listing itinerary entries.
type ListResult struct {
	Items      []*Entry
	NextCursor string
}

// Repository defines the interface for itinerary persistence.
type Repository interface {
	// GetByTouristAndID retrieves an entry scoped to a tourist.
	// Returns ErrEntryNotFound if the entry doesn't exist or belongs to
	// another tourist.
	GetByTouristAndID(ctx context.Context, touristID, entryID string) (*Entry, error)

	// List retrieves a tourist's entries ordered by start time.
	List(ctx context.Context, touristID string, opts ListOptions) (*ListResult, error)

	// Create creates a new entry.
	Create(ctx context.Context, entry *Entry) error

	// Update updates an existing entry.
	Update(ctx context.Context, entry *Entry) error

	// Delete deletes an entry by ID.
	Delete(ctx context.Context, id string) error
}
