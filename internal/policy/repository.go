package policy

import "context"

// Repository defines the interface for policy storage.
type Repository interface {
	// Get retrieves the stored policy.
	// Returns ErrPolicyNotFound when none has been stored yet.
	Get(ctx context.Context) (*Settings, error)

	// Set creates or replaces the stored policy.
	Set(ctx context.Context, settings *Settings) error
}
