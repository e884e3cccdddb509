package policy

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	settings *Settings
}

// NewInMemoryRepository creates a new in-memory policy repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Get retrieves the stored policy.
func (r *InMemoryRepository) Get(_ context.Context) (*Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.settings == nil {
		return nil, ErrPolicyNotFound
	}

	cpy := *r.settings
	return &cpy, nil
}

// Set creates or replaces the stored policy.
func (r *InMemoryRepository) Set(_ context.Context, settings *Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *settings
	r.settings = &cpy
	return nil
}
