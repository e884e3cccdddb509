package itinerary

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewInMemoryRepository creates a new in-memory itinerary repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		entries: make(map[string]*Entry),
	}
}

// GetByTouristAndID retrieves an entry scoped to a tourist.
func (r *InMemoryRepository) GetByTouristAndID(_ context.Context, touristID, entryID string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[entryID]
	if !ok || e.TouristID != touristID {
		return nil, ErrEntryNotFound
	}

	cpy := *e
	return &cpy, nil
}

// List retrieves a tourist's entries ordered by start time.
func (r *InMemoryRepository) List(_ context.Context, touristID string, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*Entry, 0)
	for _, e := range r.entries {
		if e.TouristID == touristID {
			cpy := *e
			items = append(items, &cpy)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Start.Equal(items[j].Start) {
			return items[i].ID < items[j].ID
		}
		return items[i].Start.Before(items[j].Start)
	})

	// Apply cursor: skip entries up to and including the cursor ID
	if opts.Cursor != "" {
		idx := -1
		for i, e := range items {
			if e.ID == opts.Cursor {
				idx = i
				break
			}
		}
		if idx >= 0 {
			items = items[idx+1:]
		}
	}

	result := &ListResult{Items: items}
	if opts.Limit > 0 && len(items) > opts.Limit {
		result.Items = items[:opts.Limit]
		result.NextCursor = items[opts.Limit-1].ID
	}

	return result, nil
}

// Create creates a new entry.
func (r *InMemoryRepository) Create(_ context.Context, entry *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *entry
	r.entries[entry.ID] = &cpy
	return nil
}

// Update updates an existing entry.
func (r *InMemoryRepository) Update(_ context.Context, entry *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[entry.ID]; !ok {
		return ErrEntryNotFound
	}

	cpy := *entry
	r.entries[entry.ID] = &cpy
	return nil
}

// Delete deletes an entry by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return ErrEntryNotFound
	}

	delete(r.entries, id)
	return nil
}
