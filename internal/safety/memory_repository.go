package safety

import (
	"context"
	"sync"
)

// MemoryRepository is an in-memory implementation of Repository for local
// development and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string][]*Record // touristID -> records, newest first
}

// NewMemoryRepository creates a new in-memory assessment repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string][]*Record)}
}

// Create stores a new assessment record.
func (r *MemoryRepository) Create(_ context.Context, rec *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *rec
	r.records[rec.TouristID] = append([]*Record{&clone}, r.records[rec.TouristID]...)
	return nil
}

// Latest retrieves the most recent assessment for a tourist.
func (r *MemoryRepository) Latest(_ context.Context, touristID string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recs := r.records[touristID]
	if len(recs) == 0 {
		return nil, ErrAssessmentNotFound
	}
	clone := *recs[0]
	return &clone, nil
}

// ListByTourist retrieves up to limit assessments, most recent first.
func (r *MemoryRepository) ListByTourist(_ context.Context, touristID string, limit int) ([]*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recs := r.records[touristID]
	if limit <= 0 || limit > len(recs) {
		limit = len(recs)
	}

	out := make([]*Record, 0, limit)
	for _, rec := range recs[:limit] {
		clone := *rec
		out = append(out, &clone)
	}
	return out, nil
}
