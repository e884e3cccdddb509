package tracking

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu     sync.RWMutex
	trails map[string][]*Sample
}

// NewInMemoryRepository creates a new in-memory trail repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		trails: make(map[string][]*Sample),
	}
}

// Append stores samples for a tourist.
func (r *InMemoryRepository) Append(_ context.Context, samples []*Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range samples {
		cpy := *s
		r.trails[s.TouristID] = append(r.trails[s.TouristID], &cpy)
	}
	for id := range r.trails {
		trail := r.trails[id]
		sort.Slice(trail, func(i, j int) bool {
			return trail[i].Timestamp.Before(trail[j].Timestamp)
		})
	}
	return nil
}

// Latest retrieves the most recent sample for a tourist.
func (r *InMemoryRepository) Latest(_ context.Context, touristID string) (*Sample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	trail := r.trails[touristID]
	if len(trail) == 0 {
		return nil, ErrNoSamples
	}

	cpy := *trail[len(trail)-1]
	return &cpy, nil
}

// ListSince retrieves a tourist's samples newer than since, oldest first.
func (r *InMemoryRepository) ListSince(_ context.Context, touristID string, since time.Time, limit int) ([]*Sample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Sample
	for _, s := range r.trails[touristID] {
		if s.Timestamp.After(since) {
			cpy := *s
			result = append(result, &cpy)
		}
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

// TouristIDs lists every tourist with at least one stored sample.
func (r *InMemoryRepository) TouristIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.trails))
	for id, trail := range r.trails {
		if len(trail) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// PruneBefore deletes samples older than before.
func (r *InMemoryRepository) PruneBefore(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pruned int64
	for id, trail := range r.trails {
		kept := trail[:0]
		for _, s := range trail {
			if s.Timestamp.Before(before) {
				pruned++
				continue
			}
			kept = append(kept, s)
		}
		if len(kept) == 0 {
			delete(r.trails, id)
			continue
		}
		r.trails[id] = kept
	}
	return pruned, nil
}
