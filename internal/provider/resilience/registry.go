package resilience

import (
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BackendHealth represents the health status of an external backend.
type BackendHealth struct {
	// Name is the backend identifier.
	Name string

	// CircuitState is the current circuit breaker state.
	CircuitState gobreaker.State

	// Counts contains circuit breaker statistics.
	Counts gobreaker.Counts

	// LastSuccessAt is the timestamp of the last successful request.
	LastSuccessAt *time.Time

	// LastFailureAt is the timestamp of the last failed request.
	LastFailureAt *time.Time

	// LastError is the most recent error message, if any.
	LastError string
}

// IsHealthy returns true if the backend is considered healthy.
func (h *BackendHealth) IsHealthy() bool {
	return h.CircuitState == gobreaker.StateClosed
}

// IsDegraded returns true if the backend is in a degraded state (half-open).
func (h *BackendHealth) IsDegraded() bool {
	return h.CircuitState == gobreaker.StateHalfOpen
}

// IsUnhealthy returns true if the backend is unhealthy (circuit open).
func (h *BackendHealth) IsUnhealthy() bool {
	return h.CircuitState == gobreaker.StateOpen
}

// Registry tracks registered backends and their health status. The ops
// status endpoint reads it to report external dependency health.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]*registeredBackend
}

type registeredBackend struct {
	client        *Client
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// NewRegistry creates a new backend registry.
func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[string]*registeredBackend),
	}
}

// Register adds a backend client to the registry.
func (r *Registry) Register(name string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[name] = &registeredBackend{
		client: client,
	}
}

// Unregister removes a backend from the registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.backends, name)
}

// RecordSuccess records a successful request for a backend.
func (r *Registry) RecordSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.backends[name]; ok {
		now := time.Now()
		b.lastSuccessAt = &now
	}
}

// RecordFailure records a failed request for a backend.
func (r *Registry) RecordFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.backends[name]; ok {
		now := time.Now()
		b.lastFailureAt = &now
		if err != nil {
			b.lastError = err.Error()
		}
	}
}

// GetHealth returns the health status of a specific backend.
func (r *Registry) GetHealth(name string) *BackendHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.backends[name]
	if !ok {
		return nil
	}

	return &BackendHealth{
		Name:          name,
		CircuitState:  b.client.CircuitBreakerState(),
		Counts:        b.client.CircuitBreakerCounts(),
		LastSuccessAt: b.lastSuccessAt,
		LastFailureAt: b.lastFailureAt,
		LastError:     b.lastError,
	}
}

// GetAllHealth returns the health status of all registered backends.
func (r *Registry) GetAllHealth() []*BackendHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	health := make([]*BackendHealth, 0, len(r.backends))
	for name, b := range r.backends {
		health = append(health, &BackendHealth{
			Name:          name,
			CircuitState:  b.client.CircuitBreakerState(),
			Counts:        b.client.CircuitBreakerCounts(),
			LastSuccessAt: b.lastSuccessAt,
			LastFailureAt: b.lastFailureAt,
			LastError:     b.lastError,
		})
	}

	return health
}

// BackendCount returns the number of registered backends.
func (r *Registry) BackendCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.backends)
}
