package chat

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository is an in-memory implementation of Repository for local
// development and tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryRepository creates a new in-memory session repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string]*Session)}
}

// Get retrieves a session with its ordered messages.
func (r *MemoryRepository) Get(_ context.Context, sessionID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	clone := &Session{
		ID:        s.ID,
		Messages:  make([]Message, len(s.Messages)),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	copy(clone.Messages, s.Messages)
	return clone, nil
}

// AppendTurn appends a completed turn, creating the session when absent.
func (r *MemoryRepository) AppendTurn(_ context.Context, sessionID string, user, assistant Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	s, ok := r.sessions[sessionID]
	if !ok {
		s = &Session{ID: sessionID, CreatedAt: now}
		r.sessions[sessionID] = s
	}
	s.Messages = append(s.Messages, user, assistant)
	s.UpdatedAt = now
	return nil
}
