package chat

import "context"

// Repository defines server-side persistence of conversation sessions.
type Repository interface {
	// Get retrieves a session with its ordered messages.
	// Returns ErrSessionNotFound when the id is unknown.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// AppendTurn appends a completed user+assistant turn to a session,
	// creating the session when it does not exist yet. Both messages are
	// persisted together or not at all.
	AppendTurn(ctx context.Context, sessionID string, user, assistant Message) error
}
