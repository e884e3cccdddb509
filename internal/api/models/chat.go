package models

// ChatPart is one content fragment of a conversation history message.
type ChatPart struct {
	Text string `json:"text"`
}

// ChatMessage is one message of round-tripped conversation history.
type ChatMessage struct {
	// Role is "user" or "model".
	Role string `json:"role"`

	Content []ChatPart `json:"content"`
}

// ChatRequest is one assistant conversation turn.
type ChatRequest struct {
	// SessionID identifies an ongoing conversation; empty starts a new one.
	SessionID string `json:"sessionId,omitempty"`

	// Message is the user's message (required, non-blank).
	Message string `json:"message"`

	// History is the prior conversation, oldest first. The caller owns it
	// and round-trips it between turns.
	History []ChatMessage `json:"history,omitempty"`
}

// ChatErrorEnvelope is the error body for assistant conversation failures.
type ChatErrorEnvelope struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
