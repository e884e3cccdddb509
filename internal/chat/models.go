// Package chat provides the conversation turn service for the TripSentry
// assistant.
package chat

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrSessionNotFound = errors.New("session not found")
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn half. Immutable once appended.
type Message struct {
	Role Role
	Text string
}

// Session is an ordered, caller-owned conversation identified by an opaque
// id. Concurrent turns on the same session id must be serialized by the
// caller; the service does not lock per session.
type Session struct {
	ID        string
	Messages  []Message
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidationError reports malformed turn input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + e.Field + " " + e.Message
}

// GenerationErrorKind classifies generation backend failures.
type GenerationErrorKind string

const (
	KindBackendFailure GenerationErrorKind = "backend_failure"
	KindTimeout        GenerationErrorKind = "timeout"
	KindRateLimited    GenerationErrorKind = "rate_limited"
)

// GenerationError is a failure of the external text-generation backend.
// The service never retries these; retry policy belongs to the caller since
// completions are not idempotent.
type GenerationError struct {
	Kind   GenerationErrorKind
	Detail string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Detail != "" {
		return "generation failed (" + string(e.Kind) + "): " + e.Detail
	}
	return "generation failed (" + string(e.Kind) + ")"
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
