package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Generator is the text-generation backend capability: it receives the full
// ordered history (ending with the newest user message) and returns the
// assistant's reply.
type Generator interface {
	Generate(ctx context.Context, history []Message) (string, error)
}

// ServiceConfig holds configuration for the conversation service.
type ServiceConfig struct {
	// Generator is the text-generation backend (required).
	Generator Generator

	// Repository optionally records completed turns server-side, keyed by
	// session id. The round-tripped history remains the source of truth;
	// recording failures are logged, not surfaced.
	Repository Repository

	// Logger for service operations.
	Logger zerolog.Logger

	// MaxHistoryMessages bounds the history forwarded to the backend; older
	// messages are dropped from the front. Default: 40.
	MaxHistoryMessages int

	// GenerateTimeout bounds the backend call when the incoming context has
	// no earlier deadline. Default: 30 seconds.
	GenerateTimeout time.Duration
}

// Service orchestrates conversation turns. Each turn operates on a working
// copy of the caller-passed history: either both the user and assistant
// messages are appended to the returned history, or neither is.
type Service struct {
	generator       Generator
	repo            Repository
	logger          zerolog.Logger
	maxHistory      int
	generateTimeout time.Duration
}

// NewService creates a new conversation service.
func NewService(cfg ServiceConfig) *Service {
	maxHistory := cfg.MaxHistoryMessages
	if maxHistory <= 0 {
		maxHistory = 40
	}

	generateTimeout := cfg.GenerateTimeout
	if generateTimeout <= 0 {
		generateTimeout = 30 * time.Second
	}

	return &Service{
		generator:       cfg.Generator,
		repo:            cfg.Repository,
		logger:          cfg.Logger,
		maxHistory:      maxHistory,
		generateTimeout: generateTimeout,
	}
}

// TurnInput is one conversation turn request.
type TurnInput struct {
	// SessionID is the opaque session identifier; empty for a new session.
	SessionID string

	// UserText is the user's message. Must be non-empty after trimming.
	UserText string

	// History is the caller-owned prior conversation, oldest first.
	History []Message
}

// TurnResult is the outcome of a successful turn.
type TurnResult struct {
	SessionID     string
	AssistantText string
	History       []Message
}

// SendTurn validates the user text, forwards the working history to the
// generation backend and returns the assistant reply with the updated
// history. On backend failure nothing caller-visible is mutated and the
// error is a *GenerationError; the backend is never called for invalid
// input (*ValidationError).
func (s *Service) SendTurn(ctx context.Context, in TurnInput) (*TurnResult, error) {
	if strings.TrimSpace(in.UserText) == "" {
		return nil, &ValidationError{Field: "message", Message: "must not be empty"}
	}

	sessionID := in.SessionID
	if sessionID == "" {
		sessionID = "ses_" + uuid.New().String()[:22]
	}

	working := boundedCopy(in.History, s.maxHistory)
	userMsg := Message{Role: RoleUser, Text: in.UserText}
	working = append(working, userMsg)

	genCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.generateTimeout)
		defer cancel()
	}

	reply, err := s.generator.Generate(genCtx, working)
	if err != nil {
		genErr := asGenerationError(err)
		s.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Str("kind", string(genErr.Kind)).
			Msg("generation backend failed")
		return nil, genErr
	}

	assistantMsg := Message{Role: RoleAssistant, Text: reply}
	working = append(working, assistantMsg)

	if s.repo != nil {
		// Both halves of the turn are recorded together or not at all.
		if err := s.repo.AppendTurn(ctx, sessionID, userMsg, assistantMsg); err != nil {
			s.logger.Warn().
				Err(err).
				Str("session_id", sessionID).
				Msg("failed to record conversation turn")
		}
	}

	return &TurnResult{
		SessionID:     sessionID,
		AssistantText: reply,
		History:       working,
	}, nil
}

// boundedCopy returns a copy of history limited to the newest max messages,
// with room for the turn being added.
func boundedCopy(history []Message, max int) []Message {
	if len(history) > max {
		history = history[len(history)-max:]
	}
	working := make([]Message, len(history), len(history)+2)
	copy(working, history)
	return working
}

// asGenerationError normalizes backend errors into *GenerationError.
func asGenerationError(err error) *GenerationError {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &GenerationError{Kind: KindTimeout, Detail: "generation backend timed out", Err: err}
	}
	return &GenerationError{Kind: KindBackendFailure, Detail: err.Error(), Err: err}
}
