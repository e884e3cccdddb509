// Package icons suggests UI icon names for itinerary labels using the
// text-generation backend.
package icons

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Completer is the single-shot text-generation capability the service needs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Suggestion is an icon recommendation for a label.
type Suggestion struct {
	// IconName is an icon identifier from the Material Design Icons set.
	IconName string `json:"iconName"`

	// Description explains why the icon fits the label.
	Description string `json:"description"`
}

// ValidationError reports malformed suggestion input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + e.Field + " " + e.Message
}

// ServiceConfig holds configuration for the icon suggestion service.
type ServiceConfig struct {
	// Completer is the text-generation backend (required).
	Completer Completer

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service produces icon suggestions for free-text labels.
type Service struct {
	completer Completer
	logger    zerolog.Logger
}

// NewService creates a new icon suggestion service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		completer: cfg.Completer,
		logger:    cfg.Logger,
	}
}

const suggestPromptFormat = `You are an expert UI/UX designer. Your task is to suggest the most relevant icon name for a given label text. The icon name should be a simple, recognizable icon from the Material Design Icons set (https://fonts.google.com/icons). Respond with a JSON object of the form {"iconName": string, "description": string} and nothing else, where description explains why the icon is appropriate for the label.

Label Text: %s`

// Suggest returns an icon recommendation for the given label.
func (s *Service) Suggest(ctx context.Context, label string) (*Suggestion, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, &ValidationError{Field: "label", Message: "must not be empty"}
	}

	reply, err := s.completer.Complete(ctx, fmt.Sprintf(suggestPromptFormat, label))
	if err != nil {
		return nil, err
	}

	suggestion, err := parseSuggestion(reply)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("label", label).
			Msg("unparseable icon suggestion reply")
		return nil, err
	}

	return suggestion, nil
}

// parseSuggestion decodes the model reply, tolerating a markdown code fence
// around the JSON object.
func parseSuggestion(reply string) (*Suggestion, error) {
	trimmed := strings.TrimSpace(reply)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var suggestion Suggestion
	if err := json.Unmarshal([]byte(trimmed), &suggestion); err != nil {
		return nil, fmt.Errorf("decoding suggestion: %w", err)
	}
	if suggestion.IconName == "" {
		return nil, fmt.Errorf("suggestion missing iconName")
	}
	return &suggestion, nil
}
