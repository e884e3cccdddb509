package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/tripsentry/tripsentry/internal/api/models"
	"github.com/tripsentry/tripsentry/internal/api/response"
	"github.com/tripsentry/tripsentry/internal/chat"
)

// ChatHandler handles the assistant conversation endpoint.
type ChatHandler struct {
	service *chat.Service
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(service *chat.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

// Chat handles POST /v1/chat - one assistant conversation turn. The reply is
// plain text; failures use the {error, details} envelope rather than
// Problem+JSON because the assistant UI consumes this shape directly.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var input models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeChatError(w, r, http.StatusBadRequest, models.ChatErrorEnvelope{
			Error: "invalid JSON body",
		})
		return
	}

	result, err := h.service.SendTurn(r.Context(), chat.TurnInput{
		SessionID: input.SessionID,
		UserText:  input.Message,
		History:   toChatHistory(input.History),
	})
	if err != nil {
		var valErr *chat.ValidationError
		if errors.As(err, &valErr) {
			writeChatError(w, r, http.StatusBadRequest, models.ChatErrorEnvelope{
				Error:   "invalid request",
				Details: valErr.Field + " " + valErr.Message,
			})
			return
		}

		var genErr *chat.GenerationError
		if errors.As(err, &genErr) {
			writeChatError(w, r, http.StatusInternalServerError, models.ChatErrorEnvelope{
				Error:   "An error occurred during the conversation.",
				Details: genErr.Detail,
			})
			return
		}

		writeChatError(w, r, http.StatusInternalServerError, models.ChatErrorEnvelope{
			Error: "An error occurred during the conversation.",
		})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Session-Id", result.SessionID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(result.AssistantText))
}

// toChatHistory converts wire history (role "user"/"model" with content
// parts) into the service's message form.
func toChatHistory(history []models.ChatMessage) []chat.Message {
	if len(history) == 0 {
		return nil
	}

	messages := make([]chat.Message, 0, len(history))
	for _, msg := range history {
		role := chat.RoleUser
		if msg.Role == "model" || msg.Role == string(chat.RoleAssistant) {
			role = chat.RoleAssistant
		}

		parts := make([]string, 0, len(msg.Content))
		for _, part := range msg.Content {
			parts = append(parts, part.Text)
		}

		messages = append(messages, chat.Message{
			Role: role,
			Text: strings.Join(parts, ""),
		})
	}
	return messages
}

func writeChatError(w http.ResponseWriter, r *http.Request, status int, envelope models.ChatErrorEnvelope) {
	response.JSON(w, r, status, envelope)
}
