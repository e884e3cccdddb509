package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tripsentry/tripsentry/internal/api/models"
	"github.com/tripsentry/tripsentry/internal/api/response"
	"github.com/tripsentry/tripsentry/internal/chat"
	"github.com/tripsentry/tripsentry/internal/icons"
)

// IconsHandler handles the icon suggestion endpoint.
type IconsHandler struct {
	service *icons.Service
}

// NewIconsHandler creates a new IconsHandler.
func NewIconsHandler(service *icons.Service) *IconsHandler {
	return &IconsHandler{service: service}
}

// SuggestIcon handles POST /v1/icons:suggest - icon recommendation for a label.
func (h *IconsHandler) SuggestIcon(w http.ResponseWriter, r *http.Request) {
	var input models.SuggestIconRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	suggestion, err := h.service.Suggest(r.Context(), input.Label)
	if err != nil {
		var valErr *icons.ValidationError
		if errors.As(err, &valErr) {
			response.BadRequest(w, r, "validation failed", []models.FieldError{
				{Field: valErr.Field, Message: valErr.Message},
			})
			return
		}

		var genErr *chat.GenerationError
		if errors.As(err, &genErr) {
			response.ServiceUnavailable(w, r, "icon suggestion backend unavailable")
			return
		}

		response.InternalError(w, r, "failed to suggest an icon")
		return
	}

	response.JSON(w, r, http.StatusOK, models.SuggestIconResponse{
		IconName:    suggestion.IconName,
		Description: suggestion.Description,
	})
}
