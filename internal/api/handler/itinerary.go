package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tripsentry/tripsentry/internal/api/models"
	"github.com/tripsentry/tripsentry/internal/api/response"
	"github.com/tripsentry/tripsentry/internal/itinerary"
)

// ItineraryHandler handles stored itinerary endpoints.
type ItineraryHandler struct {
	service *itinerary.Service
}

// NewItineraryHandler creates a new ItineraryHandler.
func NewItineraryHandler(service *itinerary.Service) *ItineraryHandler {
	return &ItineraryHandler{service: service}
}

// ListEntries handles GET /v1/tourists/{touristId}/itinerary.
func (h *ItineraryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	touristID := chi.URLParam(r, "touristId")
	if touristID == "" {
		response.BadRequest(w, r, "touristId is required", nil)
		return
	}

	limit := parseLimit(r, 50, 200)
	cursor := r.URL.Query().Get("cursor")

	entries, err := h.service.List(r.Context(), touristID, limit, cursor)
	if err != nil {
		response.InternalError(w, r, "failed to list itinerary entries")
		return
	}

	response.JSON(w, r, http.StatusOK, entries)
}

// CreateEntry handles POST /v1/tourists/{touristId}/itinerary.
func (h *ItineraryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	touristID := chi.URLParam(r, "touristId")
	if touristID == "" {
		response.BadRequest(w, r, "touristId is required", nil)
		return
	}

	var input models.ItineraryEntryCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	entry, err := h.service.Create(r.Context(), touristID, &input)
	if err != nil {
		var valErr *itinerary.ValidationError
		if errors.As(err, &valErr) {
			response.BadRequest(w, r, "validation failed", valErr.Errors)
			return
		}
		response.InternalError(w, r, "failed to create itinerary entry")
		return
	}

	location := fmt.Sprintf("/v1/tourists/%s/itinerary/%s", touristID, entry.ID)
	response.Created(w, r, location, entry)
}

// GetEntry handles GET /v1/tourists/{touristId}/itinerary/{entryId}.
func (h *ItineraryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	touristID, entryID, ok := entryParams(w, r)
	if !ok {
		return
	}

	entry, err := h.service.Get(r.Context(), touristID, entryID)
	if err != nil {
		if errors.Is(err, itinerary.ErrEntryNotFound) {
			response.NotFound(w, r, "itinerary entry not found")
			return
		}
		response.InternalError(w, r, "failed to load itinerary entry")
		return
	}

	response.JSON(w, r, http.StatusOK, entry)
}

// UpdateEntry handles PUT /v1/tourists/{touristId}/itinerary/{entryId}.
func (h *ItineraryHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	touristID, entryID, ok := entryParams(w, r)
	if !ok {
		return
	}

	var input models.ItineraryEntryUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	entry, err := h.service.Update(r.Context(), touristID, entryID, &input)
	if err != nil {
		var valErr *itinerary.ValidationError
		switch {
		case errors.As(err, &valErr):
			response.BadRequest(w, r, "validation failed", valErr.Errors)
		case errors.Is(err, itinerary.ErrEntryNotFound):
			response.NotFound(w, r, "itinerary entry not found")
		default:
			response.InternalError(w, r, "failed to update itinerary entry")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, entry)
}

// DeleteEntry handles DELETE /v1/tourists/{touristId}/itinerary/{entryId}.
func (h *ItineraryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	touristID, entryID, ok := entryParams(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), touristID, entryID); err != nil {
		if errors.Is(err, itinerary.ErrEntryNotFound) {
			response.NotFound(w, r, "itinerary entry not found")
			return
		}
		response.InternalError(w, r, "failed to delete itinerary entry")
		return
	}

	response.NoContent(w, r)
}

func entryParams(w http.ResponseWriter, r *http.Request) (touristID, entryID string, ok bool) {
	touristID = chi.URLParam(r, "touristId")
	if touristID == "" {
		response.BadRequest(w, r, "touristId is required", nil)
		return "", "", false
	}
	entryID = chi.URLParam(r, "entryId")
	if entryID == "" {
		response.BadRequest(w, r, "entryId is required", nil)
		return "", "", false
	}
	return touristID, entryID, true
}
