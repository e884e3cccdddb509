package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tripsentry/tripsentry/internal/api/models"
	"github.com/tripsentry/tripsentry/internal/api/response"
	"github.com/tripsentry/tripsentry/internal/tracking"
)

// TrackingHandler handles location trail endpoints.
type TrackingHandler struct {
	service *tracking.Service
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(service *tracking.Service) *TrackingHandler {
	return &TrackingHandler{service: service}
}

// ReportLocations handles POST /v1/tourists/{touristId}/locations - batch
// position report.
func (h *TrackingHandler) ReportLocations(w http.ResponseWriter, r *http.Request) {
	touristID := chi.URLParam(r, "touristId")
	if touristID == "" {
		response.BadRequest(w, r, "touristId is required", nil)
		return
	}

	var input models.LocationReportRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if err := h.service.Report(r.Context(), touristID, &input); err != nil {
		var valErr *tracking.ValidationError
		if errors.As(err, &valErr) {
			response.BadRequest(w, r, "validation failed", valErr.Errors)
			return
		}
		response.InternalError(w, r, "failed to store location samples")
		return
	}

	response.NoContent(w, r)
}

// ListLocations handles GET /v1/tourists/{touristId}/locations - recent trail,
// oldest first. The optional since query parameter (RFC 3339) bounds how far
// back the trail reaches.
func (h *TrackingHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	touristID := chi.URLParam(r, "touristId")
	if touristID == "" {
		response.BadRequest(w, r, "touristId is required", nil)
		return
	}

	window := tracking.DefaultHistoryWindow
	if raw := r.URL.Query().Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(w, r, "validation failed", []models.FieldError{
				{Field: "since", Message: "must be an RFC 3339 timestamp"},
			})
			return
		}
		window = time.Since(since)
		if window < 0 {
			window = 0
		}
	}

	limit := parseLimit(r, 500, 1000)

	samples, err := h.service.History(r.Context(), touristID, window, limit)
	if err != nil {
		response.InternalError(w, r, "failed to load location samples")
		return
	}

	response.JSON(w, r, http.StatusOK, samples)
}
