package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tripsentry/tripsentry/internal/api/models"
	"github.com/tripsentry/tripsentry/internal/api/response"
	"github.com/tripsentry/tripsentry/internal/geo"
	"github.com/tripsentry/tripsentry/internal/policy"
	"github.com/tripsentry/tripsentry/internal/safety"
)

// SafetyHandler handles safety score endpoints.
type SafetyHandler struct {
	policies *policy.Service
	resolver safety.PlaceResolver
	records  safety.Repository
	logger   zerolog.Logger
}

// NewSafetyHandler creates a new SafetyHandler. policies and records are
// optional: without policies the built-in defaults apply, without records the
// stored-assessment endpoints return 404.
func NewSafetyHandler(policies *policy.Service, resolver safety.PlaceResolver, records safety.Repository, logger zerolog.Logger) *SafetyHandler {
	return &SafetyHandler{
		policies: policies,
		resolver: resolver,
		records:  records,
		logger:   logger,
	}
}

// EvaluateSafetyScore handles POST /v1/safety-score - stateless evaluation.
func (h *SafetyHandler) EvaluateSafetyScore(w http.ResponseWriter, r *http.Request) {
	var input models.SafetyScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if input.CurrentLocation == nil {
		response.BadRequest(w, r, "validation failed", []models.FieldError{
			{Field: "currentLocation", Message: "is required"},
		})
		return
	}

	evaluator := safety.NewEvaluator(safety.EvaluatorConfig{
		Resolver: h.resolver,
		Policy:   h.currentPolicy(r),
		Logger:   h.logger,
	})

	assessment, err := evaluator.Evaluate(toEvaluationInput(&input))
	if err != nil {
		var valErr *safety.ValidationError
		if errors.As(err, &valErr) {
			response.BadRequest(w, r, "validation failed", toFieldErrors(valErr.Errors))
			return
		}
		response.InternalError(w, r, "failed to evaluate safety score")
		return
	}

	response.JSON(w, r, http.StatusOK, models.SafetyScoreResponse{
		SafetyScore: assessment.Score,
		Reasons:     assessment.Reasons,
	})
}

// GetTouristSafetyScore handles GET /v1/tourists/{touristId}/safety-score -
// latest stored assessment.
func (h *SafetyHandler) GetTouristSafetyScore(w http.ResponseWriter, r *http.Request) {
	touristID := chi.URLParam(r, "touristId")
	if touristID == "" {
		response.BadRequest(w, r, "touristId is required", nil)
		return
	}

	if h.records == nil {
		response.NotFound(w, r, "no safety assessment found")
		return
	}

	rec, err := h.records.Latest(r.Context(), touristID)
	if err != nil {
		if errors.Is(err, safety.ErrAssessmentNotFound) {
			response.NotFound(w, r, "no safety assessment found")
			return
		}
		response.InternalError(w, r, "failed to load safety assessment")
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIAssessment(rec))
}

// ListTouristSafetyScores handles GET /v1/tourists/{touristId}/safety-score/history -
// stored assessments, most recent first.
func (h *SafetyHandler) ListTouristSafetyScores(w http.ResponseWriter, r *http.Request) {
	touristID := chi.URLParam(r, "touristId")
	if touristID == "" {
		response.BadRequest(w, r, "touristId is required", nil)
		return
	}

	limit := parseLimit(r, 20, 100)

	var records []*safety.Record
	if h.records != nil {
		var err error
		records, err = h.records.ListByTourist(r.Context(), touristID, limit)
		if err != nil {
			response.InternalError(w, r, "failed to load safety assessments")
			return
		}
	}

	items := make([]models.SafetyAssessment, 0, len(records))
	for _, rec := range records {
		items = append(items, toAPIAssessment(rec))
	}

	response.JSON(w, r, http.StatusOK, models.PagedSafetyAssessments{
		Items: items,
		Meta:  models.PagedResponseMeta{Limit: limit},
	})
}

// currentPolicy returns the effective evaluation policy.
func (h *SafetyHandler) currentPolicy(r *http.Request) safety.Policy {
	if h.policies == nil {
		return safety.DefaultPolicy()
	}
	return h.policies.Current(r.Context()).SafetyPolicy()
}

// toEvaluationInput maps the request body to the evaluator's input.
func toEvaluationInput(input *models.SafetyScoreRequest) safety.EvaluationInput {
	in := safety.EvaluationInput{
		Current: geo.Point{Lat: input.CurrentLocation.Latitude, Lon: input.CurrentLocation.Longitude},
		Now:     time.Now(),
	}

	for _, entry := range input.PlannedItinerary {
		e := safety.ItineraryEntry{
			Label: entry.Location,
			Start: entry.StartTime.Time(),
			End:   entry.EndTime.Time(),
		}
		if entry.Latitude != nil && entry.Longitude != nil {
			e.Point = &geo.Point{Lat: *entry.Latitude, Lon: *entry.Longitude}
		}
		in.Itinerary = append(in.Itinerary, e)
	}

	for _, sample := range input.LocationHistory {
		in.History = append(in.History, safety.LocationSample{
			Point:     geo.Point{Lat: sample.Latitude, Lon: sample.Longitude},
			Timestamp: sample.Timestamp.Time(),
		})
	}

	return in
}

func toFieldErrors(errs []safety.FieldError) []models.FieldError {
	out := make([]models.FieldError, 0, len(errs))
	for _, fe := range errs {
		out = append(out, models.FieldError{Field: fe.Field, Message: fe.Message})
	}
	return out
}

func toAPIAssessment(rec *safety.Record) models.SafetyAssessment {
	return models.SafetyAssessment{
		ID:          rec.ID,
		TouristID:   rec.TouristID,
		SafetyScore: rec.Score,
		Reasons:     rec.Reasons,
		EvaluatedAt: models.Timestamp(rec.EvaluatedAt),
	}
}

// parseLimit reads the limit query parameter, clamped to [1, max].
func parseLimit(r *http.Request, def, max int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
