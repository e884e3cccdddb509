package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tripsentry/tripsentry/internal/api/models"
	"github.com/tripsentry/tripsentry/internal/api/response"
	"github.com/tripsentry/tripsentry/internal/policy"
)

// PolicyHandler handles safety policy administration endpoints.
type PolicyHandler struct {
	service *policy.Service
}

// NewPolicyHandler creates a new PolicyHandler.
func NewPolicyHandler(service *policy.Service) *PolicyHandler {
	return &PolicyHandler{service: service}
}

// GetPolicy handles GET /v1/admin/policy - effective scoring policy.
func (h *PolicyHandler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	settings := h.service.Current(r.Context())
	response.JSON(w, r, http.StatusOK, policy.ToAPI(settings))
}

// UpdatePolicy handles PUT /v1/admin/policy - partial policy update.
func (h *PolicyHandler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	var input models.SafetyPolicyUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	settings, err := h.service.Update(r.Context(), &input)
	if err != nil {
		var valErr *policy.ValidationError
		if errors.As(err, &valErr) {
			response.BadRequest(w, r, "validation failed", valErr.Errors)
			return
		}
		response.InternalError(w, r, "failed to update safety policy")
		return
	}

	response.JSON(w, r, http.StatusOK, policy.ToAPI(settings))
}

// InvalidatePolicyCache handles POST /v1/admin/policy/invalidate.
func (h *PolicyHandler) InvalidatePolicyCache(w http.ResponseWriter, r *http.Request) {
	h.service.InvalidateCache()
	response.NoContent(w, r)
}
