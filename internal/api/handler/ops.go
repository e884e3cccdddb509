// Package handler provides HTTP handlers for the TripSentry API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/tripsentry/tripsentry/internal/api/models"
	"github.com/tripsentry/tripsentry/internal/api/response"
	"github.com/tripsentry/tripsentry/internal/provider/resilience"
)

// Pinger checks connectivity to a storage backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	db        Pinger
	backends  *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler. db and backends are optional; when
// nil the corresponding checks are omitted.
func NewOpsHandler(version, buildTime string, db Pinger, backends *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		db:        db,
		backends:  backends,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			health.Status = models.HealthStatusFail
			health.Details = map[string]interface{}{"database": err.Error()}
			response.JSON(w, r, http.StatusServiceUnavailable, health)
			return
		}
	}

	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - subsystem and backend status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       now,
		Subsystems: []models.SubsystemStatus{},
		Backends:   []models.BackendStatus{},
	}

	if h.db != nil {
		sub := models.SubsystemStatus{Name: "postgres", Status: models.HealthStatusOK}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			detail := err.Error()
			sub.Status = models.HealthStatusFail
			sub.Detail = &detail
			status.Status = models.HealthStatusFail
		}
		status.Subsystems = append(status.Subsystems, sub)
	}

	if h.backends != nil {
		for _, health := range h.backends.GetAllHealth() {
			status.Backends = append(status.Backends, toBackendStatus(health))
			switch {
			case health.IsUnhealthy():
				status.Status = models.HealthStatusFail
			case health.IsDegraded() && status.Status == models.HealthStatusOK:
				status.Status = models.HealthStatusDegraded
			}
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

func toBackendStatus(health *resilience.BackendHealth) models.BackendStatus {
	bs := models.BackendStatus{
		Backend: health.Name,
		Status:  models.HealthStatusOK,
	}
	switch {
	case health.IsUnhealthy():
		bs.Status = models.HealthStatusFail
	case health.IsDegraded():
		bs.Status = models.HealthStatusDegraded
	}
	if health.LastSuccessAt != nil {
		at := models.Timestamp(*health.LastSuccessAt)
		bs.LastSuccessAt = &at
	}
	if health.LastFailureAt != nil {
		at := models.Timestamp(*health.LastFailureAt)
		bs.LastFailureAt = &at
	}
	if health.LastError != "" {
		msg := health.LastError
		bs.Message = &msg
	}
	return bs
}
