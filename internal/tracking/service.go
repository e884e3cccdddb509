package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/tripsentry/tripsentry/internal/api/models"
	"github.com/tripsentry/tripsentry/internal/geo"
	"github.com/tripsentry/tripsentry/internal/safety"
)

// Validation constants.
const (
	MaxSamplesPerReport = 200

	// DefaultHistoryWindow bounds how far back evaluation history reaches.
	DefaultHistoryWindow = 48 * time.Hour

	// DefaultRetention is how long samples are kept before pruning.
	DefaultRetention = 30 * 24 * time.Hour
)

// Service provides location trail operations.
type Service struct {
	repo Repository
}

// NewService creates a new tracking service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Report validates and stores reported positions for a tourist.
func (s *Service) Report(ctx context.Context, touristID string, input *models.LocationReportRequest) error {
	if fieldErrors := validateReport(input); len(fieldErrors) > 0 {
		return &ValidationError{Errors: fieldErrors}
	}

	samples := make([]*Sample, 0, len(input.Samples))
	for _, in := range input.Samples {
		samples = append(samples, &Sample{
			TouristID: touristID,
			Point:     geo.Point{Lat: in.Latitude, Lon: in.Longitude},
			Timestamp: in.Timestamp.Time(),
		})
	}

	return s.repo.Append(ctx, samples)
}

// History retrieves a tourist's recent trail, oldest first.
func (s *Service) History(ctx context.Context, touristID string, window time.Duration, limit int) (*models.PagedLocationSamples, error) {
	samples, err := s.evaluationSamples(ctx, touristID, window, limit)
	if err != nil {
		return nil, err
	}

	items := make([]models.LocationSample, 0, len(samples))
	for _, sample := range samples {
		items = append(items, models.LocationSample{
			TouristID: touristID,
			Latitude:  sample.Point.Lat,
			Longitude: sample.Point.Lon,
			Timestamp: models.Timestamp(sample.Timestamp),
		})
	}

	return &models.PagedLocationSamples{
		Items: items,
		Meta:  models.PagedResponseMeta{Limit: limit},
	}, nil
}

// Latest retrieves the most recent position for a tourist.
func (s *Service) Latest(ctx context.Context, touristID string) (*geo.Point, error) {
	sample, err := s.repo.Latest(ctx, touristID)
	if err != nil {
		return nil, err
	}
	point := sample.Point
	return &point, nil
}

// EvaluationHistory loads a tourist's recent trail in the form the safety
// evaluator consumes.
func (s *Service) EvaluationHistory(ctx context.Context, touristID string) ([]safety.LocationSample, error) {
	samples, err := s.evaluationSamples(ctx, touristID, DefaultHistoryWindow, 0)
	if err != nil {
		return nil, err
	}

	history := make([]safety.LocationSample, 0, len(samples))
	for _, sample := range samples {
		history = append(history, safety.LocationSample{
			Point:     sample.Point,
			Timestamp: sample.Timestamp,
		})
	}
	return history, nil
}

// ActiveTourists lists every tourist with a stored trail.
func (s *Service) ActiveTourists(ctx context.Context) ([]string, error) {
	return s.repo.TouristIDs(ctx)
}

// Prune removes samples older than the retention window and reports how many
// were removed.
func (s *Service) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return s.repo.PruneBefore(ctx, time.Now().Add(-retention))
}

func (s *Service) evaluationSamples(ctx context.Context, touristID string, window time.Duration, limit int) ([]*Sample, error) {
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	since := time.Now().Add(-window)
	return s.repo.ListSince(ctx, touristID, since, limit)
}

// validateReport validates a location report.
func validateReport(input *models.LocationReportRequest) []models.FieldError {
	var errs []models.FieldError

	if len(input.Samples) == 0 {
		return []models.FieldError{{Field: "samples", Message: "is required"}}
	}
	if len(input.Samples) > MaxSamplesPerReport {
		return []models.FieldError{{Field: "samples", Message: "must contain at most 200 samples"}}
	}

	for i, sample := range input.Samples {
		if sample.Latitude < -90 || sample.Latitude > 90 {
			errs = append(errs, models.FieldError{
				Field:   fmt.Sprintf("samples[%d].latitude", i),
				Message: "must be between -90 and 90",
			})
		}
		if sample.Longitude < -180 || sample.Longitude > 180 {
			errs = append(errs, models.FieldError{
				Field:   fmt.Sprintf("samples[%d].longitude", i),
				Message: "must be between -180 and 180",
			})
		}
		if sample.Timestamp.Time().IsZero() {
			errs = append(errs, models.FieldError{
				Field:   fmt.Sprintf("samples[%d].timestamp", i),
				Message: "is required",
			})
		}
	}

	return errs
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
