package itinerary

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tripsentry/tripsentry/internal/api/models"
	"github.com/tripsentry/tripsentry/internal/geo"
	"github.com/tripsentry/tripsentry/internal/safety"
)

// Service provides itinerary operations.
type Service struct {
	repo      Repository
	gazetteer *geo.Gazetteer
}

// NewService creates a new itinerary service. Entries created with explicit
// coordinates are registered in the gazetteer so their labels resolve during
// safety evaluation.
func NewService(repo Repository, gazetteer *geo.Gazetteer) *Service {
	return &Service{repo: repo, gazetteer: gazetteer}
}

// List retrieves a tourist's itinerary entries.
func (s *Service) List(ctx context.Context, touristID string, limit int, cursor string) (*models.PagedItineraryEntries, error) {
	result, err := s.repo.List(ctx, touristID, ListOptions{Limit: limit, Cursor: cursor})
	if err != nil {
		return nil, err
	}

	items := make([]models.ItineraryEntry, 0, len(result.Items))
	for _, e := range result.Items {
		items = append(items, s.toAPIEntry(e))
	}

	var nextCursor *string
	if result.NextCursor != "" {
		nextCursor = &result.NextCursor
	}

	return &models.PagedItineraryEntries{
		Items: items,
		Meta: models.PagedResponseMeta{
			Limit:      limit,
			NextCursor: nextCursor,
		},
	}, nil
}

// Get retrieves an entry by ID for a tourist.
func (s *Service) Get(ctx context.Context, touristID, entryID string) (*models.ItineraryEntry, error) {
	entry, err := s.repo.GetByTouristAndID(ctx, touristID, entryID)
	if err != nil {
		return nil, err
	}

	result := s.toAPIEntry(entry)
	return &result, nil
}

// Create creates a new entry for a tourist.
func (s *Service) Create(ctx context.Context, touristID string, input *models.ItineraryEntryCreateRequest) (*models.ItineraryEntry, error) {
	if fieldErrors := s.validateCreateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := time.Now()
	entry := &Entry{
		ID:        "itn_" + uuid.New().String()[:22],
		TouristID: touristID,
		Location:  input.Location,
		Point:     toPoint(input.Latitude, input.Longitude),
		Start:     input.StartTime.Time(),
		End:       input.EndTime.Time(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.registerPlace(entry)

	result := s.toAPIEntry(entry)
	return &result, nil
}

// Update updates an existing entry for a tourist.
func (s *Service) Update(ctx context.Context, touristID, entryID string, input *models.ItineraryEntryUpdateRequest) (*models.ItineraryEntry, error) {
	entry, err := s.repo.GetByTouristAndID(ctx, touristID, entryID)
	if err != nil {
		return nil, err
	}

	if fieldErrors := s.validateUpdateInput(entry, input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	if input.Location != nil {
		entry.Location = *input.Location
	}
	if input.Latitude != nil && input.Longitude != nil {
		entry.Point = &geo.Point{Lat: *input.Latitude, Lon: *input.Longitude}
	}
	if input.StartTime != nil {
		entry.Start = input.StartTime.Time()
	}
	if input.EndTime != nil {
		entry.End = input.EndTime.Time()
	}
	entry.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}

	s.registerPlace(entry)

	result := s.toAPIEntry(entry)
	return &result, nil
}

// Delete deletes an entry for a tourist.
func (s *Service) Delete(ctx context.Context, touristID, entryID string) error {
	// Verify ownership
	_, err := s.repo.GetByTouristAndID(ctx, touristID, entryID)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return ErrEntryNotFound
		}
		return err
	}

	return s.repo.Delete(ctx, entryID)
}

// EvaluationEntries loads a tourist's stored itinerary in the form the
// safety evaluator consumes.
func (s *Service) EvaluationEntries(ctx context.Context, touristID string) ([]safety.ItineraryEntry, error) {
	result, err := s.repo.List(ctx, touristID, ListOptions{Limit: 200})
	if err != nil {
		return nil, err
	}

	entries := make([]safety.ItineraryEntry, 0, len(result.Items))
	for _, e := range result.Items {
		entries = append(entries, safety.ItineraryEntry{
			Label: e.Location,
			Point: e.Point,
			Start: e.Start,
			End:   e.End,
		})
	}
	return entries, nil
}

// registerPlace records an entry's label and coordinates in the gazetteer.
func (s *Service) registerPlace(entry *Entry) {
	if s.gazetteer == nil || entry.Point == nil {
		return
	}
	s.gazetteer.Register(entry.Location, *entry.Point)
}

// validateCreateInput validates the create entry input.
func (s *Service) validateCreateInput(input *models.ItineraryEntryCreateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Location == "" {
		errs = append(errs, models.FieldError{Field: "location", Message: "is required"})
	} else if len(input.Location) > MaxLocationLength {
		errs = append(errs, models.FieldError{Field: "location", Message: "must be at most 120 characters"})
	}

	errs = append(errs, validateCoordinates(input.Latitude, input.Longitude)...)

	start := input.StartTime.Time()
	end := input.EndTime.Time()
	if start.IsZero() {
		errs = append(errs, models.FieldError{Field: "startTime", Message: "is required"})
	}
	if end.IsZero() {
		errs = append(errs, models.FieldError{Field: "endTime", Message: "is required"})
	}
	if !start.IsZero() && !end.IsZero() && !end.After(start) {
		errs = append(errs, models.FieldError{Field: "endTime", Message: "must be after startTime"})
	}

	return errs
}

// validateUpdateInput validates the update entry input against the existing
// entry, so a changed start cannot cross an unchanged end.
func (s *Service) validateUpdateInput(existing *Entry, input *models.ItineraryEntryUpdateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Location != nil {
		if *input.Location == "" {
			errs = append(errs, models.FieldError{Field: "location", Message: "cannot be empty"})
		} else if len(*input.Location) > MaxLocationLength {
			errs = append(errs, models.FieldError{Field: "location", Message: "must be at most 120 characters"})
		}
	}

	if input.Latitude != nil || input.Longitude != nil {
		if input.Latitude == nil || input.Longitude == nil {
			errs = append(errs, models.FieldError{Field: "latitude", Message: "latitude and longitude must be set together"})
		} else {
			errs = append(errs, validateCoordinates(input.Latitude, input.Longitude)...)
		}
	}

	start := existing.Start
	if input.StartTime != nil {
		start = input.StartTime.Time()
	}
	end := existing.End
	if input.EndTime != nil {
		end = input.EndTime.Time()
	}
	if !end.After(start) {
		errs = append(errs, models.FieldError{Field: "endTime", Message: "must be after startTime"})
	}

	return errs
}

// validateCoordinates validates an optional coordinate pair.
func validateCoordinates(lat, lon *float64) []models.FieldError {
	var errs []models.FieldError

	if (lat == nil) != (lon == nil) {
		return []models.FieldError{{Field: "latitude", Message: "latitude and longitude must be set together"}}
	}
	if lat == nil {
		return nil
	}

	if *lat < -90 || *lat > 90 {
		errs = append(errs, models.FieldError{Field: "latitude", Message: "must be between -90 and 90"})
	}
	if *lon < -180 || *lon > 180 {
		errs = append(errs, models.FieldError{Field: "longitude", Message: "must be between -180 and 180"})
	}

	return errs
}

// toAPIEntry converts a domain Entry to an API ItineraryEntry.
func (s *Service) toAPIEntry(e *Entry) models.ItineraryEntry {
	entry := models.ItineraryEntry{
		ID:        e.ID,
		TouristID: e.TouristID,
		Location:  e.Location,
		StartTime: models.Timestamp(e.Start),
		EndTime:   models.Timestamp(e.End),
		CreatedAt: models.Timestamp(e.CreatedAt),
		UpdatedAt: models.Timestamp(e.UpdatedAt),
	}
	if e.Point != nil {
		lat, lon := e.Point.Lat, e.Point.Lon
		entry.Latitude = &lat
		entry.Longitude = &lon
	}
	return entry
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

func toPoint(lat, lon *float64) *geo.Point {
	if lat == nil || lon == nil {
		return nil
	}
	return &geo.Point{Lat: *lat, Lon: *lon}
}
