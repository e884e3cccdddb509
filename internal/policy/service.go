package policy

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripsentry/tripsentry/internal/api/models"
)

// ServiceConfig holds configuration for the policy service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger

	// CacheTTL is how long a loaded policy is served from memory.
	// Default: 1 minute.
	CacheTTL time.Duration
}

// Service provides the current scoring policy with caching and fallback to
// the built-in defaults when the store is empty or unreachable.
type Service struct {
	repo     Repository
	logger   zerolog.Logger
	cacheTTL time.Duration

	mu          sync.RWMutex
	cached      *Settings
	cacheExpiry time.Time
}

// NewService creates a new policy service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 1 * time.Minute
	}

	return &Service{
		repo:     cfg.Repository,
		logger:   cfg.Logger,
		cacheTTL: cacheTTL,
	}
}

// Current returns the effective policy. A stored policy wins over the
// defaults; store failures degrade to the defaults rather than erroring.
func (s *Service) Current(ctx context.Context) *Settings {
	if cached := s.getCached(); cached != nil {
		return cached
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		if !errors.Is(err, ErrPolicyNotFound) {
			// Transient store failures are not cached so the next request
			// retries the load.
			s.logger.Warn().Err(err).Msg("failed to load safety policy, using defaults")
			return DefaultSettings()
		}
		// An empty store is a stable answer, so the defaults are cached
		// like any stored policy.
		settings = DefaultSettings()
	}

	s.setCached(settings)
	return settings
}

// Update applies a partial update on top of the effective policy.
func (s *Service) Update(ctx context.Context, input *models.SafetyPolicyUpdateRequest) (*Settings, error) {
	if fieldErrors := validateUpdate(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	settings := *s.Current(ctx)

	if input.BaselineScore != nil {
		settings.BaselineScore = *input.BaselineScore
	}
	if input.SameAreaThresholdMeters != nil {
		settings.SameAreaThresholdMeters = *input.SameAreaThresholdMeters
	}
	if input.InactivityThresholdMinutes != nil {
		settings.InactivityThreshold = time.Duration(*input.InactivityThresholdMinutes) * time.Minute
	}
	if input.RouteDeviationPenalty != nil {
		settings.RouteDeviationPenalty = *input.RouteDeviationPenalty
	}
	if input.InactivityPenalty != nil {
		settings.InactivityPenalty = *input.InactivityPenalty
	}
	if input.AlertScoreThreshold != nil {
		settings.AlertScoreThreshold = *input.AlertScoreThreshold
	}
	settings.UpdatedAt = time.Now()

	if err := s.repo.Set(ctx, &settings); err != nil {
		return nil, err
	}

	s.setCached(&settings)
	return &settings, nil
}

// InvalidateCache clears the cached policy, forcing a reload on next access.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
	s.cacheExpiry = time.Time{}
}

// ToAPI converts settings to the API representation.
func ToAPI(s *Settings) models.SafetyPolicy {
	p := models.SafetyPolicy{
		BaselineScore:              s.BaselineScore,
		SameAreaThresholdMeters:    s.SameAreaThresholdMeters,
		InactivityThresholdMinutes: int(s.InactivityThreshold / time.Minute),
		RouteDeviationPenalty:      s.RouteDeviationPenalty,
		InactivityPenalty:          s.InactivityPenalty,
		AlertScoreThreshold:        s.AlertScoreThreshold,
	}
	if !s.UpdatedAt.IsZero() {
		at := models.Timestamp(s.UpdatedAt)
		p.UpdatedAt = &at
	}
	return p
}

func (s *Service) getCached() *Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cached == nil || time.Now().After(s.cacheExpiry) {
		return nil
	}

	cpy := *s.cached
	return &cpy
}

func (s *Service) setCached(settings *Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cpy := *settings
	s.cached = &cpy
	s.cacheExpiry = time.Now().Add(s.cacheTTL)
}

// validateUpdate validates a partial policy update.
func validateUpdate(input *models.SafetyPolicyUpdateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.BaselineScore != nil && (*input.BaselineScore < 0 || *input.BaselineScore > 100) {
		errs = append(errs, models.FieldError{Field: "baselineScore", Message: "must be between 0 and 100"})
	}
	if input.SameAreaThresholdMeters != nil && *input.SameAreaThresholdMeters <= 0 {
		errs = append(errs, models.FieldError{Field: "sameAreaThresholdMeters", Message: "must be positive"})
	}
	if input.InactivityThresholdMinutes != nil && *input.InactivityThresholdMinutes <= 0 {
		errs = append(errs, models.FieldError{Field: "inactivityThresholdMinutes", Message: "must be positive"})
	}
	if input.RouteDeviationPenalty != nil && *input.RouteDeviationPenalty < 0 {
		errs = append(errs, models.FieldError{Field: "routeDeviationPenalty", Message: "must not be negative"})
	}
	if input.InactivityPenalty != nil && *input.InactivityPenalty < 0 {
		errs = append(errs, models.FieldError{Field: "inactivityPenalty", Message: "must not be negative"})
	}
	if input.AlertScoreThreshold != nil && (*input.AlertScoreThreshold < 0 || *input.AlertScoreThreshold > 100) {
		errs = append(errs, models.FieldError{Field: "alertScoreThreshold", Message: "must be between 0 and 100"})
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
