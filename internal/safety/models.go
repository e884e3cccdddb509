// Package safety provides the deterministic safety-score evaluation engine.
package safety

import (
	"errors"
	"time"

	"github.com/tripsentry/tripsentry/internal/geo"
)

// Repository errors.
var (
	ErrAssessmentNotFound = errors.New("assessment not found")
)

// Reason codes appended by deduction rules, in rule evaluation order.
const (
	ReasonRouteDeviation      = "route_deviation"
	ReasonProlongedInactivity = "prolonged_inactivity"
)

// ItineraryEntry represents a planned stay at a labeled location.
// Point is optional; when nil the label is resolved through a PlaceResolver.
type ItineraryEntry struct {
	Label string
	Point *geo.Point
	Start time.Time
	End   time.Time
}

// LocationSample is one historical location reading.
type LocationSample struct {
	Point     geo.Point
	Timestamp time.Time
}

// Assessment is the result of one evaluation. Score is in [0,100]; Reasons
// holds the reason codes of the rules that fired, in rule order. Reasons is
// empty exactly when no deduction was applied.
type Assessment struct {
	Score       int
	Reasons     []string
	EvaluatedAt time.Time
}

// Record is a persisted assessment for a tourist, written by the worker and
// served from the tourist safety-score endpoint.
type Record struct {
	ID          string
	TouristID   string
	Score       int
	Reasons     []string
	EvaluatedAt time.Time
}

// FieldError describes a validation failure on a single input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError reports malformed evaluation input. The evaluator fails
// fast with it before any scoring takes place.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "invalid input: " + e.Errors[0].Field + " " + e.Errors[0].Message
	}
	return "invalid input"
}
