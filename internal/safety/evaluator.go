package safety

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripsentry/tripsentry/internal/geo"
)

// PlaceResolver resolves itinerary labels to coordinates.
type PlaceResolver interface {
	Resolve(label string) (geo.Point, bool)
}

// Policy holds the tunable parameters of the deduction rules.
type Policy struct {
	// BaselineScore is the score before any deductions. Default: 90.
	BaselineScore int

	// SameAreaThresholdMeters is the distance below which two points count as
	// the same area. Default: 5000 (5 km).
	SameAreaThresholdMeters float64

	// InactivityThreshold is the stationary-gap duration above which the
	// prolonged-inactivity rule fires. Default: 12 hours.
	InactivityThreshold time.Duration

	// RouteDeviationPenalty is deducted when the tourist is outside the area
	// of the itinerary entry active now. Default: 10.
	RouteDeviationPenalty int

	// InactivityPenalty is deducted for an unplanned prolonged stationary
	// gap. Default: 15.
	InactivityPenalty int
}

// DefaultPolicy returns the default evaluation policy.
func DefaultPolicy() Policy {
	return Policy{
		BaselineScore:           90,
		SameAreaThresholdMeters: geo.DefaultSameAreaThresholdMeters,
		InactivityThreshold:     12 * time.Hour,
		RouteDeviationPenalty:   10,
		InactivityPenalty:       15,
	}
}

// EvaluatorConfig holds configuration for the evaluator.
type EvaluatorConfig struct {
	// Resolver maps itinerary labels to coordinates. Optional; entries that
	// carry explicit coordinates do not need it.
	Resolver PlaceResolver

	// Policy is the deduction rule configuration. Zero-value fields are
	// replaced with defaults.
	Policy Policy

	// Logger for evaluation diagnostics.
	Logger zerolog.Logger
}

// Evaluator applies the deduction rules to produce a safety assessment.
// Evaluate is a pure function of its input: identical input and Now yield
// identical output.
type Evaluator struct {
	resolver PlaceResolver
	policy   Policy
	logger   zerolog.Logger
}

// NewEvaluator creates a new Evaluator, filling in policy defaults.
func NewEvaluator(cfg EvaluatorConfig) *Evaluator {
	p := cfg.Policy
	defaults := DefaultPolicy()
	if p.BaselineScore <= 0 {
		p.BaselineScore = defaults.BaselineScore
	}
	if p.SameAreaThresholdMeters <= 0 {
		p.SameAreaThresholdMeters = defaults.SameAreaThresholdMeters
	}
	if p.InactivityThreshold <= 0 {
		p.InactivityThreshold = defaults.InactivityThreshold
	}
	if p.RouteDeviationPenalty <= 0 {
		p.RouteDeviationPenalty = defaults.RouteDeviationPenalty
	}
	if p.InactivityPenalty <= 0 {
		p.InactivityPenalty = defaults.InactivityPenalty
	}

	return &Evaluator{
		resolver: cfg.Resolver,
		policy:   p,
		logger:   cfg.Logger,
	}
}

// EvaluationInput is the input to one evaluation call.
type EvaluationInput struct {
	Current   geo.Point
	Itinerary []ItineraryEntry
	History   []LocationSample
	Now       time.Time
}

// Evaluate validates the input, applies the deduction rules in order and
// returns the assessment. Malformed input fails with *ValidationError before
// any scoring; well-formed input never fails.
func (e *Evaluator) Evaluate(in EvaluationInput) (*Assessment, error) {
	if fieldErrors := validateInput(in); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	score := e.policy.BaselineScore
	reasons := []string{}

	// Rule 1: route deviation. Fires only when an itinerary entry is active
	// at Now; having no planned location is not itself a deviation.
	if entry, ok := ActiveEntry(in.Now, in.Itinerary); ok {
		if planned, ok := e.resolveEntry(entry); ok {
			if !geo.SameArea(in.Current, planned, e.policy.SameAreaThresholdMeters) {
				score -= e.policy.RouteDeviationPenalty
				reasons = append(reasons, ReasonRouteDeviation)
			}
		}
	}

	// Rule 2: prolonged inactivity, unless the whole gap falls inside a
	// planned stay (an expected overnight stop).
	gap := LongestStationaryGap(in.History, e.policy.SameAreaThresholdMeters)
	if gap.Duration > e.policy.InactivityThreshold && !gapWithinItinerary(gap, in.Itinerary) {
		score -= e.policy.InactivityPenalty
		reasons = append(reasons, ReasonProlongedInactivity)
	}

	// Clamp is an invariant, not an expectation: with the default rules the
	// score cannot leave [0,100], but future rules must not break callers.
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	e.logger.Debug().
		Int("score", score).
		Strs("reasons", reasons).
		Dur("stationary_gap", gap.Duration).
		Msg("safety assessment computed")

	return &Assessment{Score: score, Reasons: reasons, EvaluatedAt: in.Now}, nil
}

// resolveEntry returns the planned point for an entry: explicit coordinates
// win, otherwise the resolver is consulted. Unresolvable labels disable the
// deviation rule for this call rather than guessing.
func (e *Evaluator) resolveEntry(entry ItineraryEntry) (geo.Point, bool) {
	if entry.Point != nil {
		return *entry.Point, true
	}
	if e.resolver == nil {
		return geo.Point{}, false
	}
	p, ok := e.resolver.Resolve(entry.Label)
	if !ok {
		e.logger.Debug().Str("label", entry.Label).Msg("itinerary label not resolvable")
	}
	return p, ok
}

// gapWithinItinerary reports whether the gap's time range lies entirely
// inside some planned stay.
func gapWithinItinerary(gap Gap, entries []ItineraryEntry) bool {
	for _, e := range entries {
		if !gap.Start.Before(e.Start) && !gap.End.After(e.End) {
			return true
		}
	}
	return false
}

func validateInput(in EvaluationInput) []FieldError {
	var errs []FieldError

	errs = append(errs, validatePoint(in.Current, "currentLocation")...)

	for i, entry := range in.Itinerary {
		prefix := fmt.Sprintf("plannedItinerary[%d]", i)
		if entry.Label == "" && entry.Point == nil {
			errs = append(errs, FieldError{Field: prefix + ".location", Message: "is required"})
		}
		if entry.Point != nil {
			errs = append(errs, validatePoint(*entry.Point, prefix)...)
		}
		if !entry.End.After(entry.Start) {
			errs = append(errs, FieldError{Field: prefix + ".endTime", Message: "must be after startTime"})
		}
	}

	for i, sample := range in.History {
		errs = append(errs, validatePoint(sample.Point, fmt.Sprintf("locationHistory[%d]", i))...)
	}

	return errs
}

func validatePoint(p geo.Point, prefix string) []FieldError {
	var errs []FieldError
	if p.Lat < -90 || p.Lat > 90 {
		errs = append(errs, FieldError{Field: prefix + ".latitude", Message: "must be between -90 and 90"})
	}
	if p.Lon < -180 || p.Lon > 180 {
		errs = append(errs, FieldError{Field: prefix + ".longitude", Message: "must be between -180 and 180"})
	}
	return errs
}
