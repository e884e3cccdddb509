// Package policy manages the tunable safety scoring policy.
package policy

import (
	"errors"
	"time"

	"github.com/tripsentry/tripsentry/internal/safety"
)

// ErrPolicyNotFound is returned when no stored policy exists yet.
var ErrPolicyNotFound = errors.New("safety policy not found")

// Settings is the tunable scoring policy.
type Settings struct {
	BaselineScore           int
	SameAreaThresholdMeters float64
	InactivityThreshold     time.Duration
	RouteDeviationPenalty   int
	InactivityPenalty       int

	// AlertScoreThreshold is the score at or below which the background
	// sweep publishes an alert.
	AlertScoreThreshold int

	UpdatedAt time.Time
}

// DefaultSettings returns the built-in policy used when no stored policy
// exists or the store is unreachable.
func DefaultSettings() *Settings {
	base := safety.DefaultPolicy()
	return &Settings{
		BaselineScore:           base.BaselineScore,
		SameAreaThresholdMeters: base.SameAreaThresholdMeters,
		InactivityThreshold:     base.InactivityThreshold,
		RouteDeviationPenalty:   base.RouteDeviationPenalty,
		InactivityPenalty:       base.InactivityPenalty,
		AlertScoreThreshold:     50,
	}
}

// SafetyPolicy converts the settings into the evaluator's policy form.
func (s *Settings) SafetyPolicy() safety.Policy {
	return safety.Policy{
		BaselineScore:           s.BaselineScore,
		SameAreaThresholdMeters: s.SameAreaThresholdMeters,
		InactivityThreshold:     s.InactivityThreshold,
		RouteDeviationPenalty:   s.RouteDeviationPenalty,
		InactivityPenalty:       s.InactivityPenalty,
	}
}
