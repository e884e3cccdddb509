package models

// SafetyPolicy is the tunable scoring policy.
type SafetyPolicy struct {
	BaselineScore              int        `json:"baselineScore"`
	SameAreaThresholdMeters    float64    `json:"sameAreaThresholdMeters"`
	InactivityThresholdMinutes int        `json:"inactivityThresholdMinutes"`
	RouteDeviationPenalty      int        `json:"routeDeviationPenalty"`
	InactivityPenalty          int        `json:"inactivityPenalty"`
	AlertScoreThreshold        int        `json:"alertScoreThreshold"`
	UpdatedAt                  *Timestamp `json:"updatedAt,omitempty"`
}

// SafetyPolicyUpdateRequest updates the scoring policy. Nil fields are left
// unchanged.
type SafetyPolicyUpdateRequest struct {
	BaselineScore              *int     `json:"baselineScore,omitempty"`
	SameAreaThresholdMeters    *float64 `json:"sameAreaThresholdMeters,omitempty"`
	InactivityThresholdMinutes *int     `json:"inactivityThresholdMinutes,omitempty"`
	RouteDeviationPenalty      *int     `json:"routeDeviationPenalty,omitempty"`
	InactivityPenalty          *int     `json:"inactivityPenalty,omitempty"`
	AlertScoreThreshold        *int     `json:"alertScoreThreshold,omitempty"`
}
