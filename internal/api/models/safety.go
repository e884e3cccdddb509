package models

// SafetyScoreRequest is the input to a safety score evaluation.
type SafetyScoreRequest struct {
	// CurrentLocation is the tourist's most recent position (required).
	CurrentLocation *Point `json:"currentLocation"`

	// PlannedItinerary is the tourist's planned schedule, possibly empty.
	PlannedItinerary []ItineraryEntryInput `json:"plannedItinerary,omitempty"`

	// LocationHistory is the recent movement trail, possibly empty and in
	// any order.
	LocationHistory []LocationSampleInput `json:"locationHistory,omitempty"`
}

// ItineraryEntryInput is one planned itinerary entry in a score request.
type ItineraryEntryInput struct {
	// Location is the human-readable place label.
	Location string `json:"location"`

	// Latitude and Longitude optionally pin the entry to exact coordinates.
	// When absent the label is resolved against the place directory.
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	StartTime Timestamp `json:"startTime"`
	EndTime   Timestamp `json:"endTime"`
}

// LocationSampleInput is one timestamped position in a score request.
type LocationSampleInput struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp Timestamp `json:"timestamp"`
}

// SafetyScoreResponse is the result of a safety score evaluation.
type SafetyScoreResponse struct {
	// SafetyScore is the clamped score in [0, 100].
	SafetyScore int `json:"safetyScore"`

	// Reasons lists the codes of the rules that reduced the score. Empty
	// when no rule fired.
	Reasons []string `json:"reasons"`
}

// SafetyAssessment is a persisted safety evaluation for a tourist.
type SafetyAssessment struct {
	ID          string    `json:"id"`
	TouristID   string    `json:"touristId"`
	SafetyScore int       `json:"safetyScore"`
	Reasons     []string  `json:"reasons"`
	EvaluatedAt Timestamp `json:"evaluatedAt"`
}

// PagedSafetyAssessments is a paginated list of safety assessments.
type PagedSafetyAssessments struct {
	Items []SafetyAssessment `json:"items"`
	Meta  PagedResponseMeta  `json:"meta"`
}
