package models

// ItineraryEntry is a stored itinerary entry for a tourist.
type ItineraryEntry struct {
	ID        string    `json:"id"`
	TouristID string    `json:"touristId"`
	Location  string    `json:"location"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	StartTime Timestamp `json:"startTime"`
	EndTime   Timestamp `json:"endTime"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

// ItineraryEntryCreateRequest creates a stored itinerary entry.
type ItineraryEntryCreateRequest struct {
	Location  string    `json:"location"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	StartTime Timestamp `json:"startTime"`
	EndTime   Timestamp `json:"endTime"`
}

// ItineraryEntryUpdateRequest updates a stored itinerary entry. Nil fields
// are left unchanged.
type ItineraryEntryUpdateRequest struct {
	Location  *string    `json:"location,omitempty"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	StartTime *Timestamp `json:"startTime,omitempty"`
	EndTime   *Timestamp `json:"endTime,omitempty"`
}

// PagedItineraryEntries is a paginated list of itinerary entries.
type PagedItineraryEntries struct {
	Items []ItineraryEntry  `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
