package models

// LocationSample is a stored timestamped position for a tourist.
type LocationSample struct {
	TouristID string    `json:"touristId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp Timestamp `json:"timestamp"`
}

// LocationReportRequest reports one or more positions for a tourist.
type LocationReportRequest struct {
	Samples []LocationSampleInput `json:"samples"`
}

// PagedLocationSamples is a paginated list of location samples.
type PagedLocationSamples struct {
	Items []LocationSample  `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
