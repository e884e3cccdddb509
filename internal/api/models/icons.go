package models

// SuggestIconRequest asks for an icon recommendation for a label.
type SuggestIconRequest struct {
	Label string `json:"label"`
}

// SuggestIconResponse is an icon recommendation.
type SuggestIconResponse struct {
	IconName    string `json:"iconName"`
	Description string `json:"description"`
}
