package dto

// PointsResponse represents the API response for a user's points balance
type PointsResponse struct {
	UserID string `json:"userId"`
	Points string `json:"points"`
}
