package dto

// SettleRequest represents the API request for settling a charging order
type SettleRequest struct {
	UserID string `json:"userId" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// SettleResponse represents the API response for a settlement
type SettleResponse struct {
	OrderID string `json:"orderId"`
	Settled bool   `json:"settled"`
}
