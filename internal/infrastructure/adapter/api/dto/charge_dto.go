package dto

// ChargeRequest represents the API request for starting a charging transaction
type ChargeRequest struct {
	UserID     string `json:"userId" binding:"required"`
	ResourceID string `json:"resourceId" binding:"required"`
	Amount     string `json:"amount" binding:"required"`
}

// ChargeResponse represents the API response for a charging transaction
type ChargeResponse struct {
	TxID      string `json:"txId"`
	Committed bool   `json:"committed"`
}
