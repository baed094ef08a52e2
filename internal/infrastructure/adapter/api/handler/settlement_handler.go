package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
	domainerr "github.com/amirhossein-jamali/charging-settlement/internal/domain/error"
	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/usecase/settlement"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/api/dto"
)

// SettlementHandler handles order settlement HTTP requests
type SettlementHandler struct {
	service *settlement.Service
	logger  coreport.Logger
}

// NewSettlementHandler creates a new settlement handler instance
func NewSettlementHandler(service *settlement.Service, logger coreport.Logger) *SettlementHandler {
	return &SettlementHandler{
		service: service,
		logger:  logger,
	}
}

// Settle handles the POST /api/v1/orders/:orderId/settle endpoint.
// Settling an already-settled order succeeds without side effects.
func (h *SettlementHandler) Settle(c *gin.Context) {
	orderID := c.Param("orderId")

	var req dto.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid settle request format", map[string]any{
			"order_id": orderID,
			"error":    err.Error(),
		})
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	amount, err := entity.ParseAmount(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(err),
			Message: err.Error(),
		})
		return
	}

	settled, err := h.service.Settle(c.Request.Context(), orderID, req.UserID, amount)
	if err != nil {
		h.logger.Error("Settlement failed", map[string]any{
			"order_id": orderID,
			"error":    err.Error(),
		})
		c.JSON(httpStatus(err), dto.ErrorResponse{
			Code:    domainerr.ErrorCode(err),
			Message: err.Error(),
		})
		return
	}
	if !settled {
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrOrderNotCompleted),
			Message: "Order is not completed",
		})
		return
	}

	c.JSON(http.StatusOK, dto.SettleResponse{
		OrderID: orderID,
		Settled: true,
	})
}
