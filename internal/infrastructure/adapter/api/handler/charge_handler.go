package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
	domainerr "github.com/amirhossein-jamali/charging-settlement/internal/domain/error"
	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/usecase/workflow"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/api/dto"
)

// ChargeHandler handles charging transaction HTTP requests
type ChargeHandler struct {
	workflow *workflow.ChargeWorkflow
	logger   coreport.Logger
}

// NewChargeHandler creates a new charge handler instance
func NewChargeHandler(chargeWorkflow *workflow.ChargeWorkflow, logger coreport.Logger) *ChargeHandler {
	return &ChargeHandler{
		workflow: chargeWorkflow,
		logger:   logger,
	}
}

// Charge handles the POST /api/v1/charges endpoint. A declined charge (for
// example insufficient balance) is a successful request with committed=false;
// only infrastructure failures surface as error responses.
func (h *ChargeHandler) Charge(c *gin.Context) {
	var req dto.ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid charge request format", map[string]any{
			"error": err.Error(),
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

	result, err := h.workflow.Charge(c.Request.Context(), workflow.ChargeRequest{
		UserID:     req.UserID,
		ResourceID: req.ResourceID,
		Amount:     amount,
	})
	if err != nil {
		h.logger.Error("Charge workflow failed", map[string]any{
			"user_id":     req.UserID,
			"resource_id": req.ResourceID,
			"error":       err.Error(),
		})
		c.JSON(httpStatus(err), dto.ErrorResponse{
			Code:    domainerr.ErrorCode(err),
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.ChargeResponse{
		TxID:      result.TxID,
		Committed: result.Committed,
	})
}
