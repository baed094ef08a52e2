package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainerr "github.com/amirhossein-jamali/charging-settlement/internal/domain/error"
	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/usecase/points"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/api/dto"
)

// PointsHandler handles loyalty points HTTP requests
type PointsHandler struct {
	service *points.Service
	logger  coreport.Logger
}

// NewPointsHandler creates a new points handler instance
func NewPointsHandler(service *points.Service, logger coreport.Logger) *PointsHandler {
	return &PointsHandler{
		service: service,
		logger:  logger,
	}
}

// GetUserPoints handles the GET /api/v1/users/:userId/points endpoint.
// Unknown users report a zero balance rather than an error.
func (h *PointsHandler) GetUserPoints(c *gin.Context) {
	userID := c.Param("userId")

	total, err := h.service.GetUserPoints(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to read points balance", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		c.JSON(httpStatus(err), dto.ErrorResponse{
			Code:    domainerr.ErrorCode(err),
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.PointsResponse{
		UserID: userID,
		Points: total.String(),
	})
}
