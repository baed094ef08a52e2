package routes

import (
	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/api/middleware"
)

// SetupRoutes configures all the routes for the API
func SetupRoutes(
	router *gin.Engine,
	chargeHandler *handler.ChargeHandler,
	settlementHandler *handler.SettlementHandler,
	pointsHandler *handler.PointsHandler,
) {
	api := router.Group("/api/v1")
	{
		// POST /api/v1/charges
		api.POST("/charges", chargeHandler.Charge)

		// POST /api/v1/orders/:orderId/settle
		api.POST("/orders/:orderId/settle", settlementHandler.Settle)

		// GET /api/v1/users/:userId/points
		api.GET("/users/:userId/points", pointsHandler.GetUserPoints)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger) {
	// Apply middlewares in the correct order
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())
}
