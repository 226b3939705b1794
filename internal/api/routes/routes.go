// Package routes wires the HTTP surface spec.md §6 defines onto a
// *gin.Engine, in the same registration-order-matters style the teacher
// uses: request-scoped middleware first, then the banking routes grouped by
// resource.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nsparik/fund-transfer-engine/internal/api/handlers"
	"github.com/nsparik/fund-transfer-engine/internal/api/middleware"
)

// Register wires every route in spec.md §6's HTTP surface table onto
// router, using deps for every handler that needs an application service.
func Register(router *gin.Engine, deps handlers.Dependencies, healthHandler gin.HandlerFunc) {
	router.Use(middleware.Recovery())
	router.Use(middleware.Correlation())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.Prometheus())
	router.Use(middleware.RequireJSON())

	router.POST("/accounts", handlers.MakeCreateAccountHandler(deps))
	router.GET("/accounts/:id", handlers.MakeGetAccountHandler(deps))
	router.POST("/accounts/:id/freeze", handlers.MakeFreezeHandler(deps))
	router.POST("/accounts/:id/unfreeze", handlers.MakeUnfreezeHandler(deps))
	router.POST("/accounts/:id/close", handlers.MakeCloseHandler(deps))
	router.GET("/accounts/:id/transfers", handlers.MakeListAccountTransfersHandler(deps))
	router.GET("/accounts/:id/statement", handlers.MakeStatementHandler(deps))

	router.POST("/transfers", handlers.MakeInitiateTransferHandler(deps))
	router.GET("/transfers/:id", handlers.MakeGetTransferHandler(deps))
	router.GET("/transfers", handlers.MakeListTransfersHandler(deps))
	router.POST("/transfers/:id/reverse", handlers.MakeReverseTransferHandler(deps))

	router.GET("/health", healthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
