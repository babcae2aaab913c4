// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"stockdesk/internal/domain/dashboard"
	"stockdesk/internal/domain/incoming"
	"stockdesk/internal/domain/reports"
	"stockdesk/internal/infrastructure/http/v1/handlers"
	"stockdesk/internal/infrastructure/http/v1/middleware"
	"stockdesk/internal/infrastructure/storage/postgres"
	"stockdesk/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// TokenValidator for session validation
	TokenValidator middleware.TokenValidator

	// Incoming orchestrates record fetches, edits and history
	Incoming *incoming.Service

	// Dashboard aggregates reconciled positions
	Dashboard *dashboard.Service

	// Reports renders CSV exports
	Reports *reports.Service

	// Upstream probes the backend for readiness
	Upstream handlers.Pinger

	// Pool is the optional audit-store pool (nil disables persistence)
	Pool *postgres.Pool

	// Snapshots serves raw persisted audit payloads (nil when disabled)
	Snapshots handlers.SnapshotStore
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no session required)
	healthHandler := handlers.NewHealthHandler(cfg.Upstream, cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()

	// API v1, session required
	api := router.Group("/api/v1")
	api.Use(middleware.Session(cfg.TokenValidator))
	{
		incomingHandler := handlers.NewIncomingHandler(base, cfg.Incoming, cfg.Snapshots)
		incomingHandler.RegisterRoutes(api.Group("/inventory/incoming"))

		outgoingHandler := handlers.NewOutgoingHandler(base)
		outgoingHandler.RegisterRoutes(api.Group("/inventory/outgoing"))

		dashboardHandler := handlers.NewDashboardHandler(base, cfg.Dashboard)
		dashboardHandler.RegisterRoutes(api.Group("/dashboard"))

		reportsHandler := handlers.NewReportsHandler(base, cfg.Reports)
		reportsHandler.RegisterRoutes(api.Group("/reports"))
	}

	return router
}
