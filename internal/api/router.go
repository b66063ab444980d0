package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/quayside-ops/panel-backend-go/internal/api/handlers"
	"github.com/quayside-ops/panel-backend-go/internal/api/middleware"
	"github.com/quayside-ops/panel-backend-go/internal/config"
	"github.com/quayside-ops/panel-backend-go/internal/core/shield"
	"github.com/quayside-ops/panel-backend-go/internal/panel"
	"github.com/quayside-ops/panel-backend-go/internal/websocket"
)

// NewRouter creates and configures the main HTTP router
func NewRouter(cfg *config.Config, panelClient *panel.Client, guard *shield.Shield, wsHub *websocket.Hub, logger *logrus.Logger) *gin.Engine {
	// Set gin mode based on config
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	// Global middleware. Auth runs before the shield so identity keys and
	// admin status are available to it; the shield never rejects on auth.
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandlingMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.AuthOptional(cfg.Auth.JWTSecret))
	if cfg.Shield.Enabled {
		router.Use(guard.Middleware())
	}

	h := handlers.NewHandlers(cfg, panelClient, guard, wsHub, logger)

	// Public routes
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WebSocket endpoint (no auth required for connection)
	router.GET("/ws", websocket.Handler(wsHub))

	// API v1 routes
	api := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", h.Login)
		}

		// Protected API routes (auth required)
		protected := api.Group("/")
		protected.Use(middleware.AuthRequired(cfg.Auth.JWTSecret))
		{
			protected.GET("/account", h.GetAccount)
			protected.GET("/servers", h.ListServers)
			protected.GET("/servers/:id", h.GetServer)
			protected.GET("/events", h.ListEvents)

			// Admin routes
			admin := protected.Group("/shield")
			admin.Use(middleware.AdminRequired())
			{
				admin.GET("/stats", h.ShieldStats)
			}
		}
	}

	return router
}
