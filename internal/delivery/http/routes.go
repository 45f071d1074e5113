package http

import (
	"github.com/gin-gonic/gin"

	"github.com/beepbasket/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/mappings", handler.ListMappings)
		v1.POST("/mappings", handler.AddMapping)
		v1.POST("/mappings/remove", handler.RemoveMapping)

		cache := v1.Group("/cache")
		{
			cache.POST("/add", handler.CacheAdd)
			cache.POST("/remove", handler.CacheRemove)
		}

		v1.GET("/lookup/:barcode", handler.Lookup)

		v1.POST("/scan", handler.Scan)
		v1.POST("/events/state", handler.StateChanged)
	}

	return router
}
