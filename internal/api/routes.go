package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up the API routes
func SetupRoutes(handler *Handler, logger *slog.Logger) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(Recovery())
	router.Use(CORS())
	router.Use(Logger(logger))

	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1
	v1 := router.Group("/api/v1")
	{
		runs := v1.Group("/runs")
		{
			runs.POST("", handler.IngestRuns)
			runs.GET("/stats", handler.GetStats)
			runs.GET("/timeline", handler.GetTimeline)
			runs.GET("/groups/website", handler.GetWebsiteGroups)
			runs.GET("/groups/date", handler.GetDateGroups)
			runs.GET("/:id/result", handler.GetRunResult)
		}

		v1.GET("/websites/summary", handler.GetWebsiteSummaries)
		v1.POST("/normalize/:type", handler.Normalize)
	}

	return router
}
