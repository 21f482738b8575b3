package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(s.recoveryMiddleware(), s.loggingMiddleware(), s.corsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	// Scoring and rollups
	api.POST("/analyze", s.app.SentimentHandler.AnalyzeHandler)
	api.GET("/aggregate", s.app.SentimentHandler.AggregateHandler)
	api.POST("/process", s.app.SentimentHandler.ProcessHandler)

	// Alerts
	api.GET("/alerts", s.app.AlertsHandler.ListAlertsHandler)
	api.POST("/alerts/:id/dismiss", s.app.AlertsHandler.DismissHandler)
	api.POST("/alerts/:id/resolve", s.app.AlertsHandler.ResolveHandler)

	// Watch-list
	api.GET("/watchlist", s.app.AlertsHandler.ListWatchlistHandler)
	api.POST("/watchlist", s.app.AlertsHandler.AddWatchlistHandler)
	api.PATCH("/watchlist/:name", s.app.AlertsHandler.UpdateWatchlistHandler)
	api.DELETE("/watchlist/:name", s.app.AlertsHandler.RemoveWatchlistHandler)

	// Jobs and status
	api.GET("/jobs", s.app.SchedulerHandler.ListJobsHandler)
	api.POST("/jobs/:name/trigger", s.app.SchedulerHandler.TriggerJobHandler)
	api.GET("/status", s.app.StatusHandler.GetStatusHandler)

	return router
}
