package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/collegehub/internal/monitoring"
)

func registerHealthRoutes(r *gin.Engine, manager *monitoring.HealthManager) {
	registerHealthEndpoints(r, manager)
	registerHealthEndpoints(r.Group("/api"), manager)
}

func registerHealthEndpoints(router gin.IRouter, manager *monitoring.HealthManager) {
	router.GET("/health", func(c *gin.Context) {
		report := manager.EvaluateReadiness(c.Request.Context())
		c.JSON(healthStatusCode(report), gin.H{
			"success":    report.Success,
			"status":     report.Status,
			"checked_at": time.Now().UTC(),
		})
	})

	router.GET("/health/live", func(c *gin.Context) {
		writeHealthReport(c, manager.EvaluateLiveness(c.Request.Context()))
	})

	router.GET("/health/ready", func(c *gin.Context) {
		writeHealthReport(c, manager.EvaluateReadiness(c.Request.Context()))
	})
}

func writeHealthReport(c *gin.Context, report monitoring.HealthReport) {
	c.JSON(healthStatusCode(report), gin.H{
		"success":    report.Success,
		"status":     report.Status,
		"checks":     report.Checks,
		"checked_at": time.Now().UTC(),
	})
}

func healthStatusCode(report monitoring.HealthReport) int {
	if !report.Success {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
