package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ByteMe6/rozetka-scrapper/browser"
	"github.com/ByteMe6/rozetka-scrapper/models"
)

// Health returns a handler for GET /api/v1/health.
//
// Reports context pool utilisation and degrades status when more pages are
// open than there are pooled contexts.
func Health(pool *browser.Pool, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := pool.Stats()

		status := "healthy"
		if stats.Contexts > 0 && stats.ActivePages > stats.Contexts {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:    status,
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			PoolStats: stats,
			Version:   "0.1.0",
		})
	}
}
