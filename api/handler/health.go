package handler

import (
	"net/http"
	"time"

	"github.com/Farouk858/product-radar/models"
	"github.com/gin-gonic/gin"
)

// Version is reported by the health endpoint.
const Version = "0.2.0"

// PoolReporter exposes browser page pool utilisation.
type PoolReporter interface {
	PoolStats() models.PoolStats
}

// Health returns a handler for GET /api/v1/health.
//
// Status degrades when more than 80% of browser pages are active. pool is
// nil when no browser is running.
func Health(pool PoolReporter, engineName string, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := models.HealthResponse{
			Status:  "healthy",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Engine:  engineName,
			Version: Version,
		}

		if pool != nil {
			stats := pool.PoolStats()
			resp.PoolStats = &stats
			if stats.MaxPages > 0 && stats.ActivePages > int(float64(stats.MaxPages)*0.8) {
				resp.Status = "degraded"
			}
		}

		c.JSON(http.StatusOK, resp)
	}
}
