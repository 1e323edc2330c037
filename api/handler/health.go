package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/visper-inc/cartoondl/cache"
	"github.com/visper-inc/cartoondl/models"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Health returns a handler for GET /api/health.
func Health(cc *cache.Cache, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:       "healthy",
			Uptime:       time.Since(startTime).Round(time.Second).String(),
			Version:      Version,
			CacheEntries: cc.Len(),
		})
	}
}
