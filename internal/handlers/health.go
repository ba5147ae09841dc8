package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const serviceName = "catalog-service"

// Pinger is satisfied by repository.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck reports liveness without touching dependencies.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} gin.H
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   serviceName,
		"timestamp": time.Now().UTC(),
	})
}

// ReadinessCheck answers 503 until the database responds.
// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} gin.H
// @Failure 503 {object} gin.H
// @Router /ready [get]
func ReadinessCheck(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"service":   serviceName,
				"timestamp": time.Now().UTC(),
				"error":     "database connection failed",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"service":   serviceName,
			"timestamp": time.Now().UTC(),
			"checks": gin.H{
				"database": "connected",
			},
		})
	}
}
