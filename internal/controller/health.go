package controller

import (
	"context"
	"net/http"
	"time"

	"task-tracker/pkg/logger"

	"github.com/gin-gonic/gin"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Health returns 200 if the process is alive. Used by load balancers.
func Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Ready returns 200 if the store and, when configured, Redis are reachable.
func (tc *TaskController) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := tc.store.Ping(ctx); err != nil {
		logger.Warn(ctx, "Readiness: store ping failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "store unavailable"})
		return
	}
	if p, ok := tc.cache.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			logger.Warn(ctx, "Readiness: redis ping failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unavailable"})
			return
		}
	}
	c.String(http.StatusOK, "OK")
}
