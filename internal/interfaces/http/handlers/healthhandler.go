package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/castpass/castpass/internal/shared/logger"
	"github.com/castpass/castpass/internal/shared/version"
)

type HealthHandler struct {
	ping   func(ctx context.Context) error
	logger logger.Interface
}

// NewHealthHandler reports the service unhealthy whenever ping fails.
func NewHealthHandler(ping func(ctx context.Context) error, logger logger.Interface) *HealthHandler {
	return &HealthHandler{
		ping:   ping,
		logger: logger,
	}
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		h.logger.Warnw("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"service":  "castpass",
			"database": "unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  "castpass",
		"database": "ok",
	})
}

// Version handles GET /version to return the current application version
func (h *HealthHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": version.String(),
	})
}
