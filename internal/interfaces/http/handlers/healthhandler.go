package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// HealthCheck is a named readiness probe such as the database ping.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthHandler struct {
	version string
	checks  []HealthCheck
	timeout time.Duration
	logger  logger.Interface
}

func NewHealthHandler(version string, checks []HealthCheck, logger logger.Interface) *HealthHandler {
	return &HealthHandler{
		version: version,
		checks:  checks,
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// Health reports 503 when any dependency check fails.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	components := make(map[string]string, len(h.checks))
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			h.logger.Warnw("health check failed", "component", check.Name, "error", err)
			components[check.Name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		components[check.Name] = "up"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}
	c.JSON(status, gin.H{
		"status":     state,
		"version":    h.version,
		"components": components,
	})
}
