package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store is reachable.
type Pinger func(ctx context.Context) error

// HealthHandler serves liveness and readiness.
type HealthHandler struct {
	version string
	checks  map[string]Pinger
}

func NewHealthHandler(version string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{version: version, checks: checks}
}

func (h *HealthHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
}

// Health returns the health status of the API
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "DayPilot API is running",
		"version": h.version,
	})
}

// Ready pings every dependency and answers 503 if any of them fails.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	c.JSON(status, gin.H{"checks": results})
}
