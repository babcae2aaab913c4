package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockdesk/internal/infrastructure/storage/postgres"
)

// Pinger probes the upstream backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness endpoints.
type HealthHandler struct {
	upstream Pinger
	pool     *postgres.Pool // nil when persistence is disabled
	started  time.Time
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(upstream Pinger, pool *postgres.Pool) *HealthHandler {
	return &HealthHandler{
		upstream: upstream,
		pool:     pool,
		started:  time.Now(),
	}
}

// Live handles GET /health/live.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /health/ready: the service is ready when the
// upstream backend responds and, when configured, the audit database
// answers a ping.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if err := h.upstream.Ping(ctx); err != nil {
		checks["upstream"] = "unreachable: " + err.Error()
		healthy = false
	} else {
		checks["upstream"] = "ok"
	}

	if h.pool != nil {
		if err := h.pool.Ping(ctx); err != nil {
			checks["database"] = "unreachable: " + err.Error()
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "disabled"
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"healthy": healthy, "checks": checks})
}

// Info handles GET /health/info.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "stockdesk",
		"uptime":  time.Since(h.started).String(),
	})
}
