package handlers

import (
	"context"
	"net/http"
	"time"

	"mandirdaan/internal/caching"

	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db             Pinger
	cacheSvc       caching.CacheService
	smsMode        string
	storageEnabled bool
	startedAt      time.Time
}

// NewHealthHandlers creates a new health handlers instance
func NewHealthHandlers(db Pinger, cacheSvc caching.CacheService, smsMode string, storageEnabled bool) *HealthHandlers {
	return &HealthHandlers{
		db:             db,
		cacheSvc:       cacheSvc,
		smsMode:        smsMode,
		storageEnabled: storageEnabled,
		startedAt:      time.Now(),
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	SMSMode   string            `json:"smsMode"`
	Uptime    string            `json:"uptime"`
}

// HealthCheck reports whether the server and its dependencies are reachable
// @Summary Health check
// @Tags    health
// @Produce json
// @Success 200 {object} HealthStatus
// @Failure 503 {object} HealthStatus
// @Router  /health [get]
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	health := &HealthStatus{
		Status:    "Server is running",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
		SMSMode:   h.smsMode,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
	}

	statusCode := http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		health.Services["database"] = "unhealthy"
		health.Status = "degraded"
		statusCode = http.StatusServiceUnavailable
	} else {
		health.Services["database"] = "healthy"
	}

	// The cache is optional; an outage degrades but does not fail the check.
	if err := h.cacheSvc.Ping(ctx); err != nil {
		health.Services["cache"] = "unhealthy"
		if statusCode == http.StatusOK {
			health.Status = "degraded"
		}
	} else {
		health.Services["cache"] = "healthy"
	}

	if h.storageEnabled {
		health.Services["storage"] = "configured"
	} else {
		health.Services["storage"] = "disabled"
	}

	return c.JSON(statusCode, health)
}
