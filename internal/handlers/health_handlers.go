package handlers

import (
	"context"
	"net/http"
	"time"

	"homestock/internal/caching"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// HealthHandlers handles liveness and readiness probes.
type HealthHandlers struct {
	db           *pgxpool.Pool
	cacheService caching.CacheService
}

func NewHealthHandlers(db *pgxpool.Pool, cacheService caching.CacheService) *HealthHandlers {
	return &HealthHandlers{
		db:           db,
		cacheService: cacheService,
	}
}

// checkTimeout bounds each dependency probe so a hung backend
// cannot stall the readiness endpoint.
const checkTimeout = 2 * time.Second

// HealthCheck handles GET /health. It only reports that the process is up.
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadinessCheck handles GET /ready. It pings Postgres and Redis and
// reports 503 until both answer.
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), checkTimeout)
	defer cancel()

	services := map[string]string{
		"database": "ready",
		"cache":    "ready",
	}
	ready := true

	if err := h.db.Ping(ctx); err != nil {
		services["database"] = "unavailable"
		ready = false
	}
	if err := h.cacheService.Ping(ctx); err != nil {
		services["cache"] = "unavailable"
		ready = false
	}

	status := "ready"
	statusCode := http.StatusOK
	if !ready {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, map[string]interface{}{
		"status":   status,
		"services": services,
	})
}
