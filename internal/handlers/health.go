package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/notracepdf/notracepdf/internal/config"
)

// HealthHandler serves the liveness endpoint and the cache-header canary.
// Both run through the full middleware chain on purpose: they are the
// routes monitoring uses to verify the blanket header policy stays wired.
type HealthHandler struct {
	appName string
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(cfg config.Config) *HealthHandler {
	return &HealthHandler{appName: cfg.App.Name}
}

// Register mounts GET /health and GET /test-cache.
func (h *HealthHandler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.HEAD("/health", h.HealthHead)
	e.GET("/test-cache", h.TestCache)
}

// Health returns 200 JSON {"status":"ok","app":<name>}.
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"app":    h.appName,
	})
}

// HealthHead returns 200 No Content for health checks.
func (h *HealthHandler) HealthHead(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// TestCache returns a fixed body for verifying cache headers are applied.
func (h *HealthHandler) TestCache(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "cache headers should be present in response",
	})
}
