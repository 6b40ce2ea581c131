package router

import (
	"github.com/deppfellow/event-api/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers the health check and API docs.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)
	r.Static("/static", "static")
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
