// Package router builds the echo router: global middleware order, the
// error handler and route registration.
package router

import (
	"net/http"

	"github.com/deppfellow/event-api/internal/handler"
	"github.com/deppfellow/event-api/internal/middleware"
	"github.com/deppfellow/event-api/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter returns the configured echo instance.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// Order matters: the request id feeds tracing and the context logger,
	// which the access log and handlers read.
	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)
	registerEventRoutes(router, h, middlewares)

	return router
}

func registerEventRoutes(r *echo.Echo, h *handler.Handlers, m *middleware.Middlewares) {
	var routeMiddleware []echo.MiddlewareFunc
	if m.RateLimit.Enabled() {
		routeMiddleware = append(routeMiddleware, m.RateLimit.Limit())
	}

	r.POST("/events", handler.Handle(h.Event.Handler, h.Event.CreateEvent, http.StatusCreated), routeMiddleware...)
}
