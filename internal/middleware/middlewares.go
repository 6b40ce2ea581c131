// Package middleware holds the echo middleware shared by every route:
// request ids, request-scoped loggers, access logs, CORS, panic recovery,
// security headers, rate limiting, New Relic tracing and the global error
// handler.
package middleware

import (
	"github.com/deppfellow/event-api/internal/server"
)

// Middlewares groups the middleware components built from the server.
type Middlewares struct {
	Global          *GlobalMiddlewares
	ContextEnhancer *ContextEnhancer
	Tracing         *TracingMiddleware
	RateLimit       *RateLimitMiddleware
}

// NewMiddlewares builds every middleware component once. Tracing degrades
// to a no-op when the server has no New Relic application.
func NewMiddlewares(s *server.Server) *Middlewares {
	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, s.LoggerService.GetApplication()),
		RateLimit:       NewRateLimitMiddleware(s),
	}
}
