package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/event-api/internal/server"
)

// TracingMiddleware owns the New Relic related echo middleware.
//
// It needs:
//   - server: for the service name attached to every transaction
//   - nrApp: the New Relic application (nil when New Relic is disabled)
//
// There are two layers:
//  1. NewRelicMiddleware() -> starts a transaction per request
//  2. EnhanceTracing()     -> adds request attributes and notices errors
//
// With a nil application both layers pass requests through untouched.
type TracingMiddleware struct {
	server *server.Server
	nrApp  *newrelic.Application
}

func NewTracingMiddleware(s *server.Server, nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{
		server: s,
		nrApp:  nrApp,
	}
}

// NewRelicMiddleware returns the New Relic echo middleware.
//
// When nrApp is set, nrecho.Middleware:
//   - starts a transaction for each request
//   - stores it in the request context
//   - records timing and the response status
//
// This is what makes newrelic.FromContext work further down the chain.
func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		// No-op: hand back the next handler unchanged.
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing adds request attributes to the transaction and notices
// returned errors.
//
// It must run after NewRelicMiddleware, so a transaction exists, and after
// RequestID, so traces can be joined with logs by request id.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// nil when New Relic is disabled or the middleware order is wrong.
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			// NOTE: user agents are high-cardinality; keep them as attributes,
			// never as metric names.
			txn.AddAttribute("http.real_ip", c.RealIP())
			txn.AddAttribute("http.user_agent", c.Request().UserAgent())
			txn.AddAttribute("service.name", tm.server.Config.Observability.ServiceName)

			if requestID := GetRequestID(c); requestID != "" {
				txn.AddAttribute("request.id", requestID)
			}

			err := next(c)

			// Noticing the error does not handle it. It is still returned so
			// GlobalErrorHandler writes the response. nrpkgerrors keeps the
			// pkg/errors stack trace on the reported error.
			if err != nil {
				txn.NoticeError(nrpkgerrors.Wrap(err))
			}

			// Known only once the handler has written the response.
			txn.AddAttribute("http.status_code", c.Response().Status)

			return err
		}
	}
}
