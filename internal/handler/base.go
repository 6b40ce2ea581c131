package handler

import (
	"reflect"
	"time"

	"github.com/deppfellow/event-api/internal/middleware"
	"github.com/deppfellow/event-api/internal/server"
	"github.com/deppfellow/event-api/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Handler carries the shared dependencies every concrete handler embeds.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint: it receives a bound and validated
// request and returns the response body or an error.
//
// Req is a pointer to a request struct.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// Handle adapts a typed endpoint into an echo.HandlerFunc.
//
// For every request it:
//  1. allocates a fresh Req (see newRequest)
//  2. binds the body into it and validates it
//  3. calls fn with the validated request
//  4. writes fn's result as JSON with the given status
//
// Each phase is timed, logged and, when a New Relic transaction is active,
// recorded as transaction attributes. Errors are never written here: they
// are returned so GlobalErrorHandler renders them in one place.
//
// Usage:
//
//	e.POST("/events", Handle(h.Handler, h.CreateEvent, http.StatusCreated))
func Handle[Req validation.Validatable, Res any](h Handler, fn HandlerFunc[Req, Res], status int) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := newRequest[Req]()

		result, err := handleRequest(c, req, fn)
		if err != nil {
			return err
		}

		return c.JSON(status, result)
	}
}

// newRequest allocates the struct Req points to.
//
// Req is a pointer type such as *CreateEventRequest, so its zero value is
// nil. reflect.New gives a new zeroed struct per call; a Req captured once
// by Handle would be shared by concurrent requests and keep fields from
// earlier bodies.
func newRequest[Req validation.Validatable]() Req {
	var zero Req
	return reflect.New(reflect.TypeOf(zero).Elem()).Interface().(Req)
}

func handleRequest[Req validation.Validatable, Res any](c echo.Context, req Req, fn HandlerFunc[Req, Res]) (Res, error) {
	var empty Res

	start := time.Now()
	route := c.Path()

	// nil when New Relic is disabled; every txn use below is guarded.
	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", route)
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", "handler").
		Str("route", route).
		Logger()

	logger.Info().Msg("handling request")

	// Validation failures are client errors: warn, not error.
	validationStart := time.Now()
	if err := validation.BindAndValidate(c, req); err != nil {
		validationDuration := time.Since(validationStart)

		logger.Warn().
			Err(err).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
		}

		return empty, err
	}

	validationDuration := time.Since(validationStart)
	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	logger.Debug().
		Dur("validation_duration", validationDuration).
		Msg("request validation successful")

	// Errors from fn are returned as-is. GlobalErrorHandler maps storage
	// errors through sqlerr.
	handlerStart := time.Now()
	result, err := fn(c, req)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		logger.Error().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", time.Since(start)).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		}

		return empty, err
	}

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", time.Since(start).Milliseconds())
	}

	logger.Info().
		Dur("handler_duration", handlerDuration).
		Dur("validation_duration", validationDuration).
		Dur("total_duration", time.Since(start)).
		Msg("request completed successfully")

	return result, nil
}
