// Package handler is the HTTP layer: it binds and validates requests,
// calls the services and shapes their results into responses.
package handler

import (
	"github.com/deppfellow/event-api/internal/server"
	"github.com/deppfellow/event-api/internal/service"
)

// Handlers groups every HTTP handler for the router.
type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Event   *EventHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		Event:   NewEventHandler(s, services.Event),
	}
}
