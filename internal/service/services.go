// Package service holds the business logic between handlers and
// repositories.
package service

import (
	"github.com/deppfellow/event-api/internal/repository"
	"github.com/deppfellow/event-api/internal/server"
)

type Services struct {
	Event *EventService
}

func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	return &Services{
		Event: NewEventService(repos.Event),
	}
}
