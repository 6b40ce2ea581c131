// Package repository performs the database reads and writes.
//
// Repositories run on the gorm session opened over the traced pgx pool
// and return driver errors wrapped; translating them for clients is left
// to the HTTP error handler.
package repository

import (
	"github.com/deppfellow/event-api/internal/server"
)

// Repositories groups every repository so services receive one value.
type Repositories struct {
	Event *EventRepository
}

// NewRepositories builds the repositories on the server's database.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Event: NewEventRepository(s.DB.ORM),
	}
}
