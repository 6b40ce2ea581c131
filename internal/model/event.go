// Package model defines the entities persisted by the service.
package model

import "time"

// SlugLayout is the ISO-8601 UTC layout, with millisecond precision,
// used for event slugs.
const SlugLayout = "2006-01-02T15:04:05.000Z"

// Event is a stored event. ID is generated by the database on insert.
type Event struct {
	ID               string  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title            string  `gorm:"not null" json:"title"`
	Details          *string `json:"details"`
	MaximumAttendees *int    `json:"maximumAttendees"`
	Slug             string  `gorm:"not null" json:"slug"`
}

// TableName pins the table name used by the ORM.
func (Event) TableName() string {
	return "events"
}

// CreateEventInput is a validated request to create an event.
type CreateEventInput struct {
	Title            string
	Details          *string
	MaximumAttendees *int
}

// NewEvent builds the entity for input, stamping the slug from createdAt.
func NewEvent(input CreateEventInput, createdAt time.Time) *Event {
	return &Event{
		Title:            input.Title,
		Details:          input.Details,
		MaximumAttendees: input.MaximumAttendees,
		Slug:             Slug(createdAt),
	}
}

// Slug formats t as an event slug.
func Slug(t time.Time) string {
	return t.UTC().Format(SlugLayout)
}
