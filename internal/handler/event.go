package handler

import (
	"context"
	"math"

	"github.com/deppfellow/event-api/internal/model"
	"github.com/deppfellow/event-api/internal/server"
	"github.com/deppfellow/event-api/internal/validation"
	"github.com/labstack/echo/v4"
)

// CreateEventRequest is the body of POST /events.
//
// Fields are pointers so a missing title is told apart from an empty one
// and null optionals stay null. MaximumAttendees decodes as a float so that
// whole numbers written as 10.0 or 1e1 are accepted; Validate rejects the
// fractional ones.
type CreateEventRequest struct {
	Title            *string  `json:"title" validate:"required,min=4"`
	Details          *string  `json:"details"`
	MaximumAttendees *float64 `json:"maximumAttendees" validate:"omitnil,gt=0,lte=2147483647"`
}

func (r *CreateEventRequest) Validate() error {
	if err := validation.Validator().Struct(r); err != nil {
		return err
	}

	if r.MaximumAttendees != nil && *r.MaximumAttendees != math.Trunc(*r.MaximumAttendees) {
		return validation.CustomValidationErrors{{
			Field:   "maximumAttendees",
			Message: "must be an integer",
		}}
	}

	return nil
}

// Input narrows a validated request to the service input.
func (r *CreateEventRequest) Input() model.CreateEventInput {
	input := model.CreateEventInput{
		Title:   *r.Title,
		Details: r.Details,
	}

	if r.MaximumAttendees != nil {
		attendees := int(*r.MaximumAttendees)
		input.MaximumAttendees = &attendees
	}

	return input
}

type CreateEventResponse struct {
	EventID string `json:"eventID"`
}

// EventCreator creates events and returns their ids.
type EventCreator interface {
	CreateEvent(ctx context.Context, input model.CreateEventInput) (string, error)
}

type EventHandler struct {
	Handler
	events EventCreator
}

func NewEventHandler(s *server.Server, events EventCreator) *EventHandler {
	return &EventHandler{
		Handler: NewHandler(s),
		events:  events,
	}
}

// CreateEvent stores the event described by req.
func (h *EventHandler) CreateEvent(c echo.Context, req *CreateEventRequest) (*CreateEventResponse, error) {
	id, err := h.events.CreateEvent(c.Request().Context(), req.Input())
	if err != nil {
		return nil, err
	}

	return &CreateEventResponse{EventID: id}, nil
}
