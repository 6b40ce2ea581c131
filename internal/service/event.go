package service

import (
	"context"
	"time"

	"github.com/deppfellow/event-api/internal/model"
	"github.com/rs/zerolog"
)

// EventStore persists events.
type EventStore interface {
	Create(ctx context.Context, event *model.Event) error
}

// EventService creates events. Every call writes a new row; there is no
// deduplication of identical requests.
type EventService struct {
	store EventStore
	now   func() time.Time
}

// Option configures an EventService.
type Option func(*EventService)

// WithClock replaces the clock used to stamp event slugs.
func WithClock(now func() time.Time) Option {
	return func(s *EventService) {
		s.now = now
	}
}

func NewEventService(store EventStore, opts ...Option) *EventService {
	s := &EventService{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateEvent stores input as a new event slugged with the current time
// and returns the generated id.
func (s *EventService) CreateEvent(ctx context.Context, input model.CreateEventInput) (string, error) {
	event := model.NewEvent(input, s.now())

	if err := s.store.Create(ctx, event); err != nil {
		return "", err
	}

	zerolog.Ctx(ctx).Info().
		Str("event_id", event.ID).
		Str("slug", event.Slug).
		Msg("event created")

	return event.ID, nil
}
