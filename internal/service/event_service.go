package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/rs/zerolog/log"
)

// EventService handles event business logic.
type EventService struct {
	events      EventStore
	activations ActivationStore
	activation  *ActivationService
}

// NewEventService creates a new EventService.
func NewEventService(events EventStore, activations ActivationStore, activation *ActivationService) *EventService {
	return &EventService{events: events, activations: activations, activation: activation}
}

// List returns all events with their live quiz state.
func (s *EventService) List(ctx context.Context) ([]model.Event, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, err
	}
	if events == nil {
		return []model.Event{}, nil
	}
	for i := range events {
		act, _, err := s.activation.Current(ctx, events[i].ID)
		if err != nil {
			return nil, err
		}
		events[i].ApplyActivation(act)
	}
	return events, nil
}

// Get returns one event with its live quiz state.
func (s *EventService) Get(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	return s.activation.Status(ctx, id)
}

// Create registers a new event. Names are unique.
func (s *EventService) Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	e := &model.Event{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		EventDate:   req.EventDate,
	}
	if err := s.events.Create(ctx, e); err != nil {
		return nil, fromRepo(err)
	}
	log.Info().Str("event_id", e.ID.String()).Str("name", e.Name).Msg("Event created")
	return e, nil
}

// Update edits an event. Renaming moves its registered students along.
func (s *EventService) Update(ctx context.Context, id uuid.UUID, req model.UpdateEventRequest) (*model.Event, error) {
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	e.Name = name
	e.Description = strings.TrimSpace(req.Description)
	e.EventDate = req.EventDate
	if err := s.events.Update(ctx, e); err != nil {
		return nil, fromRepo(err)
	}
	return e, nil
}

// Delete removes an event with its questions and responses, and drops any live activation.
func (s *EventService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.events.Delete(ctx, id); err != nil {
		return fromRepo(err)
	}
	if err := s.activations.Clear(ctx, id); err != nil {
		return fmt.Errorf("clear activation: %w", err)
	}
	log.Info().Str("event_id", id.String()).Msg("Event deleted")
	return nil
}
