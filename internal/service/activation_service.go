package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/rs/zerolog/log"
)

// ActivationService owns the Idle/Active state machine of each event's quiz.
// Every read goes through the expiry policy; an expired activation is cleared on the spot.
type ActivationService struct {
	events      EventStore
	questions   QuestionStore
	activations ActivationStore
	signals     SignalPublisher
	metrics     QuizMetrics
	policy      ExpiryPolicy
	clock       Clock
}

// NewActivationService creates a new ActivationService. signals and metrics may be nil.
func NewActivationService(
	events EventStore,
	questions QuestionStore,
	activations ActivationStore,
	signals SignalPublisher,
	metrics QuizMetrics,
	policy ExpiryPolicy,
	clock Clock,
) *ActivationService {
	if signals == nil {
		signals = nopSignals{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &ActivationService{
		events:      events,
		questions:   questions,
		activations: activations,
		signals:     signals,
		metrics:     metrics,
		policy:      policy,
		clock:       clock,
	}
}

// Policy returns the expiry policy in force.
func (s *ActivationService) Policy() ExpiryPolicy {
	return s.policy
}

// Activate puts questionID live for eventID, replacing any active question.
// Concurrent activations resolve as last write wins.
func (s *ActivationService) Activate(ctx context.Context, eventID, questionID uuid.UUID) (*model.Activation, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, fromRepo(err)
	}
	q, err := s.questions.GetByID(ctx, eventID, questionID)
	if err != nil {
		return nil, fromRepo(err)
	}

	act := &model.Activation{
		EventID:     eventID,
		QuestionID:  q.ID,
		ActivatedAt: s.clock.now(),
		Question:    q.ForStudent(),
	}
	if err := s.activations.Set(ctx, act); err != nil {
		return nil, fmt.Errorf("store activation: %w", err)
	}

	s.metrics.QuestionActivated()
	s.signals.Publish(ctx, model.QuizSignal{
		Type:       model.SignalQuestionActivated,
		EventID:    eventID,
		QuestionID: &act.QuestionID,
		At:         act.ActivatedAt,
	})
	log.Info().Str("event_id", eventID.String()).Str("question_id", q.ID.String()).Msg("Question activated")
	return act, nil
}

// Deactivate returns the event to Idle. Idempotent on Idle.
func (s *ActivationService) Deactivate(ctx context.Context, eventID uuid.UUID) error {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return fromRepo(err)
	}
	if err := s.activations.Clear(ctx, eventID); err != nil {
		return fmt.Errorf("clear activation: %w", err)
	}

	s.signals.Publish(ctx, model.QuizSignal{
		Type:    model.SignalQuestionDeactivated,
		EventID: eventID,
		At:      s.clock.now(),
	})
	log.Info().Str("event_id", eventID.String()).Msg("Quiz deactivated")
	return nil
}

// Current returns the live activation of an event, or nil with the reason it is Idle
// (model.PollReasonIdle or model.PollReasonExpired). An activation found expired is
// cleared before returning, unless a newer activation replaced it meanwhile.
func (s *ActivationService) Current(ctx context.Context, eventID uuid.UUID) (*model.Activation, string, error) {
	act, err := s.activations.Get(ctx, eventID)
	if err != nil {
		return nil, "", fmt.Errorf("load activation: %w", err)
	}
	if act == nil {
		return nil, model.PollReasonIdle, nil
	}

	now := s.clock.now()
	if !s.policy.Expired(act.ActivatedAt, now) {
		return act, "", nil
	}

	cleared, err := s.activations.ClearIfActivatedAt(ctx, eventID, act.ActivatedAt)
	if err != nil {
		return nil, "", fmt.Errorf("expire activation: %w", err)
	}
	if cleared {
		s.metrics.ActivationExpired()
		s.signals.Publish(ctx, model.QuizSignal{
			Type:       model.SignalQuestionExpired,
			EventID:    eventID,
			QuestionID: &act.QuestionID,
			At:         now,
		})
		log.Debug().Str("event_id", eventID.String()).Str("question_id", act.QuestionID.String()).
			Msg("Activation expired")
	}
	return nil, model.PollReasonExpired, nil
}

// Status returns the event with its live activation state applied.
func (s *ActivationService) Status(ctx context.Context, eventID uuid.UUID) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fromRepo(err)
	}
	act, _, err := s.Current(ctx, eventID)
	if err != nil {
		return nil, err
	}
	event.ApplyActivation(act)
	return event, nil
}

// Remaining is the number of whole seconds left on act under the effective window.
func (s *ActivationService) Remaining(act *model.Activation) int {
	return s.policy.Remaining(act.ActivatedAt, s.clock.now())
}

// RemainingSeconds is the time left on an event's live question, or 0 when Idle.
func (s *ActivationService) RemainingSeconds(event *model.Event) int {
	if event == nil || event.QuestionActivatedAt == nil {
		return 0
	}
	return s.policy.Remaining(*event.QuestionActivatedAt, s.clock.now())
}
