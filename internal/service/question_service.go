package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/rs/zerolog/log"
)

// QuestionService handles event question business logic.
type QuestionService struct {
	events      EventStore
	questions   QuestionStore
	activations ActivationStore
	signals     SignalPublisher
	clock       Clock
}

// NewQuestionService creates a new QuestionService. signals may be nil.
func NewQuestionService(events EventStore, questions QuestionStore, activations ActivationStore, signals SignalPublisher, clock Clock) *QuestionService {
	if signals == nil {
		signals = nopSignals{}
	}
	return &QuestionService{
		events:      events,
		questions:   questions,
		activations: activations,
		signals:     signals,
		clock:       clock,
	}
}

// ValidateEventQuestion checks prompt, option arity and the correct index bounds.
func ValidateEventQuestion(prompt string, options []string, correctIndex *int) error {
	if strings.TrimSpace(prompt) == "" {
		return invalid("prompt", "is required")
	}
	if len(options) != model.EventOptionCount {
		return invalid("options", "must contain exactly %d options, got %d", model.EventOptionCount, len(options))
	}
	for i, opt := range options {
		if strings.TrimSpace(opt) == "" {
			return invalid(fmt.Sprintf("options[%d]", i), "must not be empty")
		}
	}
	if correctIndex == nil {
		return invalid("correct_index", "is required")
	}
	if *correctIndex < 0 || *correctIndex >= len(options) {
		return invalid("correct_index", "must be between 0 and %d", len(options)-1)
	}
	return nil
}

func trimOptions(options []string) []string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = strings.TrimSpace(o)
	}
	return out
}

// Add appends a question to an event. It is visible to activation immediately.
func (s *QuestionService) Add(ctx context.Context, eventID uuid.UUID, req model.QuestionRequest) (*model.EventQuestion, error) {
	if err := ValidateEventQuestion(req.Prompt, req.Options, req.CorrectIndex); err != nil {
		return nil, err
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, fromRepo(err)
	}

	q := &model.EventQuestion{
		ID:           uuid.New(),
		EventID:      eventID,
		Prompt:       strings.TrimSpace(req.Prompt),
		Options:      trimOptions(req.Options),
		CorrectIndex: *req.CorrectIndex,
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, fromRepo(err)
	}
	return q, nil
}

// Update edits a question in place. If it is the live question, students see the
// new text on their next poll; the activation timer is not restarted.
func (s *QuestionService) Update(ctx context.Context, eventID, questionID uuid.UUID, req model.QuestionRequest) (*model.EventQuestion, error) {
	if err := ValidateEventQuestion(req.Prompt, req.Options, req.CorrectIndex); err != nil {
		return nil, err
	}
	q, err := s.questions.GetByID(ctx, eventID, questionID)
	if err != nil {
		return nil, fromRepo(err)
	}

	q.Prompt = strings.TrimSpace(req.Prompt)
	q.Options = trimOptions(req.Options)
	q.CorrectIndex = *req.CorrectIndex
	if err := s.questions.Update(ctx, q); err != nil {
		return nil, fromRepo(err)
	}

	if _, err := s.activations.RefreshQuestion(ctx, eventID, q.ForStudent()); err != nil {
		log.Warn().Err(err).Str("question_id", questionID.String()).Msg("Failed to refresh live question")
	}
	return q, nil
}

// Delete removes a question. Deleting the live question deactivates the quiz.
func (s *QuestionService) Delete(ctx context.Context, eventID, questionID uuid.UUID) error {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return fromRepo(err)
	}
	if err := s.questions.Delete(ctx, eventID, questionID); err != nil {
		return fromRepo(err)
	}

	cleared, err := s.activations.ClearIfQuestion(ctx, eventID, questionID)
	if err != nil {
		return fmt.Errorf("deactivate removed question: %w", err)
	}
	if cleared {
		s.signals.Publish(ctx, model.QuizSignal{
			Type:       model.SignalQuestionRemoved,
			EventID:    eventID,
			QuestionID: &questionID,
			At:         s.clock.now(),
		})
		log.Info().Str("event_id", eventID.String()).Str("question_id", questionID.String()).
			Msg("Active question deleted, quiz deactivated")
	}
	return nil
}

// ListForAdmin returns an event's questions including correct answers.
func (s *QuestionService) ListForAdmin(ctx context.Context, eventID uuid.UUID) ([]model.EventQuestion, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, fromRepo(err)
	}
	questions, err := s.questions.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []model.EventQuestion{}
	}
	return questions, nil
}

// ListForStudent returns an event's questions without correct answers.
func (s *QuestionService) ListForStudent(ctx context.Context, eventID uuid.UUID) ([]model.StudentQuestion, error) {
	questions, err := s.ListForAdmin(ctx, eventID)
	if err != nil {
		return nil, err
	}
	out := make([]model.StudentQuestion, 0, len(questions))
	for i := range questions {
		out = append(out, questions[i].ForStudent())
	}
	return out, nil
}
