package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/rs/zerolog/log"
)

// Grade reports whether selected is the correct option. NoAnswerIndex is never correct.
func Grade(correctIndex, selected int) bool {
	return selected != model.NoAnswerIndex && selected == correctIndex
}

// AnswerService serves the student side of the live quiz: polling and answering.
type AnswerService struct {
	activation *ActivationService
	events     EventStore
	questions  QuestionStore
	responses  ResponseStore
	students   StudentStore
	signals    SignalPublisher
	metrics    QuizMetrics
	clock      Clock
}

// NewAnswerService creates a new AnswerService. signals and metrics may be nil.
func NewAnswerService(
	activation *ActivationService,
	events EventStore,
	questions QuestionStore,
	responses ResponseStore,
	students StudentStore,
	signals SignalPublisher,
	metrics QuizMetrics,
	clock Clock,
) *AnswerService {
	if signals == nil {
		signals = nopSignals{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &AnswerService{
		activation: activation,
		events:     events,
		questions:  questions,
		responses:  responses,
		students:   students,
		signals:    signals,
		metrics:    metrics,
		clock:      clock,
	}
}

// Submit grades and records one answer of studentID for eventID.
// The event must be Active; the answered question may differ from the live one so
// that an answer in flight across a re-activation still counts.
func (s *AnswerService) Submit(ctx context.Context, studentID int, eventID uuid.UUID, req model.SubmitAnswerRequest) (*model.SubmitAnswerResult, error) {
	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		return nil, invalid("question_id", "must be a valid UUID")
	}
	if req.SelectedIndex == nil {
		return nil, invalid("selected_index", "is required")
	}
	selected := *req.SelectedIndex

	q, err := s.questions.GetByID(ctx, eventID, questionID)
	if err != nil {
		return nil, fromRepo(err)
	}
	if selected < model.NoAnswerIndex || selected >= len(q.Options) {
		return nil, invalid("selected_index", "must be between %d and %d", model.NoAnswerIndex, len(q.Options)-1)
	}

	act, _, err := s.activation.Current(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if act == nil {
		s.metrics.AnswerRejected("no_active_question")
		return nil, ErrNoActiveQuestion
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, fromRepo(err)
	}

	now := s.clock.now()
	correct := Grade(q.CorrectIndex, selected)
	totals, err := s.responses.RecordAnswer(ctx, model.AnswerRecord{
		EventID:       eventID,
		QuestionID:    questionID,
		StudentID:     student.ID,
		StudentName:   student.Name,
		StudentEmail:  student.Email,
		RollNumber:    student.RollNumber,
		SelectedIndex: selected,
		IsCorrect:     correct,
		TimeTaken:     s.activation.Policy().ClampTimeTaken(req.TimeTaken),
		AnsweredAt:    now,
	})
	if err != nil {
		err = fromRepo(err)
		if errors.Is(err, ErrDuplicateAnswer) {
			s.metrics.AnswerRejected("duplicate")
		}
		return nil, err
	}

	s.metrics.AnswerRecorded(correct)
	s.signals.Publish(ctx, model.QuizSignal{
		Type:       model.SignalAnswerSubmitted,
		EventID:    eventID,
		QuestionID: &questionID,
		StudentID:  student.ID,
		IsCorrect:  &correct,
		TotalScore: &totals.TotalScore,
		At:         now,
	})

	return &model.SubmitAnswerResult{
		IsCorrect:     correct,
		TotalScore:    totals.TotalScore,
		TotalAnswered: totals.AnsweredCount,
	}, nil
}

// Poll tells a student what to show for eventID: the live question, nothing, or
// that the live question was already answered. It never exposes the correct index.
func (s *AnswerService) Poll(ctx context.Context, eventID uuid.UUID, studentEmail string) (*model.PollResult, error) {
	res, err := s.poll(ctx, eventID, studentEmail)
	if err != nil {
		return nil, err
	}
	s.metrics.PollServed(res.Status)
	return res, nil
}

func (s *AnswerService) poll(ctx context.Context, eventID uuid.UUID, studentEmail string) (*model.PollResult, error) {
	act, reason, err := s.activation.Current(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if act == nil {
		return &model.PollResult{Status: model.PollNone, Reason: reason}, nil
	}

	// Activations written without a snapshot are resolved from the store.
	if act.Question.ID == uuid.Nil {
		q, err := s.questions.GetByID(ctx, eventID, act.QuestionID)
		if errors.Is(fromRepo(err), ErrNotFound) {
			if _, cerr := s.activation.activations.ClearIfQuestion(ctx, eventID, act.QuestionID); cerr != nil {
				log.Warn().Err(cerr).Str("event_id", eventID.String()).Msg("Failed to clear dangling activation")
			}
			return &model.PollResult{Status: model.PollNone, Reason: model.PollReasonQuestionRemoved}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("load active question: %w", err)
		}
		act.Question = q.ForStudent()
	}

	qid := act.QuestionID
	answered, err := s.responses.HasAnswered(ctx, eventID, studentEmail, qid)
	if err != nil {
		return nil, fmt.Errorf("check answered: %w", err)
	}
	if answered {
		return &model.PollResult{Status: model.PollAlreadyAnswered, QuestionID: &qid}, nil
	}

	question := act.Question
	activatedAt := act.ActivatedAt
	return &model.PollResult{
		Status:           model.PollActive,
		Question:         &question,
		QuestionID:       &qid,
		RemainingSeconds: s.activation.Remaining(act),
		ActivatedAt:      &activatedAt,
	}, nil
}

// PollMyEvent resolves the event a student registered for and polls it.
func (s *AnswerService) PollMyEvent(ctx context.Context, studentID int) (*model.Event, *model.PollResult, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, nil, fromRepo(err)
	}
	event, err := s.events.GetByName(ctx, student.EventName)
	if err != nil {
		return nil, nil, fromRepo(err)
	}
	res, err := s.Poll(ctx, event.ID, student.Email)
	if err != nil {
		return nil, nil, err
	}
	return event, res, nil
}

// MyResponse returns a student's accumulated response for an event.
func (s *AnswerService) MyResponse(ctx context.Context, eventID uuid.UUID, studentEmail string) (*model.QuizResponse, error) {
	resp, err := s.responses.GetByStudent(ctx, eventID, studentEmail)
	if err != nil {
		return nil, fromRepo(err)
	}
	return resp, nil
}
