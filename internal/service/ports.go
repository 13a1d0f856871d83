package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ptpcell/placement-backend/internal/model"
)

// Clock returns the current instant. Services default to time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// EventStore is the event persistence used by services.
type EventStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	GetByName(ctx context.Context, name string) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	Create(ctx context.Context, e *model.Event) error
	Update(ctx context.Context, e *model.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// QuestionStore is the event question persistence.
type QuestionStore interface {
	Create(ctx context.Context, q *model.EventQuestion) error
	Update(ctx context.Context, q *model.EventQuestion) error
	GetByID(ctx context.Context, eventID, questionID uuid.UUID) (*model.EventQuestion, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.EventQuestion, error)
	Delete(ctx context.Context, eventID, questionID uuid.UUID) error
}

// ActivationStore holds the Idle/Active state of each event's quiz.
type ActivationStore interface {
	Set(ctx context.Context, act *model.Activation) error
	Get(ctx context.Context, eventID uuid.UUID) (*model.Activation, error)
	ClearIfActivatedAt(ctx context.Context, eventID uuid.UUID, activatedAt time.Time) (bool, error)
	ClearIfQuestion(ctx context.Context, eventID, questionID uuid.UUID) (bool, error)
	RefreshQuestion(ctx context.Context, eventID uuid.UUID, q model.StudentQuestion) (bool, error)
	Clear(ctx context.Context, eventID uuid.UUID) error
}

// ResponseStore persists per-student quiz responses. RecordAnswer must reject a
// second answer for the same (event, question, student) atomically.
type ResponseStore interface {
	RecordAnswer(ctx context.Context, rec model.AnswerRecord) (*model.ResponseTotals, error)
	HasAnswered(ctx context.Context, eventID uuid.UUID, email string, questionID uuid.UUID) (bool, error)
	GetByStudent(ctx context.Context, eventID uuid.UUID, email string) (*model.QuizResponse, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.QuizResponse, error)
	DeleteByEvent(ctx context.Context, eventID uuid.UUID) (int64, error)
}

// StudentStore is the student registry.
type StudentStore interface {
	GetByID(ctx context.Context, id int) (*model.Student, error)
	GetByEmail(ctx context.Context, email string) (*model.Student, error)
	GetByQRToken(ctx context.Context, token string) (*model.Student, error)
	ListByEventName(ctx context.Context, eventName string) ([]model.Student, error)
	ListPaginated(ctx context.Context, f model.StudentFilter, limit, offset int) ([]model.Student, int, error)
	Create(ctx context.Context, s *model.Student) error
	Update(ctx context.Context, s *model.Student) error
	UpdateReview(ctx context.Context, id int, rv model.Review) error
	Delete(ctx context.Context, id int) error
	Upsert(ctx context.Context, s *model.Student) (bool, error)
}

// AttendanceStore records daily attendance.
type AttendanceStore interface {
	MarkOnce(ctx context.Context, a *model.Attendance) (bool, error)
	ListByStudent(ctx context.Context, studentID int) ([]model.Attendance, error)
	ListByDay(ctx context.Context, day string) ([]model.Attendance, error)
}

// AlumniStore is the alumni directory.
type AlumniStore interface {
	BulkUpsert(ctx context.Context, alumni []model.Alumni) (inserted, updated int, err error)
	ListPaginated(ctx context.Context, search string, limit, offset int) ([]model.Alumni, int, error)
}

// QuizStore persists standalone quizzes and their attempts.
type QuizStore interface {
	Create(ctx context.Context, q *model.Quiz) error
	Update(ctx context.Context, q *model.Quiz) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error)
	List(ctx context.Context, availableOnly bool) ([]model.Quiz, error)
	SetLive(ctx context.Context, id uuid.UUID, live bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	CreateAttempt(ctx context.Context, a *model.QuizAttempt) error
	AttemptStats(ctx context.Context, quizID uuid.UUID) (count int, avgScore, avgPercent float64, err error)
	RecentAttempts(ctx context.Context, quizID uuid.UUID, limit int) ([]model.QuizAttempt, error)
}

// MailQueue accepts outbound mail for asynchronous delivery.
type MailQueue interface {
	Enqueue(ctx context.Context, jobs ...model.MailJob) error
}

// SignalPublisher fans quiz state changes out to admin monitors. Publishing is
// fire-and-forget: failures are logged, never returned.
type SignalPublisher interface {
	Publish(ctx context.Context, sig model.QuizSignal)
}

// QuizMetrics observes quiz traffic.
type QuizMetrics interface {
	AnswerRecorded(correct bool)
	AnswerRejected(reason string)
	PollServed(status model.PollStatus)
	QuestionActivated()
	ActivationExpired()
}

type nopSignals struct{}

func (nopSignals) Publish(context.Context, model.QuizSignal) {}

type nopMetrics struct{}

func (nopMetrics) AnswerRecorded(bool)         {}
func (nopMetrics) AnswerRejected(string)       {}
func (nopMetrics) PollServed(model.PollStatus) {}
func (nopMetrics) QuestionActivated()          {}
func (nopMetrics) ActivationExpired()          {}
