package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/ptpcell/placement-backend/internal/repository"
	"github.com/redis/go-redis/v9"
)

// testClock is a settable Clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *testClock) Clock() Clock { return c.Now }

func newActivationStore(t *testing.T) *repository.ActivationRepository {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return repository.NewActivationRepository(rdb)
}

type memEvents struct {
	mu     sync.Mutex
	events map[uuid.UUID]model.Event
}

func newMemEvents(events ...model.Event) *memEvents {
	m := &memEvents{events: map[uuid.UUID]model.Event{}}
	for _, e := range events {
		m.events[e.ID] = e
	}
	return m
}

func (m *memEvents) GetByID(_ context.Context, id uuid.UUID) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (m *memEvents) GetByName(_ context.Context, name string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if strings.EqualFold(e.Name, name) {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memEvents) List(_ context.Context) ([]model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Event, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e)
	}
	return out, nil
}

func (m *memEvents) Create(_ context.Context, e *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	m.events[e.ID] = *e
	return nil
}

func (m *memEvents) Update(_ context.Context, e *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[e.ID]; !ok {
		return repository.ErrNotFound
	}
	m.events[e.ID] = *e
	return nil
}

func (m *memEvents) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

type memQuestions struct {
	mu        sync.Mutex
	questions map[uuid.UUID]model.EventQuestion
}

func newMemQuestions(qs ...model.EventQuestion) *memQuestions {
	m := &memQuestions{questions: map[uuid.UUID]model.EventQuestion{}}
	for _, q := range qs {
		m.questions[q.ID] = q
	}
	return m
}

func (m *memQuestions) Create(_ context.Context, q *model.EventQuestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q.OrderNum = len(m.questions) + 1
	m.questions[q.ID] = *q
	return nil
}

func (m *memQuestions) Update(_ context.Context, q *model.EventQuestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions[q.ID] = *q
	return nil
}

func (m *memQuestions) GetByID(_ context.Context, eventID, questionID uuid.UUID) (*model.EventQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[questionID]
	if !ok || q.EventID != eventID {
		return nil, repository.ErrNotFound
	}
	return &q, nil
}

func (m *memQuestions) ListByEvent(_ context.Context, eventID uuid.UUID) ([]model.EventQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.EventQuestion
	for _, q := range m.questions {
		if q.EventID == eventID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNum < out[j].OrderNum })
	return out, nil
}

func (m *memQuestions) Delete(_ context.Context, eventID, questionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[questionID]
	if !ok || q.EventID != eventID {
		return repository.ErrNotFound
	}
	delete(m.questions, questionID)
	return nil
}

type responseKey struct {
	event uuid.UUID
	email string
}

type memResponses struct {
	mu        sync.Mutex
	responses map[responseKey]*model.QuizResponse
	order     []responseKey
}

func newMemResponses() *memResponses {
	return &memResponses{responses: map[responseKey]*model.QuizResponse{}}
}

func (m *memResponses) RecordAnswer(_ context.Context, rec model.AnswerRecord) (*model.ResponseTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := responseKey{rec.EventID, strings.ToLower(rec.StudentEmail)}
	resp, ok := m.responses[key]
	if !ok {
		resp = &model.QuizResponse{
			EventID:      rec.EventID,
			StudentID:    rec.StudentID,
			StudentName:  rec.StudentName,
			StudentEmail: rec.StudentEmail,
			RollNumber:   rec.RollNumber,
			CreatedAt:    rec.AnsweredAt,
		}
		m.responses[key] = resp
		m.order = append(m.order, key)
	}
	for _, a := range resp.Answers {
		if a.QuestionID == rec.QuestionID {
			return nil, repository.ErrAlreadyAnswered
		}
	}
	resp.Answers = append(resp.Answers, model.QuizAnswer{
		QuestionID:    rec.QuestionID,
		SelectedIndex: rec.SelectedIndex,
		IsCorrect:     rec.IsCorrect,
		TimeTaken:     rec.TimeTaken,
		AnsweredAt:    rec.AnsweredAt,
	})
	if rec.IsCorrect {
		resp.TotalScore++
	}
	resp.TotalTimeTaken += rec.TimeTaken
	resp.AnsweredCount++
	resp.CompletedAt = rec.AnsweredAt
	return &model.ResponseTotals{
		TotalScore:     resp.TotalScore,
		TotalTimeTaken: resp.TotalTimeTaken,
		AnsweredCount:  resp.AnsweredCount,
	}, nil
}

func (m *memResponses) HasAnswered(_ context.Context, eventID uuid.UUID, email string, questionID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	resp, ok := m.responses[responseKey{eventID, strings.ToLower(email)}]
	if !ok {
		return false, nil
	}
	for _, a := range resp.Answers {
		if a.QuestionID == questionID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memResponses) GetByStudent(_ context.Context, eventID uuid.UUID, email string) (*model.QuizResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	resp, ok := m.responses[responseKey{eventID, strings.ToLower(email)}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *resp
	return &cp, nil
}

func (m *memResponses) ListByEvent(_ context.Context, eventID uuid.UUID) ([]model.QuizResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.QuizResponse
	for _, k := range m.order {
		if r, ok := m.responses[k]; ok && k.event == eventID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memResponses) DeleteByEvent(_ context.Context, eventID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.responses {
		if k.event == eventID {
			delete(m.responses, k)
			n++
		}
	}
	return n, nil
}

type memStudents struct {
	mu       sync.Mutex
	students []model.Student
}

func newMemStudents(students ...model.Student) *memStudents {
	return &memStudents{students: students}
}

func (m *memStudents) find(match func(*model.Student) bool) (*model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.students {
		if match(&m.students[i]) {
			st := m.students[i]
			return &st, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStudents) GetByID(_ context.Context, id int) (*model.Student, error) {
	return m.find(func(s *model.Student) bool { return s.ID == id })
}

func (m *memStudents) GetByEmail(_ context.Context, email string) (*model.Student, error) {
	return m.find(func(s *model.Student) bool { return strings.EqualFold(s.Email, email) })
}

func (m *memStudents) GetByQRToken(_ context.Context, token string) (*model.Student, error) {
	return m.find(func(s *model.Student) bool { return s.QRToken == token })
}

func (m *memStudents) ListByEventName(_ context.Context, eventName string) ([]model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Student
	for _, s := range m.students {
		if strings.EqualFold(s.EventName, eventName) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStudents) ListPaginated(_ context.Context, _ model.StudentFilter, limit, offset int) ([]model.Student, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := len(m.students)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return append([]model.Student(nil), m.students[offset:end]...), total, nil
}

func (m *memStudents) Create(_ context.Context, s *model.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.students {
		if strings.EqualFold(existing.Email, s.Email) {
			return repository.ErrDuplicate
		}
	}
	s.ID = len(m.students) + 1
	m.students = append(m.students, *s)
	return nil
}

func (m *memStudents) Update(_ context.Context, s *model.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.students {
		if m.students[i].ID == s.ID {
			m.students[i] = *s
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memStudents) UpdateReview(_ context.Context, id int, rv model.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.students {
		if m.students[i].ID == id {
			m.students[i].Review = &rv
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memStudents) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.students {
		if m.students[i].ID == id {
			m.students = append(m.students[:i], m.students[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memStudents) Upsert(_ context.Context, s *model.Student) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.students {
		if strings.EqualFold(m.students[i].Email, s.Email) {
			s.ID = m.students[i].ID
			s.QRToken = m.students[i].QRToken
			m.students[i] = *s
			return false, nil
		}
	}
	s.ID = len(m.students) + 1
	m.students = append(m.students, *s)
	return true, nil
}

type memAttendance struct {
	mu      sync.Mutex
	records []model.Attendance
}

func (m *memAttendance) MarkOnce(_ context.Context, a *model.Attendance) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.StudentID == a.StudentID && r.AttendedOn == a.AttendedOn {
			*a = r
			return false, nil
		}
	}
	a.ID = int64(len(m.records) + 1)
	m.records = append(m.records, *a)
	return true, nil
}

func (m *memAttendance) ListByStudent(_ context.Context, studentID int) ([]model.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Attendance
	for _, r := range m.records {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memAttendance) ListByDay(_ context.Context, day string) ([]model.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Attendance
	for _, r := range m.records {
		if r.AttendedOn == day {
			out = append(out, r)
		}
	}
	return out, nil
}

type memQuizzes struct {
	mu       sync.Mutex
	quizzes  map[uuid.UUID]model.Quiz
	attempts []model.QuizAttempt
}

func newMemQuizzes() *memQuizzes {
	return &memQuizzes{quizzes: map[uuid.UUID]model.Quiz{}}
}

func (m *memQuizzes) Create(_ context.Context, q *model.Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quizzes[q.ID] = *q
	return nil
}

func (m *memQuizzes) Update(_ context.Context, q *model.Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[q.ID]; !ok {
		return repository.ErrNotFound
	}
	m.quizzes[q.ID] = *q
	return nil
}

func (m *memQuizzes) GetByID(_ context.Context, id uuid.UUID) (*model.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &q, nil
}

func (m *memQuizzes) List(_ context.Context, availableOnly bool) ([]model.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Quiz
	for _, q := range m.quizzes {
		if availableOnly && !(q.Published && q.Live) {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func (m *memQuizzes) SetLive(_ context.Context, id uuid.UUID, live bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[id]
	if !ok {
		return repository.ErrNotFound
	}
	q.Live = live
	m.quizzes[id] = q
	return nil
}

func (m *memQuizzes) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.quizzes, id)
	return nil
}

func (m *memQuizzes) CreateAttempt(_ context.Context, a *model.QuizAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, *a)
	return nil
}

func (m *memQuizzes) AttemptStats(_ context.Context, quizID uuid.UUID) (int, float64, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int
	var score, pct float64
	for _, a := range m.attempts {
		if a.QuizID == quizID {
			n++
			score += float64(a.Score)
			pct += float64(a.Score) / float64(a.TotalQuestions) * 100
		}
	}
	if n == 0 {
		return 0, 0, 0, nil
	}
	return n, score / float64(n), pct / float64(n), nil
}

func (m *memQuizzes) RecentAttempts(_ context.Context, quizID uuid.UUID, limit int) ([]model.QuizAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.QuizAttempt
	for i := len(m.attempts) - 1; i >= 0 && len(out) < limit; i-- {
		if m.attempts[i].QuizID == quizID {
			out = append(out, m.attempts[i])
		}
	}
	return out, nil
}

type memAlumni struct {
	mu     sync.Mutex
	alumni []model.Alumni
}

func (m *memAlumni) BulkUpsert(_ context.Context, batch []model.Alumni) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var inserted, updated int
outer:
	for _, a := range batch {
		for i := range m.alumni {
			if m.alumni[i].Email == a.Email {
				a.ID = m.alumni[i].ID
				m.alumni[i] = a
				updated++
				continue outer
			}
		}
		a.ID = len(m.alumni) + 1
		m.alumni = append(m.alumni, a)
		inserted++
	}
	return inserted, updated, nil
}

func (m *memAlumni) ListPaginated(_ context.Context, _ string, limit, offset int) ([]model.Alumni, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := len(m.alumni)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return append([]model.Alumni(nil), m.alumni[offset:end]...), total, nil
}

type memMail struct {
	mu   sync.Mutex
	jobs []model.MailJob
	err  error
}

func (m *memMail) Enqueue(_ context.Context, jobs ...model.MailJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, jobs...)
	return nil
}

func (m *memMail) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

type recordedSignals struct {
	mu    sync.Mutex
	types []model.SignalType
}

func (r *recordedSignals) Publish(_ context.Context, sig model.QuizSignal) {
	r.mu.Lock()
	r.types = append(r.types, sig.Type)
	r.mu.Unlock()
}

func (r *recordedSignals) has(t model.SignalType) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, got := range r.types {
		if got == t {
			return true
		}
	}
	return false
}

// quizFixture wires the live quiz services over in-memory stores and a miniredis activation store.
type quizFixture struct {
	clock      *testClock
	events     *memEvents
	questions  *memQuestions
	responses  *memResponses
	students   *memStudents
	signals    *recordedSignals
	store      *repository.ActivationRepository
	activation *ActivationService
	answers    *AnswerService
	event      model.Event
	q1, q2     model.EventQuestion
	alice, bob model.Student
}

func newQuizFixture(t *testing.T) *quizFixture {
	t.Helper()
	f := &quizFixture{clock: newTestClock(), signals: &recordedSignals{}}

	f.event = model.Event{ID: uuid.New(), Name: "TechTalk 2026"}
	f.q1 = model.EventQuestion{
		ID: uuid.New(), EventID: f.event.ID, Prompt: "Capital of France?",
		Options: []string{"Berlin", "Madrid", "Paris", "Rome"}, CorrectIndex: 2, OrderNum: 1,
	}
	f.q2 = model.EventQuestion{
		ID: uuid.New(), EventID: f.event.ID, Prompt: "2 + 2 = ?",
		Options: []string{"3", "4", "5", "22"}, CorrectIndex: 1, OrderNum: 2,
	}
	f.alice = model.Student{ID: 1, Name: "Alice", Email: "alice@college.edu", RollNumber: "R001", EventName: f.event.Name}
	f.bob = model.Student{ID: 2, Name: "Bob", Email: "bob@college.edu", RollNumber: "R002", EventName: f.event.Name}

	f.events = newMemEvents(f.event)
	f.questions = newMemQuestions(f.q1, f.q2)
	f.responses = newMemResponses()
	f.students = newMemStudents(f.alice, f.bob)

	f.store = newActivationStore(t)
	f.activation = NewActivationService(f.events, f.questions, f.store, f.signals, nil,
		ExpiryPolicy{Window: DefaultQuizWindow}, f.clock.Clock())
	f.answers = NewAnswerService(f.activation, f.events, f.questions, f.responses, f.students, f.signals, nil, f.clock.Clock())
	return f
}

func (f *quizFixture) activate(t *testing.T, q model.EventQuestion) {
	t.Helper()
	_, err := f.activation.Activate(context.Background(), f.event.ID, q.ID)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
}

func answer(q model.EventQuestion, selected, timeTaken int) model.SubmitAnswerRequest {
	return model.SubmitAnswerRequest{QuestionID: q.ID.String(), SelectedIndex: &selected, TimeTaken: timeTaken}
}
