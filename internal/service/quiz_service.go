package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/rs/zerolog/log"
)

// recentAttemptsLimit bounds the attempts listed in quiz analytics.
const recentAttemptsLimit = 25

// QuizService handles standalone, self-paced quizzes.
type QuizService struct {
	quizzes QuizStore
	clock   Clock
}

// NewQuizService creates a new QuizService.
func NewQuizService(quizzes QuizStore, clock Clock) *QuizService {
	return &QuizService{quizzes: quizzes, clock: clock}
}

// normalizeQuiz validates a quiz payload and converts it into stored questions.
// Each question needs at least two options and at least one correct option.
func normalizeQuiz(req model.QuizRequest) ([]model.QuizQuestion, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, invalid("title", "is required")
	}
	if req.DurationMinutes < 1 {
		return nil, invalid("duration_minutes", "must be at least 1")
	}
	if len(req.Questions) == 0 {
		return nil, invalid("questions", "at least one question is required")
	}

	out := make([]model.QuizQuestion, 0, len(req.Questions))
	for i, q := range req.Questions {
		field := fmt.Sprintf("questions[%d]", i)
		if strings.TrimSpace(q.Prompt) == "" {
			return nil, invalid(field+".prompt", "is required")
		}
		if len(q.Options) < 2 {
			return nil, invalid(field+".options", "at least two options are required")
		}
		opts := make([]model.QuizOption, 0, len(q.Options))
		hasCorrect := false
		for j, o := range q.Options {
			text := strings.TrimSpace(o.Text)
			if text == "" {
				return nil, invalid(fmt.Sprintf("%s.options[%d]", field, j), "must not be empty")
			}
			hasCorrect = hasCorrect || o.IsCorrect
			opts = append(opts, model.QuizOption{Text: text, IsCorrect: o.IsCorrect})
		}
		if !hasCorrect {
			return nil, invalid(field+".options", "at least one option must be correct")
		}
		out = append(out, model.QuizQuestion{ID: uuid.New(), Prompt: strings.TrimSpace(q.Prompt), Options: opts})
	}
	return out, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Create stores a new quiz. Quizzes are published unless told otherwise and start not live.
func (s *QuizService) Create(ctx context.Context, req model.QuizRequest) (*model.Quiz, error) {
	questions, err := normalizeQuiz(req)
	if err != nil {
		return nil, err
	}
	published := true
	if req.Published != nil {
		published = *req.Published
	}

	q := &model.Quiz{
		ID:              uuid.New(),
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		DurationMinutes: req.DurationMinutes,
		Tags:            normalizeTags(req.Tags),
		Published:       published,
		Questions:       questions,
	}
	if err := s.quizzes.Create(ctx, q); err != nil {
		return nil, fromRepo(err)
	}
	log.Info().Str("quiz_id", q.ID.String()).Int("questions", len(questions)).Msg("Quiz created")
	return q, nil
}

// Update replaces a quiz's content. Question ids are regenerated.
func (s *QuizService) Update(ctx context.Context, id uuid.UUID, req model.QuizRequest) (*model.Quiz, error) {
	questions, err := normalizeQuiz(req)
	if err != nil {
		return nil, err
	}
	q, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err)
	}

	q.Title = strings.TrimSpace(req.Title)
	q.Description = strings.TrimSpace(req.Description)
	q.DurationMinutes = req.DurationMinutes
	q.Tags = normalizeTags(req.Tags)
	if req.Published != nil {
		q.Published = *req.Published
	}
	q.Questions = questions
	if err := s.quizzes.Update(ctx, q); err != nil {
		return nil, fromRepo(err)
	}
	return q, nil
}

// Delete removes a quiz and its attempts.
func (s *QuizService) Delete(ctx context.Context, id uuid.UUID) error {
	return fromRepo(s.quizzes.Delete(ctx, id))
}

// Get returns the admin view of a quiz.
func (s *QuizService) Get(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	q, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err)
	}
	return q, nil
}

// List returns every quiz for admins.
func (s *QuizService) List(ctx context.Context) ([]model.Quiz, error) {
	return s.quizzes.List(ctx, false)
}

// SetLive sets the live flag. A nil live toggles the current value.
func (s *QuizService) SetLive(ctx context.Context, id uuid.UUID, live *bool) (bool, error) {
	q, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		return false, fromRepo(err)
	}
	next := !q.Live
	if live != nil {
		next = *live
	}
	if err := s.quizzes.SetLive(ctx, id, next); err != nil {
		return false, fromRepo(err)
	}
	return next, nil
}

// ListAvailable returns listing cards of published, live quizzes.
func (s *QuizService) ListAvailable(ctx context.Context) ([]model.PublicQuiz, error) {
	quizzes, err := s.quizzes.List(ctx, true)
	if err != nil {
		return nil, err
	}
	out := make([]model.PublicQuiz, 0, len(quizzes))
	for i := range quizzes {
		out = append(out, quizzes[i].Public(false))
	}
	return out, nil
}

// GetPublic returns the participant view of an available quiz.
func (s *QuizService) GetPublic(ctx context.Context, id uuid.UUID) (*model.PublicQuiz, error) {
	q, err := s.available(ctx, id)
	if err != nil {
		return nil, err
	}
	pq := q.Public(true)
	return &pq, nil
}

func (s *QuizService) available(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	q, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err)
	}
	if !q.Published || !q.Live {
		return nil, ErrQuizUnavailable
	}
	return q, nil
}

// GradeAttempt grades answers against a quiz snapshot. Only the first answer per
// question counts; unknown questions are dropped and out-of-range choices are incorrect.
func GradeAttempt(q *model.Quiz, answers []model.AttemptAnswerRequest) ([]model.AttemptAnswer, int) {
	byID := make(map[uuid.UUID]*model.QuizQuestion, len(q.Questions))
	for i := range q.Questions {
		byID[q.Questions[i].ID] = &q.Questions[i]
	}

	graded := make([]model.AttemptAnswer, 0, len(answers))
	seen := make(map[uuid.UUID]struct{}, len(answers))
	score := 0
	for _, a := range answers {
		qid, err := uuid.Parse(a.QuestionID)
		if err != nil {
			continue
		}
		qq, known := byID[qid]
		if !known {
			continue
		}
		if _, dup := seen[qid]; dup {
			continue
		}
		seen[qid] = struct{}{}

		correct := false
		if a.SelectedIndex >= 0 && a.SelectedIndex < len(qq.Options) {
			correct = qq.Options[a.SelectedIndex].IsCorrect
		}
		if correct {
			score++
		}
		graded = append(graded, model.AttemptAnswer{QuestionID: qid, SelectedIndex: a.SelectedIndex, IsCorrect: correct})
	}
	return graded, score
}

// SubmitAttempt grades a finished attempt in one shot and stores it as a terminal record.
func (s *QuizService) SubmitAttempt(ctx context.Context, quizID uuid.UUID, req model.SubmitAttemptRequest) (*model.AttemptResult, error) {
	q, err := s.available(ctx, quizID)
	if err != nil {
		return nil, err
	}

	completed := s.clock.now()
	started := completed
	if req.StartedAt != nil && !req.StartedAt.IsZero() && req.StartedAt.Before(completed) {
		started = req.StartedAt.UTC()
	}
	duration := int(math.Round(completed.Sub(started).Seconds()))
	if duration < 1 {
		duration = 1
	}
	if limit := q.DurationMinutes * 60; limit > 0 && duration > limit {
		duration = limit
	}

	answers, score := GradeAttempt(q, req.Answers)
	attempt := &model.QuizAttempt{
		ID:     uuid.New(),
		QuizID: q.ID,
		Participant: model.Participant{
			Name:       strings.TrimSpace(req.Participant.Name),
			Email:      strings.ToLower(strings.TrimSpace(req.Participant.Email)),
			RollNumber: strings.TrimSpace(req.Participant.RollNumber),
		},
		Answers:         answers,
		Score:           score,
		TotalQuestions:  len(q.Questions),
		StartedAt:       started,
		CompletedAt:     completed,
		DurationSeconds: duration,
	}
	if err := s.quizzes.CreateAttempt(ctx, attempt); err != nil {
		return nil, fmt.Errorf("store attempt: %w", err)
	}

	return &model.AttemptResult{
		AttemptID:      attempt.ID,
		Score:          score,
		TotalQuestions: attempt.TotalQuestions,
		Percentage:     attempt.Percent(),
		DurationSecs:   duration,
	}, nil
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Analytics summarizes attempts of a quiz and lists the most recent ones.
func (s *QuizService) Analytics(ctx context.Context, quizID uuid.UUID) (*model.QuizAnalytics, error) {
	if _, err := s.quizzes.GetByID(ctx, quizID); err != nil {
		return nil, fromRepo(err)
	}
	count, avgScore, avgPercent, err := s.quizzes.AttemptStats(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("attempt stats: %w", err)
	}
	recent, err := s.quizzes.RecentAttempts(ctx, quizID, recentAttemptsLimit)
	if err != nil {
		return nil, fmt.Errorf("recent attempts: %w", err)
	}

	out := &model.QuizAnalytics{
		Attempts:   count,
		AvgScore:   roundTo(avgScore, 2),
		AvgPercent: roundTo(avgPercent, 1),
		Recent:     make([]model.AttemptSummary, 0, len(recent)),
	}
	for i := range recent {
		a := &recent[i]
		out.Recent = append(out.Recent, model.AttemptSummary{
			ID:             a.ID,
			Participant:    a.Participant,
			Score:          a.Score,
			TotalQuestions: a.TotalQuestions,
			Percent:        a.Percent(),
			CompletedAt:    a.CompletedAt,
		})
	}
	return out, nil
}
