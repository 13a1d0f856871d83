package model

import (
	"time"

	"github.com/google/uuid"
)

// Quiz is a standalone, self-paced MCQ quiz. Questions are stored as one snapshot.
type Quiz struct {
	ID              uuid.UUID      `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	DurationMinutes int            `json:"duration_minutes"`
	Tags            []string       `json:"tags"`
	Published       bool           `json:"published"`
	Live            bool           `json:"live"`
	Questions       []QuizQuestion `json:"questions"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// QuizQuestion carries per-option correctness flags.
type QuizQuestion struct {
	ID      uuid.UUID    `json:"id"`
	Prompt  string       `json:"prompt"`
	Options []QuizOption `json:"options"`
}

// QuizOption is one choice of a QuizQuestion.
type QuizOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// PublicQuiz is the participant view of a Quiz, without correctness flags.
type PublicQuiz struct {
	ID              uuid.UUID            `json:"id"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	DurationMinutes int                  `json:"duration_minutes"`
	Tags            []string             `json:"tags"`
	QuestionCount   int                  `json:"question_count"`
	Questions       []PublicQuizQuestion `json:"questions,omitempty"`
}

// PublicQuizQuestion is a question with option texts only.
type PublicQuizQuestion struct {
	ID      uuid.UUID `json:"id"`
	Prompt  string    `json:"prompt"`
	Options []string  `json:"options"`
}

// Public converts the quiz to its participant view. withQuestions=false yields a listing card.
func (q *Quiz) Public(withQuestions bool) PublicQuiz {
	pq := PublicQuiz{
		ID:              q.ID,
		Title:           q.Title,
		Description:     q.Description,
		DurationMinutes: q.DurationMinutes,
		Tags:            q.Tags,
		QuestionCount:   len(q.Questions),
	}
	if !withQuestions {
		return pq
	}
	pq.Questions = make([]PublicQuizQuestion, 0, len(q.Questions))
	for _, qq := range q.Questions {
		opts := make([]string, 0, len(qq.Options))
		for _, o := range qq.Options {
			opts = append(opts, o.Text)
		}
		pq.Questions = append(pq.Questions, PublicQuizQuestion{ID: qq.ID, Prompt: qq.Prompt, Options: opts})
	}
	return pq
}

// QuizRequest is the payload for creating or replacing a quiz.
type QuizRequest struct {
	Title           string                `json:"title" binding:"required,notblank,max=200"`
	Description     string                `json:"description" binding:"max=2000"`
	DurationMinutes int                   `json:"duration_minutes" binding:"required,min=1,max=600"`
	Tags            []string              `json:"tags" binding:"omitempty,dive,max=50"`
	Published       *bool                 `json:"published"`
	Questions       []QuizQuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// QuizQuestionRequest is one question inside a QuizRequest.
type QuizQuestionRequest struct {
	Prompt  string       `json:"prompt" binding:"required,notblank,max=2000"`
	Options []QuizOption `json:"options" binding:"required,min=2,dive"`
}

// ToggleLiveRequest sets the live flag of a quiz.
type ToggleLiveRequest struct {
	Live *bool `json:"live"`
}

// Participant identifies whoever took a standalone quiz. All fields are optional.
type Participant struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	RollNumber string `json:"roll_number,omitempty"`
}

// AttemptAnswer is one graded choice in a QuizAttempt.
type AttemptAnswer struct {
	QuestionID    uuid.UUID `json:"question_id"`
	SelectedIndex int       `json:"selected_index"`
	IsCorrect     bool      `json:"is_correct"`
}

// QuizAttempt is a terminal, immutable graded submission.
type QuizAttempt struct {
	ID              uuid.UUID       `json:"id"`
	QuizID          uuid.UUID       `json:"quiz_id"`
	Participant     Participant     `json:"participant"`
	Answers         []AttemptAnswer `json:"answers"`
	Score           int             `json:"score"`
	TotalQuestions  int             `json:"total_questions"`
	StartedAt       time.Time       `json:"started_at"`
	CompletedAt     time.Time       `json:"completed_at"`
	DurationSeconds int             `json:"duration_seconds"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Percent is the rounded score percentage.
func (a *QuizAttempt) Percent() int {
	if a.TotalQuestions == 0 {
		return 0
	}
	return int(float64(a.Score)/float64(a.TotalQuestions)*100 + 0.5)
}

// SubmitAttemptRequest is posted once a participant finishes or times out.
type SubmitAttemptRequest struct {
	Answers     []AttemptAnswerRequest `json:"answers" binding:"omitempty,dive"`
	Participant Participant            `json:"participant"`
	StartedAt   *time.Time             `json:"started_at"`
}

// AttemptAnswerRequest is one submitted choice.
type AttemptAnswerRequest struct {
	QuestionID    string `json:"question_id" binding:"required,uuid"`
	SelectedIndex int    `json:"selected_index" binding:"min=-1"`
}

// AttemptResult is returned to the participant.
type AttemptResult struct {
	AttemptID      uuid.UUID `json:"attempt_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     int       `json:"percentage"`
	DurationSecs   int       `json:"duration_seconds"`
}

// QuizAnalytics summarizes attempts for admins.
type QuizAnalytics struct {
	Attempts   int              `json:"attempts"`
	AvgScore   float64          `json:"avg_score"`
	AvgPercent float64          `json:"avg_percent"`
	Recent     []AttemptSummary `json:"recent"`
}

// AttemptSummary is one row of the recent-attempts list.
type AttemptSummary struct {
	ID             uuid.UUID   `json:"id"`
	Participant    Participant `json:"participant"`
	Score          int         `json:"score"`
	TotalQuestions int         `json:"total_questions"`
	Percent        int         `json:"percent"`
	CompletedAt    time.Time   `json:"completed_at"`
}
