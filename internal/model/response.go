package model

import (
	"time"

	"github.com/google/uuid"
)

// QuizResponse accumulates one student's answers for one event.
type QuizResponse struct {
	ID             int64        `json:"id"`
	EventID        uuid.UUID    `json:"event_id"`
	StudentID      int          `json:"student_id"`
	StudentName    string       `json:"student_name"`
	StudentEmail   string       `json:"student_email"`
	RollNumber     string       `json:"roll_number"`
	TotalScore     int          `json:"total_score"`
	TotalTimeTaken int          `json:"total_time_taken"`
	AnsweredCount  int          `json:"answered_count"`
	CompletedAt    time.Time    `json:"completed_at"`
	CreatedAt      time.Time    `json:"created_at"`
	Answers        []QuizAnswer `json:"answers,omitempty"`
}

// QuizAnswer is one graded answer inside a QuizResponse.
type QuizAnswer struct {
	QuestionID    uuid.UUID `json:"question_id"`
	SelectedIndex int       `json:"selected_index"`
	IsCorrect     bool      `json:"is_correct"`
	TimeTaken     int       `json:"time_taken"`
	AnsweredAt    time.Time `json:"answered_at"`
}

// AnswerRecord is everything the store needs to append one answer atomically.
type AnswerRecord struct {
	EventID       uuid.UUID
	QuestionID    uuid.UUID
	StudentID     int
	StudentName   string
	StudentEmail  string
	RollNumber    string
	SelectedIndex int
	IsCorrect     bool
	TimeTaken     int
	AnsweredAt    time.Time
}

// ResponseTotals are the running totals after an answer was appended.
type ResponseTotals struct {
	TotalScore     int `json:"total_score"`
	TotalTimeTaken int `json:"total_time_taken"`
	AnsweredCount  int `json:"total_answered"`
}

// SubmitAnswerRequest is the student payload for answering the live question.
type SubmitAnswerRequest struct {
	QuestionID    string `json:"question_id" binding:"required,uuid"`
	SelectedIndex *int   `json:"selected_index" binding:"required,min=-1"`
	TimeTaken     int    `json:"time_taken" binding:"min=0"`
}

// SubmitAnswerResult is returned after an answer is recorded.
type SubmitAnswerResult struct {
	IsCorrect     bool `json:"is_correct"`
	TotalScore    int  `json:"total_score"`
	TotalAnswered int  `json:"total_answered"`
}

// PollStatus discriminates the three poll outcomes.
type PollStatus string

const (
	PollActive          PollStatus = "active"
	PollNone            PollStatus = "none"
	PollAlreadyAnswered PollStatus = "already_answered"
)

// Reasons attached to a PollNone result.
const (
	PollReasonIdle            = "idle"
	PollReasonExpired         = "expired"
	PollReasonQuestionRemoved = "question_removed"
)

// PollResult is what a polling student receives. Question never carries the correct index.
type PollResult struct {
	Status           PollStatus       `json:"status"`
	Question         *StudentQuestion `json:"question,omitempty"`
	QuestionID       *uuid.UUID       `json:"question_id,omitempty"`
	RemainingSeconds int              `json:"remaining_seconds"`
	ActivatedAt      *time.Time       `json:"activated_at,omitempty"`
	Reason           string           `json:"reason,omitempty"`
}
