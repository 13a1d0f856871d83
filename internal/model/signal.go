package model

import (
	"time"

	"github.com/google/uuid"
)

// SignalType names a quiz state change pushed to admin monitors.
type SignalType string

const (
	SignalQuestionActivated   SignalType = "question_activated"
	SignalQuestionDeactivated SignalType = "question_deactivated"
	SignalQuestionExpired     SignalType = "question_expired"
	SignalQuestionRemoved     SignalType = "question_removed"
	SignalAnswerSubmitted     SignalType = "answer_submitted"
	SignalLeaderboardCleared  SignalType = "leaderboard_cleared"
)

// QuizSignal is published on an event's quiz channel whenever its live state changes.
type QuizSignal struct {
	Type       SignalType `json:"type"`
	EventID    uuid.UUID  `json:"event_id"`
	QuestionID *uuid.UUID `json:"question_id,omitempty"`
	StudentID  int        `json:"student_id,omitempty"`
	IsCorrect  *bool      `json:"is_correct,omitempty"`
	TotalScore *int       `json:"total_score,omitempty"`
	At         time.Time  `json:"at"`
}
