package model

import (
	"time"

	"github.com/google/uuid"
)

// Event is a placement activity (talk, workshop, drive) students register for by name.
// It may carry a live MCQ quiz.
type Event struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	EventDate     time.Time `json:"event_date"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Live activation state, filled from the activation store.
	ActiveQuestionID    *uuid.UUID `json:"active_question_id"`
	QuestionActivatedAt *time.Time `json:"question_activated_at"`
	QuizActive          bool       `json:"quiz_active"`
}

// ApplyActivation copies an activation snapshot onto the event.
// A nil activation leaves the event Idle.
func (e *Event) ApplyActivation(a *Activation) {
	if a == nil {
		e.ActiveQuestionID = nil
		e.QuestionActivatedAt = nil
		e.QuizActive = false
		return
	}
	qid := a.QuestionID
	at := a.ActivatedAt
	e.ActiveQuestionID = &qid
	e.QuestionActivatedAt = &at
	e.QuizActive = true
}

// Activation is the Active state of an event's quiz: exactly one question and the instant it went live.
type Activation struct {
	EventID     uuid.UUID `json:"event_id"`
	QuestionID  uuid.UUID `json:"question_id"`
	ActivatedAt time.Time `json:"activated_at"`
	// Question is the student-facing snapshot taken at activation time.
	Question StudentQuestion `json:"question"`
}

// CreateEventRequest is the payload for creating an event.
type CreateEventRequest struct {
	Name        string    `json:"name" binding:"required,notblank,min=2,max=200"`
	Description string    `json:"description" binding:"max=2000"`
	EventDate   time.Time `json:"event_date" binding:"required"`
}

// UpdateEventRequest is the payload for updating an event.
type UpdateEventRequest struct {
	Name        string    `json:"name" binding:"required,notblank,min=2,max=200"`
	Description string    `json:"description" binding:"max=2000"`
	EventDate   time.Time `json:"event_date" binding:"required"`
}

// ActivateQuestionRequest selects the question to put live.
type ActivateQuestionRequest struct {
	QuestionID string `json:"question_id" binding:"required,uuid"`
}

// ClearLeaderboardRequest must carry confirm=true.
type ClearLeaderboardRequest struct {
	Confirm bool `json:"confirm"`
}
