package model

import (
	"time"

	"github.com/google/uuid"
)

// EventOptionCount is the fixed number of options on an event quiz question.
const EventOptionCount = 4

// NoAnswerIndex marks a timed-out or skipped answer. It never grades as correct.
const NoAnswerIndex = -1

// EventQuestion is an MCQ attached to an event. CorrectIndex is admin-only.
type EventQuestion struct {
	ID           uuid.UUID `json:"id"`
	EventID      uuid.UUID `json:"event_id"`
	Prompt       string    `json:"prompt"`
	Options      []string  `json:"options"`
	CorrectIndex int       `json:"correct_index"`
	OrderNum     int       `json:"order_num"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ForStudent strips the correct answer.
func (q *EventQuestion) ForStudent() StudentQuestion {
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	return StudentQuestion{
		ID:       q.ID,
		Prompt:   q.Prompt,
		Options:  opts,
		OrderNum: q.OrderNum,
	}
}

// StudentQuestion is the student-facing view of an EventQuestion.
type StudentQuestion struct {
	ID       uuid.UUID `json:"id"`
	Prompt   string    `json:"prompt"`
	Options  []string  `json:"options"`
	OrderNum int       `json:"order_num"`
}

// QuestionRequest is the payload for adding or editing an event question.
type QuestionRequest struct {
	Prompt       string   `json:"prompt" binding:"required,notblank,max=2000"`
	Options      []string `json:"options" binding:"required,len=4,dive,required,notblank,max=500"`
	CorrectIndex *int     `json:"correct_index" binding:"required,min=0,max=3"`
}
