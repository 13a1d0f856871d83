package model

import (
	"time"

	"github.com/google/uuid"
)

// LeaderboardRow is one registered participant. Non-submitters have zero totals.
type LeaderboardRow struct {
	Rank           int        `json:"rank"`
	StudentID      int        `json:"student_id"`
	StudentName    string     `json:"student_name"`
	RollNumber     string     `json:"roll_number"`
	StudentEmail   string     `json:"student_email"`
	TotalScore     int        `json:"total_score"`
	TotalTimeTaken int        `json:"total_time_taken"`
	AnsweredCount  int        `json:"answered_count"`
	CompletedAt    *time.Time `json:"completed_at"`
	HasSubmitted   bool       `json:"has_submitted"`
}

// Leaderboard is the ranked view of an event's quiz.
type Leaderboard struct {
	EventID              uuid.UUID        `json:"event_id"`
	EventName            string           `json:"event_name"`
	TotalQuestions       int              `json:"total_questions"`
	TotalStudents        int              `json:"total_students"`
	ParticipatedStudents int              `json:"participated_students"`
	Rows                 []LeaderboardRow `json:"rows"`
}
