package model

import "time"

// Student is a registered participant. EventName ties the student to an event roster.
type Student struct {
	ID               int       `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	RollNumber       string    `json:"roll_number"`
	UniversityRollNo string    `json:"university_roll_no"`
	Branch           string    `json:"branch"`
	PhoneNumber      string    `json:"phone_number"`
	EventName        string    `json:"event_name"`
	QRToken          string    `json:"qr_token"`
	Review           *Review   `json:"review,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Review is the recruitment-round assessment a coordinator records for a student.
type Review struct {
	Score              *float64 `json:"score"`
	Comment            string   `json:"comment"`
	RoundOneAttendance bool     `json:"round_one_attendance"`
	RoundTwoAttendance bool     `json:"round_two_attendance"`
	RoundOneQualified  bool     `json:"round_one_qualified"`
	RoundTwoQualified  bool     `json:"round_two_qualified"`
}

// StudentFilter narrows student listings.
type StudentFilter struct {
	EventName string
	Search    string
}

// StudentLoginRequest identifies a student for the quiz portal.
type StudentLoginRequest struct {
	Email      string `json:"email" binding:"required,email,max=255"`
	RollNumber string `json:"roll_number" binding:"required,max=50"`
}

// StudentRequest is the payload for creating or updating a student.
type StudentRequest struct {
	Name             string `json:"name" binding:"required,notblank,min=2,max=100"`
	Email            string `json:"email" binding:"required,email,max=255"`
	RollNumber       string `json:"roll_number" binding:"required,max=50"`
	UniversityRollNo string `json:"university_roll_no" binding:"max=50"`
	Branch           string `json:"branch" binding:"max=100"`
	PhoneNumber      string `json:"phone_number" binding:"max=20"`
	EventName        string `json:"event_name" binding:"required,notblank,max=200"`
}

// ReviewRequest records a recruitment review. Score is 0..10 when present.
type ReviewRequest struct {
	Score              *float64 `json:"score" binding:"omitempty,min=0,max=10"`
	Comment            string   `json:"comment" binding:"max=2000"`
	RoundOneAttendance bool     `json:"round_one_attendance"`
	RoundTwoAttendance bool     `json:"round_two_attendance"`
	RoundOneQualified  bool     `json:"round_one_qualified"`
	RoundTwoQualified  bool     `json:"round_two_qualified"`
}

// ImportResult reports a bulk upsert.
type ImportResult struct {
	Inserted int               `json:"inserted"`
	Updated  int               `json:"updated"`
	Skipped  int               `json:"skipped"`
	Errors   map[string]string `json:"errors,omitempty"`
}
