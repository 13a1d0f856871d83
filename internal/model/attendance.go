package model

import "time"

// Attendance is one present-mark for a student on one calendar day.
type Attendance struct {
	ID          int64     `json:"id"`
	StudentID   int       `json:"student_id"`
	AttendedOn  string    `json:"attended_on"` // YYYY-MM-DD in the attendance zone
	MarkedAt    time.Time `json:"marked_at"`
	MarkedBy    *int      `json:"marked_by,omitempty"`
	StudentName string    `json:"student_name,omitempty"`
	RollNumber  string    `json:"roll_number,omitempty"`
	EventName   string    `json:"event_name,omitempty"`
}

// MarkAttendanceRequest carries the scanned QR token.
type MarkAttendanceRequest struct {
	QRToken string `json:"qr_token" binding:"required,max=64"`
}

// MarkAttendanceResult tells the scanner whether this scan created the record.
type MarkAttendanceResult struct {
	AlreadyMarked bool       `json:"already_marked"`
	Attendance    Attendance `json:"attendance"`
	Student       Student    `json:"student"`
}
