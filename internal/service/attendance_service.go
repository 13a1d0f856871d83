package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/rs/zerolog/log"
)

// AttendanceDay is the calendar date of now in loc, formatted YYYY-MM-DD.
func AttendanceDay(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(time.DateOnly)
}

// AttendanceService marks students present by scanned QR token, once per calendar day.
type AttendanceService struct {
	students   StudentStore
	attendance AttendanceStore
	mail       MailQueue
	loc        *time.Location
	clock      Clock
}

// NewAttendanceService creates a new AttendanceService. Days are bucketed in loc.
func NewAttendanceService(students StudentStore, attendance AttendanceStore, mail MailQueue, loc *time.Location, clock Clock) *AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceService{students: students, attendance: attendance, mail: mail, loc: loc, clock: clock}
}

// QRTokenFrom extracts the token from what a scanner submitted: the bare token, a
// scan URL ending in the token (trailing slash allowed) or a URL with ?token=.
func QRTokenFrom(raw string) string {
	raw = strings.TrimSpace(raw)
	if u, err := url.Parse(raw); err == nil && (u.Scheme != "" || u.RawQuery != "") {
		if t := strings.TrimSpace(u.Query().Get("token")); t != "" {
			return t
		}
	}
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimRight(raw, "/")
	if i := strings.LastIndex(raw, "/"); i >= 0 {
		raw = raw[i+1:]
	}
	return raw
}

// Mark records the token owner as present today. A repeat scan on the same day
// returns the existing record with AlreadyMarked set and sends nothing.
func (s *AttendanceService) Mark(ctx context.Context, qrToken string, markedBy *int) (*model.MarkAttendanceResult, error) {
	token := QRTokenFrom(qrToken)
	if token == "" {
		return nil, invalid("qr_token", "is required")
	}

	student, err := s.students.GetByQRToken(ctx, token)
	if err != nil {
		return nil, fromRepo(err)
	}

	now := s.clock.now()
	rec := &model.Attendance{
		StudentID:   student.ID,
		AttendedOn:  AttendanceDay(now, s.loc),
		MarkedAt:    now,
		MarkedBy:    markedBy,
		StudentName: student.Name,
		RollNumber:  student.RollNumber,
		EventName:   student.EventName,
	}
	created, err := s.attendance.MarkOnce(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("mark attendance: %w", err)
	}

	if created {
		log.Info().Int("student_id", student.ID).Str("day", rec.AttendedOn).Msg("Attendance marked")
		s.enqueueThanks(ctx, student)
	}
	return &model.MarkAttendanceResult{AlreadyMarked: !created, Attendance: *rec, Student: *student}, nil
}

// History lists a student's attendance.
func (s *AttendanceService) History(ctx context.Context, studentID int) ([]model.Attendance, error) {
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		return nil, fromRepo(err)
	}
	return s.attendance.ListByStudent(ctx, studentID)
}

// ByDay lists everyone present on day (YYYY-MM-DD). An empty day means today.
func (s *AttendanceService) ByDay(ctx context.Context, day string) ([]model.Attendance, error) {
	if day == "" {
		day = AttendanceDay(s.clock.now(), s.loc)
	}
	if _, err := time.Parse(time.DateOnly, day); err != nil {
		return nil, invalid("day", "must be formatted YYYY-MM-DD")
	}
	return s.attendance.ListByDay(ctx, day)
}

func (s *AttendanceService) enqueueThanks(ctx context.Context, st *model.Student) {
	if s.mail == nil {
		return
	}
	job := model.MailJob{
		Kind:    model.MailAttendance,
		To:      st.Email,
		Subject: "Thanks for attending the event",
		Data: map[string]string{
			"name":        st.Name,
			"roll_number": st.RollNumber,
			"event_name":  st.EventName,
		},
	}
	if err := s.mail.Enqueue(ctx, job); err != nil {
		log.Warn().Err(err).Int("student_id", st.ID).Msg("Failed to queue attendance mail")
	}
}
