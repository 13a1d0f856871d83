package service

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func istZone(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	return loc
}

func TestAttendanceDay(t *testing.T) {
	ist := istZone(t)

	assert.Equal(t, "2026-03-10", AttendanceDay(time.Date(2026, 3, 10, 18, 29, 0, 0, time.UTC), ist))
	assert.Equal(t, "2026-03-11", AttendanceDay(time.Date(2026, 3, 10, 18, 31, 0, 0, time.UTC), ist),
		"18:30 UTC is midnight IST")
}

func newAttendanceFixture(t *testing.T) (*AttendanceService, *testClock, *memMail, model.Student) {
	t.Helper()
	st := model.Student{ID: 7, Name: "Priya", Email: "priya@college.edu", RollNumber: "R007", EventName: "Drive", QRToken: "tok-7"}
	mail := &memMail{}
	clock := newTestClock()
	svc := NewAttendanceService(newMemStudents(st), &memAttendance{}, mail, istZone(t), clock.Clock())
	return svc, clock, mail, st
}

func TestAttendanceService_MarkIdempotentPerDay(t *testing.T) {
	ctx := context.Background()
	svc, clock, mail, st := newAttendanceFixture(t)
	clock.now = time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC)

	first, err := svc.Mark(ctx, st.QRToken, nil)
	require.NoError(t, err)
	assert.False(t, first.AlreadyMarked)
	assert.Equal(t, "2026-03-10", first.Attendance.AttendedOn)
	assert.Equal(t, st.ID, first.Student.ID)

	clock.Advance(14 * time.Hour) // 18:00 UTC, still the same IST day
	second, err := svc.Mark(ctx, st.QRToken, nil)
	require.NoError(t, err)
	assert.True(t, second.AlreadyMarked)
	assert.Equal(t, first.Attendance.ID, second.Attendance.ID)
	assert.True(t, first.Attendance.MarkedAt.Equal(second.Attendance.MarkedAt), "the original record is returned")

	assert.Equal(t, 1, mail.count(), "only the first scan of the day sends mail")
	assert.Equal(t, model.MailAttendance, mail.jobs[0].Kind)
	assert.Equal(t, st.Email, mail.jobs[0].To)
}

func TestAttendanceService_MarkAcrossISTMidnight(t *testing.T) {
	ctx := context.Background()
	svc, clock, mail, st := newAttendanceFixture(t)
	clock.now = time.Date(2026, 3, 10, 18, 29, 0, 0, time.UTC)

	_, err := svc.Mark(ctx, st.QRToken, nil)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	res, err := svc.Mark(ctx, st.QRToken, nil)
	require.NoError(t, err)
	assert.False(t, res.AlreadyMarked)
	assert.Equal(t, "2026-03-11", res.Attendance.AttendedOn)
	assert.Equal(t, 2, mail.count())

	history, err := svc.History(ctx, st.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestAttendanceService_MarkTokenForms(t *testing.T) {
	ctx := context.Background()
	svc, _, _, st := newAttendanceFixture(t)
	markedBy := 1

	res, err := svc.Mark(ctx, "https://ptp.example.edu/attendance/"+st.QRToken, &markedBy)
	require.NoError(t, err)
	assert.Equal(t, st.ID, res.Student.ID)
	require.NotNil(t, res.Attendance.MarkedBy)
	assert.Equal(t, 1, *res.Attendance.MarkedBy)

	_, err = svc.Mark(ctx, "  ", nil)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Mark(ctx, "https://ptp.example.edu/attendance/"+st.QRToken+"/", nil)
	require.NoError(t, err)
	_, err = svc.Mark(ctx, "https://ptp.example.edu/scan?token="+st.QRToken, nil)
	require.NoError(t, err)
	_, err = svc.Mark(ctx, "unknown-token", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQRTokenFrom(t *testing.T) {
	cases := map[string]string{
		"tok-7":    "tok-7",
		"  tok-7 ": "tok-7",
		"https://ptp.example.edu/attendance/tok-7":     "tok-7",
		"https://ptp.example.edu/attendance/tok-7/":    "tok-7",
		"https://ptp.example.edu/attendance/tok-7?x=1": "tok-7",
		"https://ptp.example.edu/scan?token=tok-7":     "tok-7",
		"/attendance/tok-7#top":                        "tok-7",
		"":                                             "",
		"///":                                          "",
	}
	for raw, want := range cases {
		assert.Equal(t, want, QRTokenFrom(raw), raw)
	}
}

func TestAttendanceService_ByDay(t *testing.T) {
	ctx := context.Background()
	svc, clock, _, st := newAttendanceFixture(t)

	_, err := svc.Mark(ctx, st.QRToken, nil)
	require.NoError(t, err)

	today, err := svc.ByDay(ctx, "")
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, AttendanceDay(clock.Now(), istZone(t)), today[0].AttendedOn)

	other, err := svc.ByDay(ctx, "2026-01-01")
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = svc.ByDay(ctx, "10/03/2026")
	assert.ErrorIs(t, err, ErrValidation)
}
