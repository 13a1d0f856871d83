package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ptpcell/placement-backend/internal/model"
)

// AttendanceRepository handles attendance data access.
type AttendanceRepository struct {
	pool *pgxpool.Pool
}

// NewAttendanceRepository creates a new AttendanceRepository.
func NewAttendanceRepository(pool *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// MarkOnce records a.StudentID as present on a.AttendedOn unless already recorded.
// It fills a from the stored row and reports whether this call created it.
func (r *AttendanceRepository) MarkOnce(ctx context.Context, a *model.Attendance) (bool, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO attendance (student_id, attended_on, marked_at, marked_by)
		 VALUES ($1, $2::date, $3, $4)
		 ON CONFLICT (student_id, attended_on) DO NOTHING
		 RETURNING id`,
		a.StudentID, a.AttendedOn, a.MarkedAt, a.MarkedBy,
	).Scan(&a.ID)
	if err == nil {
		return true, nil
	}
	if !errors.Is(mapErr(err), ErrNotFound) {
		return false, err
	}

	// Conflict: load the existing record.
	err = r.pool.QueryRow(ctx,
		`SELECT id, marked_at, marked_by FROM attendance WHERE student_id = $1 AND attended_on = $2::date`,
		a.StudentID, a.AttendedOn,
	).Scan(&a.ID, &a.MarkedAt, &a.MarkedBy)
	if err != nil {
		return false, mapErr(err)
	}
	return false, nil
}

// ListByStudent returns a student's attendance history, most recent first.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID int) ([]model.Attendance, error) {
	return r.list(ctx,
		`SELECT a.id, a.student_id, to_char(a.attended_on, 'YYYY-MM-DD'), a.marked_at, a.marked_by,
		        s.name, s.roll_number, s.event_name
		 FROM attendance a JOIN students s ON s.id = a.student_id
		 WHERE a.student_id = $1 ORDER BY a.attended_on DESC`, studentID)
}

// ListByDay returns everyone marked present on day (YYYY-MM-DD).
func (r *AttendanceRepository) ListByDay(ctx context.Context, day string) ([]model.Attendance, error) {
	return r.list(ctx,
		`SELECT a.id, a.student_id, to_char(a.attended_on, 'YYYY-MM-DD'), a.marked_at, a.marked_by,
		        s.name, s.roll_number, s.event_name
		 FROM attendance a JOIN students s ON s.id = a.student_id
		 WHERE a.attended_on = $1::date ORDER BY a.marked_at`, day)
}

func (r *AttendanceRepository) list(ctx context.Context, query string, arg any) ([]model.Attendance, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Attendance, 0)
	for rows.Next() {
		var a model.Attendance
		if err := rows.Scan(&a.ID, &a.StudentID, &a.AttendedOn, &a.MarkedAt, &a.MarkedBy,
			&a.StudentName, &a.RollNumber, &a.EventName); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
