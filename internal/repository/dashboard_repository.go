package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DashboardRepository handles admin dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// DashboardCounts are the stat cards shown at the top of the dashboard.
type DashboardCounts struct {
	Events          int `json:"events"`
	Students        int `json:"students"`
	Quizzes         int `json:"quizzes"`
	QuizAttempts    int `json:"quiz_attempts"`
	Alumni          int `json:"alumni"`
	AttendanceToday int `json:"attendance_today"`
	Reviewed        int `json:"reviewed_students"`
}

// GetSummaryCounts retrieves the high-level metrics for the dashboard. today is YYYY-MM-DD.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context, today string) (*DashboardCounts, error) {
	c := &DashboardCounts{}
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM events),
			(SELECT COUNT(*) FROM students),
			(SELECT COUNT(*) FROM quizzes),
			(SELECT COUNT(*) FROM quiz_attempts),
			(SELECT COUNT(*) FROM alumni),
			(SELECT COUNT(*) FROM attendance WHERE attended_on = $1::date),
			(SELECT COUNT(*) FROM students WHERE reviewed)`, today,
	).Scan(&c.Events, &c.Students, &c.Quizzes, &c.QuizAttempts, &c.Alumni, &c.AttendanceToday, &c.Reviewed)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DashboardEvent is an upcoming event with its registration count.
type DashboardEvent struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	EventDate  time.Time `json:"event_date"`
	Registered int       `json:"registered"`
}

// GetUpcomingEvents retrieves the next N events on or after from.
func (r *DashboardRepository) GetUpcomingEvents(ctx context.Context, from time.Time, limit int) ([]DashboardEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT e.id, e.name, e.event_date,
		        (SELECT COUNT(*) FROM students s WHERE s.event_name = e.name)
		 FROM events e
		 WHERE e.event_date >= $1
		 ORDER BY e.event_date ASC LIMIT $2`,
		from, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]DashboardEvent, 0)
	for rows.Next() {
		var e DashboardEvent
		if err := rows.Scan(&e.ID, &e.Name, &e.EventDate, &e.Registered); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DashboardAttendanceDay is the number of students marked present on one day.
type DashboardAttendanceDay struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// GetAttendanceTrend counts attendance per day for the given number of days ending at today.
// Days without marks are reported as zero.
func (r *DashboardRepository) GetAttendanceTrend(ctx context.Context, today string, days int) ([]DashboardAttendanceDay, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT to_char(d, 'YYYY-MM-DD'), COUNT(a.id)
		 FROM generate_series($1::date - ($2::int - 1), $1::date, interval '1 day') AS d
		 LEFT JOIN attendance a ON a.attended_on = d::date
		 GROUP BY d
		 ORDER BY d`,
		today, days,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trend := make([]DashboardAttendanceDay, 0, days)
	for rows.Next() {
		var d DashboardAttendanceDay
		if err := rows.Scan(&d.Day, &d.Count); err != nil {
			return nil, err
		}
		trend = append(trend, d)
	}
	return trend, rows.Err()
}
