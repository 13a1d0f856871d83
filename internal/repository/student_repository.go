package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ptpcell/placement-backend/internal/model"
)

// StudentRepository handles student data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

const studentColumns = `id, name, email, roll_number, university_roll_no, branch, phone_number, event_name, qr_token,
	reviewed, review_score, review_comment, round_one_attendance, round_two_attendance,
	round_one_qualified, round_two_qualified, created_at, updated_at`

func scanStudent(row interface{ Scan(dest ...any) error }, s *model.Student) error {
	var (
		reviewed bool
		rv       model.Review
	)
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.RollNumber, &s.UniversityRollNo, &s.Branch, &s.PhoneNumber,
		&s.EventName, &s.QRToken, &reviewed, &rv.Score, &rv.Comment, &rv.RoundOneAttendance, &rv.RoundTwoAttendance,
		&rv.RoundOneQualified, &rv.RoundTwoQualified, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return err
	}
	if reviewed {
		s.Review = &rv
	}
	return nil
}

func (r *StudentRepository) getOne(ctx context.Context, where string, arg any) (*model.Student, error) {
	s := &model.Student{}
	if err := scanStudent(r.pool.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE `+where, arg), s); err != nil {
		return nil, mapErr(err)
	}
	return s, nil
}

// GetByID retrieves a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	return r.getOne(ctx, `id = $1`, id)
}

// GetByEmail retrieves a student by email (stored lowercased).
func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (*model.Student, error) {
	return r.getOne(ctx, `email = $1`, strings.ToLower(strings.TrimSpace(email)))
}

// GetByQRToken retrieves the student owning a scanned QR token.
func (r *StudentRepository) GetByQRToken(ctx context.Context, token string) (*model.Student, error) {
	return r.getOne(ctx, `qr_token = $1`, token)
}

// ListByEventName returns the roster of an event in registration order.
func (r *StudentRepository) ListByEventName(ctx context.Context, eventName string) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+studentColumns+` FROM students WHERE event_name = $1 ORDER BY id`, eventName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := make([]model.Student, 0)
	for rows.Next() {
		var s model.Student
		if err := scanStudent(rows, &s); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// ListPaginated retrieves students with pagination and optional event/search filters.
func (r *StudentRepository) ListPaginated(ctx context.Context, f model.StudentFilter, limit, offset int) ([]model.Student, int, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.EventName != "" {
		args = append(args, f.EventName)
		conds = append(conds, `event_name = $`+strconv.Itoa(len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := strconv.Itoa(len(args))
		conds = append(conds, `(name ILIKE $`+n+` OR email ILIKE $`+n+` OR roll_number ILIKE $`+n+`)`)
	}
	where := ""
	if len(conds) > 0 {
		where = ` WHERE ` + strings.Join(conds, " AND ")
	}

	// 1. Get total count
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM students`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	// 2. Get paginated data
	query := `SELECT ` + studentColumns + ` FROM students` + where +
		` ORDER BY name LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	students := make([]model.Student, 0, limit)
	for rows.Next() {
		var s model.Student
		if err := scanStudent(rows, &s); err != nil {
			return nil, 0, err
		}
		students = append(students, s)
	}
	return students, total, rows.Err()
}

// Create inserts a new student. Email, roll number and QR token are unique.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (name, email, roll_number, university_roll_no, branch, phone_number, event_name, qr_token)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		s.Name, s.Email, s.RollNumber, s.UniversityRollNo, s.Branch, s.PhoneNumber, s.EventName, s.QRToken,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return mapErr(err)
}

// Update modifies a student's registration details.
func (r *StudentRepository) Update(ctx context.Context, s *model.Student) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET name = $1, email = $2, roll_number = $3, university_roll_no = $4, branch = $5,
		        phone_number = $6, event_name = $7, updated_at = NOW()
		 WHERE id = $8`,
		s.Name, s.Email, s.RollNumber, s.UniversityRollNo, s.Branch, s.PhoneNumber, s.EventName, s.ID,
	)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateReview stores a recruitment review and marks the student reviewed.
func (r *StudentRepository) UpdateReview(ctx context.Context, id int, rv model.Review) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET reviewed = TRUE, review_score = $2, review_comment = $3,
		        round_one_attendance = $4, round_two_attendance = $5,
		        round_one_qualified = $6, round_two_qualified = $7, updated_at = NOW()
		 WHERE id = $1`,
		id, rv.Score, rv.Comment, rv.RoundOneAttendance, rv.RoundTwoAttendance, rv.RoundOneQualified, rv.RoundTwoQualified,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a student by ID.
func (r *StudentRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Upsert inserts a student or refreshes the existing row with the same email.
// QR tokens of existing students are kept. Returns true when a row was inserted.
func (r *StudentRepository) Upsert(ctx context.Context, s *model.Student) (bool, error) {
	var inserted bool
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (name, email, roll_number, university_roll_no, branch, phone_number, event_name, qr_token)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (email) DO UPDATE SET
		     name = EXCLUDED.name, roll_number = EXCLUDED.roll_number,
		     university_roll_no = EXCLUDED.university_roll_no, branch = EXCLUDED.branch,
		     phone_number = EXCLUDED.phone_number, event_name = EXCLUDED.event_name, updated_at = NOW()
		 RETURNING id, qr_token, created_at, updated_at, (xmax = 0)`,
		s.Name, s.Email, s.RollNumber, s.UniversityRollNo, s.Branch, s.PhoneNumber, s.EventName, s.QRToken,
	).Scan(&s.ID, &s.QRToken, &s.CreatedAt, &s.UpdatedAt, &inserted)
	if err != nil {
		return false, mapErr(err)
	}
	return inserted, nil
}
