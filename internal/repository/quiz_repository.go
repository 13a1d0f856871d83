package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ptpcell/placement-backend/internal/model"
)

// QuizRepository handles standalone quiz data access. Questions live in a JSONB snapshot.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

const quizColumns = `id, title, description, duration_minutes, tags, published, live, questions, created_at, updated_at`

func scanQuiz(row interface{ Scan(dest ...any) error }, q *model.Quiz) error {
	return row.Scan(&q.ID, &q.Title, &q.Description, &q.DurationMinutes, &q.Tags, &q.Published, &q.Live,
		&q.Questions, &q.CreatedAt, &q.UpdatedAt)
}

// Create inserts a quiz. q.ID must be set.
func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO quizzes (id, title, description, duration_minutes, tags, published, live, questions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		q.ID, q.Title, q.Description, q.DurationMinutes, q.Tags, q.Published, q.Live, q.Questions,
	).Scan(&q.CreatedAt, &q.UpdatedAt)
}

// Update replaces a quiz's content. The live flag is changed only through SetLive.
func (r *QuizRepository) Update(ctx context.Context, q *model.Quiz) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE quizzes SET title = $2, description = $3, duration_minutes = $4, tags = $5,
		        published = $6, questions = $7, updated_at = NOW()
		 WHERE id = $1
		 RETURNING live, created_at, updated_at`,
		q.ID, q.Title, q.Description, q.DurationMinutes, q.Tags, q.Published, q.Questions,
	).Scan(&q.Live, &q.CreatedAt, &q.UpdatedAt)
	return mapErr(err)
}

// GetByID retrieves a quiz including correctness flags.
func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	q := &model.Quiz{}
	if err := scanQuiz(r.pool.QueryRow(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id = $1`, id), q); err != nil {
		return nil, mapErr(err)
	}
	return q, nil
}

// List returns quizzes, newest first. availableOnly keeps published and live quizzes.
func (r *QuizRepository) List(ctx context.Context, availableOnly bool) ([]model.Quiz, error) {
	query := `SELECT ` + quizColumns + ` FROM quizzes`
	if availableOnly {
		query += ` WHERE published AND live`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quizzes := make([]model.Quiz, 0)
	for rows.Next() {
		var q model.Quiz
		if err := scanQuiz(rows, &q); err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

// SetLive flips the live flag.
func (r *QuizRepository) SetLive(ctx context.Context, id uuid.UUID, live bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE quizzes SET live = $2, updated_at = NOW() WHERE id = $1`, id, live)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a quiz and, by cascade, its attempts.
func (r *QuizRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateAttempt stores a graded attempt. a.ID must be set.
func (r *QuizRepository) CreateAttempt(ctx context.Context, a *model.QuizAttempt) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO quiz_attempts (id, quiz_id, participant, answers, score, total_questions,
		                            started_at, completed_at, duration_seconds)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		a.ID, a.QuizID, a.Participant, a.Answers, a.Score, a.TotalQuestions, a.StartedAt, a.CompletedAt, a.DurationSeconds,
	).Scan(&a.CreatedAt)
}

// AttemptStats aggregates all attempts of a quiz. Averages are unrounded.
func (r *QuizRepository) AttemptStats(ctx context.Context, quizID uuid.UUID) (count int, avgScore, avgPercent float64, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(AVG(score), 0)::float8,
		        COALESCE(AVG(CASE WHEN total_questions > 0 THEN score::float8 / total_questions * 100 ELSE 0 END), 0)::float8
		 FROM quiz_attempts WHERE quiz_id = $1`, quizID,
	).Scan(&count, &avgScore, &avgPercent)
	return count, avgScore, avgPercent, err
}

// RecentAttempts returns the latest attempts of a quiz.
func (r *QuizRepository) RecentAttempts(ctx context.Context, quizID uuid.UUID, limit int) ([]model.QuizAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, quiz_id, participant, answers, score, total_questions, started_at, completed_at,
		        duration_seconds, created_at
		 FROM quiz_attempts WHERE quiz_id = $1 ORDER BY created_at DESC LIMIT $2`, quizID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := make([]model.QuizAttempt, 0, limit)
	for rows.Next() {
		var a model.QuizAttempt
		if err := rows.Scan(&a.ID, &a.QuizID, &a.Participant, &a.Answers, &a.Score, &a.TotalQuestions,
			&a.StartedAt, &a.CompletedAt, &a.DurationSeconds, &a.CreatedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
