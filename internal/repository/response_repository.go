package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ptpcell/placement-backend/internal/model"
)

// ResponseRepository stores per-student quiz responses and their answers.
type ResponseRepository struct {
	pool *pgxpool.Pool
}

// NewResponseRepository creates a new ResponseRepository.
func NewResponseRepository(pool *pgxpool.Pool) *ResponseRepository {
	return &ResponseRepository{pool: pool}
}

// RecordAnswer appends one answer and bumps the running totals in a single transaction.
// The response row is created on the first answer with the identity snapshot in rec.
// A second answer for the same question hits the quiz_answers primary key and returns
// ErrAlreadyAnswered with nothing changed.
func (r *ResponseRepository) RecordAnswer(ctx context.Context, rec model.AnswerRecord) (*model.ResponseTotals, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	// The no-op DO UPDATE returns the existing id and row-locks it until commit.
	var responseID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO quiz_responses (event_id, student_id, student_name, student_email, roll_number, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (event_id, student_email) DO UPDATE SET student_email = quiz_responses.student_email
		 RETURNING id`,
		rec.EventID, rec.StudentID, rec.StudentName, rec.StudentEmail, rec.RollNumber, rec.AnsweredAt,
	).Scan(&responseID)
	if err != nil {
		return nil, fmt.Errorf("upsert response: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`INSERT INTO quiz_answers (response_id, question_id, selected_index, is_correct, time_taken, answered_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (response_id, question_id) DO NOTHING`,
		responseID, rec.QuestionID, rec.SelectedIndex, rec.IsCorrect, rec.TimeTaken, rec.AnsweredAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert answer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrAlreadyAnswered
	}

	scoreDelta := 0
	if rec.IsCorrect {
		scoreDelta = 1
	}

	totals := &model.ResponseTotals{}
	err = tx.QueryRow(ctx,
		`UPDATE quiz_responses
		 SET total_score = total_score + $2,
		     total_time_taken = total_time_taken + $3,
		     answered_count = answered_count + 1,
		     completed_at = $4
		 WHERE id = $1
		 RETURNING total_score, total_time_taken, answered_count`,
		responseID, scoreDelta, rec.TimeTaken, rec.AnsweredAt,
	).Scan(&totals.TotalScore, &totals.TotalTimeTaken, &totals.AnsweredCount)
	if err != nil {
		return nil, fmt.Errorf("update totals: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return totals, nil
}

// HasAnswered reports whether the student already answered the question in this event.
func (r *ResponseRepository) HasAnswered(ctx context.Context, eventID uuid.UUID, email string, questionID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		     SELECT 1 FROM quiz_answers a
		     JOIN quiz_responses r ON r.id = a.response_id
		     WHERE r.event_id = $1 AND r.student_email = $2 AND a.question_id = $3
		 )`, eventID, email, questionID,
	).Scan(&exists)
	return exists, err
}

// GetByStudent returns one student's response with answers in answer order.
func (r *ResponseRepository) GetByStudent(ctx context.Context, eventID uuid.UUID, email string) (*model.QuizResponse, error) {
	resp := &model.QuizResponse{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, event_id, student_id, student_name, student_email, roll_number,
		        total_score, total_time_taken, answered_count, completed_at, created_at
		 FROM quiz_responses WHERE event_id = $1 AND student_email = $2`, eventID, email,
	).Scan(&resp.ID, &resp.EventID, &resp.StudentID, &resp.StudentName, &resp.StudentEmail, &resp.RollNumber,
		&resp.TotalScore, &resp.TotalTimeTaken, &resp.AnsweredCount, &resp.CompletedAt, &resp.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT question_id, selected_index, is_correct, time_taken, answered_at
		 FROM quiz_answers WHERE response_id = $1 ORDER BY answered_at`, resp.ID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resp.Answers = make([]model.QuizAnswer, 0)
	for rows.Next() {
		var a model.QuizAnswer
		if err := rows.Scan(&a.QuestionID, &a.SelectedIndex, &a.IsCorrect, &a.TimeTaken, &a.AnsweredAt); err != nil {
			return nil, err
		}
		resp.Answers = append(resp.Answers, a)
	}
	return resp, rows.Err()
}

// ListByEvent returns all responses of an event without their answers.
func (r *ResponseRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.QuizResponse, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, event_id, student_id, student_name, student_email, roll_number,
		        total_score, total_time_taken, answered_count, completed_at, created_at
		 FROM quiz_responses WHERE event_id = $1 ORDER BY id`, eventID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []model.QuizResponse
	for rows.Next() {
		var resp model.QuizResponse
		if err := rows.Scan(&resp.ID, &resp.EventID, &resp.StudentID, &resp.StudentName, &resp.StudentEmail, &resp.RollNumber,
			&resp.TotalScore, &resp.TotalTimeTaken, &resp.AnsweredCount, &resp.CompletedAt, &resp.CreatedAt); err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

// DeleteByEvent wipes every response (and by cascade every answer) of an event.
func (r *ResponseRepository) DeleteByEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM quiz_responses WHERE event_id = $1`, eventID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
