package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ptpcell/placement-backend/internal/model"
)

// QuestionRepository handles event question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// Create appends a question at the end of the event's list. q.ID must be set.
func (r *QuestionRepository) Create(ctx context.Context, q *model.EventQuestion) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO event_questions (id, event_id, prompt, options, correct_index, order_num)
		 VALUES ($1, $2, $3, $4, $5,
		         (SELECT COALESCE(MAX(order_num), 0) + 1 FROM event_questions WHERE event_id = $2))
		 RETURNING order_num, created_at, updated_at`,
		q.ID, q.EventID, q.Prompt, q.Options, q.CorrectIndex,
	).Scan(&q.OrderNum, &q.CreatedAt, &q.UpdatedAt)
	return mapErr(err)
}

// Update replaces prompt, options and correct index of a question.
func (r *QuestionRepository) Update(ctx context.Context, q *model.EventQuestion) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE event_questions SET prompt = $3, options = $4, correct_index = $5, updated_at = NOW()
		 WHERE id = $1 AND event_id = $2
		 RETURNING order_num, created_at, updated_at`,
		q.ID, q.EventID, q.Prompt, q.Options, q.CorrectIndex,
	).Scan(&q.OrderNum, &q.CreatedAt, &q.UpdatedAt)
	return mapErr(err)
}

// GetByID retrieves a question scoped to its event.
func (r *QuestionRepository) GetByID(ctx context.Context, eventID, questionID uuid.UUID) (*model.EventQuestion, error) {
	q := &model.EventQuestion{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, event_id, prompt, options, correct_index, order_num, created_at, updated_at
		 FROM event_questions WHERE id = $1 AND event_id = $2`, questionID, eventID,
	).Scan(&q.ID, &q.EventID, &q.Prompt, &q.Options, &q.CorrectIndex, &q.OrderNum, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return q, nil
}

// ListByEvent returns the event's questions in order.
func (r *QuestionRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.EventQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, event_id, prompt, options, correct_index, order_num, created_at, updated_at
		 FROM event_questions WHERE event_id = $1 ORDER BY order_num`, eventID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]model.EventQuestion, 0)
	for rows.Next() {
		var q model.EventQuestion
		if err := rows.Scan(&q.ID, &q.EventID, &q.Prompt, &q.Options, &q.CorrectIndex, &q.OrderNum, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Delete removes a question from its event.
func (r *QuestionRepository) Delete(ctx context.Context, eventID, questionID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM event_questions WHERE id = $1 AND event_id = $2`, questionID, eventID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
