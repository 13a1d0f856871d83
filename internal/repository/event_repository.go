package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ptpcell/placement-backend/internal/model"
)

// EventRepository handles event data access.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

const eventColumns = `e.id, e.name, e.description, e.event_date, e.created_at, e.updated_at,
	(SELECT COUNT(*) FROM event_questions q WHERE q.event_id = e.id)`

func scanEvent(row interface{ Scan(dest ...any) error }, e *model.Event) error {
	return row.Scan(&e.ID, &e.Name, &e.Description, &e.EventDate, &e.CreatedAt, &e.UpdatedAt, &e.QuestionCount)
}

// GetByID retrieves an event with its question count.
func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	e := &model.Event{}
	if err := scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = $1`, id), e); err != nil {
		return nil, mapErr(err)
	}
	return e, nil
}

// GetByName retrieves an event by its unique name.
func (r *EventRepository) GetByName(ctx context.Context, name string) (*model.Event, error) {
	e := &model.Event{}
	if err := scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.name = $1`, name), e); err != nil {
		return nil, mapErr(err)
	}
	return e, nil
}

// List returns all events, newest event date first.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events e ORDER BY e.event_date DESC, e.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]model.Event, 0)
	for rows.Next() {
		var e model.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Create inserts a new event. e.ID must be set by the caller.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO events (id, name, description, event_date)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		e.ID, e.Name, e.Description, e.EventDate,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	return mapErr(err)
}

// Update modifies an event. Renaming also moves every registered student to the new name.
func (r *EventRepository) Update(ctx context.Context, e *model.Event) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var oldName string
	if err := tx.QueryRow(ctx, `SELECT name FROM events WHERE id = $1 FOR UPDATE`, e.ID).Scan(&oldName); err != nil {
		return mapErr(err)
	}

	err = tx.QueryRow(ctx,
		`UPDATE events SET name = $2, description = $3, event_date = $4, updated_at = NOW()
		 WHERE id = $1 RETURNING created_at, updated_at`,
		e.ID, e.Name, e.Description, e.EventDate,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return mapErr(err)
	}

	if oldName != e.Name {
		if _, err := tx.Exec(ctx,
			`UPDATE students SET event_name = $2, updated_at = NOW() WHERE event_name = $1`,
			oldName, e.Name,
		); err != nil {
			return fmt.Errorf("rename roster: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Delete removes an event with its questions and responses.
func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
