package repository

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ptpcell/placement-backend/internal/model"
)

// AlumniRepository handles alumni data access.
type AlumniRepository struct {
	pool *pgxpool.Pool
}

// NewAlumniRepository creates a new AlumniRepository.
func NewAlumniRepository(pool *pgxpool.Pool) *AlumniRepository {
	return &AlumniRepository{pool: pool}
}

// BulkUpsert inserts or refreshes alumni keyed by email in one batch round-trip.
// Returns how many rows were inserted and how many updated.
func (r *AlumniRepository) BulkUpsert(ctx context.Context, alumni []model.Alumni) (inserted, updated int, err error) {
	if len(alumni) == 0 {
		return 0, 0, nil
	}

	batch := &pgx.Batch{}
	for _, a := range alumni {
		batch.Queue(
			`INSERT INTO alumni (name, company, linkedin, email, phone)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (email) DO UPDATE SET
			     name = EXCLUDED.name, company = EXCLUDED.company, linkedin = EXCLUDED.linkedin,
			     phone = EXCLUDED.phone, updated_at = NOW()
			 RETURNING (xmax = 0)`,
			a.Name, a.Company, a.LinkedIn, a.Email, a.Phone,
		)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback(ctx)

	br := tx.SendBatch(ctx, batch)
	for range alumni {
		var isInsert bool
		if err := br.QueryRow().Scan(&isInsert); err != nil {
			br.Close()
			return 0, 0, err
		}
		if isInsert {
			inserted++
		} else {
			updated++
		}
	}
	if err := br.Close(); err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, err
	}
	return inserted, updated, nil
}

// ListPaginated returns alumni sorted by name, optionally filtered by a search term.
func (r *AlumniRepository) ListPaginated(ctx context.Context, search string, limit, offset int) ([]model.Alumni, int, error) {
	where := ""
	var args []interface{}
	if search != "" {
		args = append(args, "%"+search+"%")
		where = ` WHERE name ILIKE $1 OR company ILIKE $1 OR email ILIKE $1`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM alumni`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, name, company, linkedin, email, phone, created_at, updated_at FROM alumni` + where +
		` ORDER BY name LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := make([]model.Alumni, 0, limit)
	for rows.Next() {
		var a model.Alumni
		if err := rows.Scan(&a.ID, &a.Name, &a.Company, &a.LinkedIn, &a.Email, &a.Phone, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, a)
	}
	return list, total, rows.Err()
}
