package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/ptpcell/placement-backend/internal/response"
	"github.com/ptpcell/placement-backend/internal/validator"
)

// AlumniService maintains the alumni directory.
type AlumniService struct {
	alumni AlumniStore
}

// NewAlumniService creates a new AlumniService.
func NewAlumniService(alumni AlumniStore) *AlumniService {
	return &AlumniService{alumni: alumni}
}

// ImportRows bulk upserts alumni keyed by email. Invalid rows are skipped and reported.
// When the same email appears twice the later row wins.
func (s *AlumniService) ImportRows(ctx context.Context, rows []map[string]string) (*model.ImportResult, error) {
	res := &model.ImportResult{Errors: map[string]string{}}
	byEmail := make(map[string]int, len(rows))
	batch := make([]model.Alumni, 0, len(rows))

	for i, row := range rows {
		line := fmt.Sprintf("row %d", i+2)
		a := model.Alumni{
			Name:     strings.TrimSpace(row["name"]),
			Company:  firstOf(row, "company", "organization", "organisation"),
			LinkedIn: firstOf(row, "linkedin", "linkedinurl", "linkedinprofile"),
			Email:    strings.ToLower(strings.TrimSpace(row["email"])),
			Phone:    firstOf(row, "phone", "phonenumber", "mobile"),
		}
		if a.Name == "" {
			res.Skipped++
			res.Errors[line] = "name: is required"
			continue
		}
		if !validator.IsEmail(a.Email) {
			res.Skipped++
			res.Errors[line] = "email: must be a valid email address"
			continue
		}
		if j, dup := byEmail[a.Email]; dup {
			batch[j] = a
			res.Skipped++
			continue
		}
		byEmail[a.Email] = len(batch)
		batch = append(batch, a)
	}

	inserted, updated, err := s.alumni.BulkUpsert(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("upsert alumni: %w", err)
	}
	res.Inserted, res.Updated = inserted, updated
	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}

// List returns alumni with pagination and an optional search term.
func (s *AlumniService) List(ctx context.Context, search string, page, perPage int) ([]model.Alumni, *response.Pagination, error) {
	page, perPage, limit, offset := paginate(page, perPage)
	alumni, total, err := s.alumni.ListPaginated(ctx, strings.TrimSpace(search), limit, offset)
	if err != nil {
		return nil, nil, err
	}
	if alumni == nil {
		alumni = []model.Alumni{}
	}
	return alumni, response.NewPagination(page, perPage, total), nil
}
