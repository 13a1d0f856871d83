package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/ptpcell/placement-backend/internal/response"
	"github.com/ptpcell/placement-backend/internal/validator"
	"github.com/rs/zerolog/log"
)

// StudentService handles student registry business logic.
type StudentService struct {
	students StudentStore
	mail     MailQueue
}

// NewStudentService creates a new StudentService.
func NewStudentService(students StudentStore, mail MailQueue) *StudentService {
	return &StudentService{students: students, mail: mail}
}

// paginate clamps page parameters and converts them into limit/offset.
func paginate(page, perPage int) (int, int, int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage, perPage, (page - 1) * perPage
}

// GetByID retrieves a student by ID.
func (s *StudentService) GetByID(ctx context.Context, id int) (*model.Student, error) {
	st, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err)
	}
	return st, nil
}

// ListStudents retrieves students with pagination and optional filters.
func (s *StudentService) ListStudents(ctx context.Context, f model.StudentFilter, page, perPage int) ([]model.Student, *response.Pagination, error) {
	page, perPage, limit, offset := paginate(page, perPage)

	students, total, err := s.students.ListPaginated(ctx, f, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	if students == nil {
		students = []model.Student{}
	}
	return students, response.NewPagination(page, perPage, total), nil
}

func studentFromRequest(req model.StudentRequest) (*model.Student, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validator.IsEmail(email) {
		return nil, invalid("email", "must be a valid email address")
	}
	st := &model.Student{
		Name:             strings.TrimSpace(req.Name),
		Email:            email,
		RollNumber:       strings.TrimSpace(req.RollNumber),
		UniversityRollNo: strings.TrimSpace(req.UniversityRollNo),
		Branch:           strings.TrimSpace(req.Branch),
		PhoneNumber:      strings.TrimSpace(req.PhoneNumber),
		EventName:        strings.TrimSpace(req.EventName),
	}
	switch {
	case st.Name == "":
		return nil, invalid("name", "is required")
	case st.RollNumber == "":
		return nil, invalid("roll_number", "is required")
	case st.EventName == "":
		return nil, invalid("event_name", "is required")
	}
	return st, nil
}

// Create registers a student for an event and queues the registration mail.
func (s *StudentService) Create(ctx context.Context, req model.StudentRequest) (*model.Student, error) {
	st, err := studentFromRequest(req)
	if err != nil {
		return nil, err
	}
	st.QRToken = uuid.NewString()
	if err := s.students.Create(ctx, st); err != nil {
		return nil, fromRepo(err)
	}
	s.enqueueRegistration(ctx, st)
	return st, nil
}

// Update modifies a student's registration details. The QR token is kept.
func (s *StudentService) Update(ctx context.Context, id int, req model.StudentRequest) (*model.Student, error) {
	st, err := studentFromRequest(req)
	if err != nil {
		return nil, err
	}
	st.ID = id
	if err := s.students.Update(ctx, st); err != nil {
		return nil, fromRepo(err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes a student by ID.
func (s *StudentService) Delete(ctx context.Context, id int) error {
	return fromRepo(s.students.Delete(ctx, id))
}

// Review records a recruitment review for a student.
func (s *StudentService) Review(ctx context.Context, id int, req model.ReviewRequest) (*model.Student, error) {
	if req.Score != nil && (*req.Score < 0 || *req.Score > 10) {
		return nil, invalid("score", "must be between 0 and 10")
	}
	rv := model.Review{
		Score:              req.Score,
		Comment:            strings.TrimSpace(req.Comment),
		RoundOneAttendance: req.RoundOneAttendance,
		RoundTwoAttendance: req.RoundTwoAttendance,
		RoundOneQualified:  req.RoundOneQualified,
		RoundTwoQualified:  req.RoundTwoQualified,
	}
	if err := s.students.UpdateReview(ctx, id, rv); err != nil {
		return nil, fromRepo(err)
	}
	return s.GetByID(ctx, id)
}

// ImportRows upserts students from parsed spreadsheet rows keyed by normalized header.
// Rows failing validation are skipped and reported; the rest are applied independently.
func (s *StudentService) ImportRows(ctx context.Context, rows []map[string]string) (*model.ImportResult, error) {
	res := &model.ImportResult{Errors: map[string]string{}}
	for i, row := range rows {
		line := fmt.Sprintf("row %d", i+2) // header is row 1
		req := model.StudentRequest{
			Name:             firstOf(row, "name"),
			Email:            firstOf(row, "email"),
			RollNumber:       firstOf(row, "rollnumber", "rollno", "roll"),
			UniversityRollNo: firstOf(row, "universityrollno", "universityrollnumber"),
			Branch:           firstOf(row, "branch"),
			PhoneNumber:      firstOf(row, "phonenumber", "phone", "mobile"),
			EventName:        firstOf(row, "eventname", "event"),
		}
		if fields := validator.Struct(&req); fields != nil {
			res.Skipped++
			res.Errors[line] = joinFields(fields)
			continue
		}
		st, err := studentFromRequest(req)
		if err != nil {
			res.Skipped++
			res.Errors[line] = err.Error()
			continue
		}

		st.QRToken = uuid.NewString()
		inserted, err := s.students.Upsert(ctx, st)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.Skipped++
			res.Errors[line] = fromRepo(err).Error()
			continue
		}
		if inserted {
			res.Inserted++
			s.enqueueRegistration(ctx, st)
		} else {
			res.Updated++
		}
	}
	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	log.Info().Int("inserted", res.Inserted).Int("updated", res.Updated).Int("skipped", res.Skipped).
		Msg("Student import finished")
	return res, nil
}

// joinFields flattens validator output into one stable message per sheet row.
func joinFields(fields map[string]string) string {
	msgs := make([]string, 0, len(fields))
	for _, msg := range fields {
		msgs = append(msgs, msg)
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

func firstOf(row map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(row[k]); v != "" {
			return v
		}
	}
	return ""
}

func (s *StudentService) enqueueRegistration(ctx context.Context, st *model.Student) {
	if s.mail == nil {
		return
	}
	job := model.MailJob{
		Kind:    model.MailRegistration,
		To:      st.Email,
		Subject: "Registration confirmed: " + st.EventName,
		Data: map[string]string{
			"name":        st.Name,
			"roll_number": st.RollNumber,
			"event_name":  st.EventName,
			"qr_token":    st.QRToken,
		},
	}
	if err := s.mail.Enqueue(ctx, job); err != nil {
		log.Warn().Err(err).Int("student_id", st.ID).Msg("Failed to queue registration mail")
	}
}

// Authenticate resolves a student by email and checks the roll number.
func (s *StudentService) Authenticate(ctx context.Context, email, rollNumber string) (*model.Student, error) {
	st, err := s.students.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := CheckRollNumber(st.RollNumber, rollNumber); err != nil {
		return nil, err
	}
	return st, nil
}
