package service

import (
	"context"
	"testing"

	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentService_ImportRows(t *testing.T) {
	ctx := context.Background()
	store := newMemStudents(model.Student{ID: 1, Name: "Old Name", Email: "ravi@college.edu", RollNumber: "R1", EventName: "Drive", QRToken: "keep-me"})
	mail := &memMail{}
	svc := NewStudentService(store, mail)

	res, err := svc.ImportRows(ctx, []map[string]string{
		{"name": "Ravi", "email": "RAVI@college.edu", "rollno": "R1", "event": "Drive"},
		{"name": "Meera", "email": "meera@college.edu", "rollnumber": "R2", "eventname": "Drive", "mobile": "98765"},
		{"name": "", "email": "x@college.edu", "rollnumber": "R3", "eventname": "Drive"},
		{"name": "Bad", "email": "nope", "rollnumber": "R4", "eventname": "Drive"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 2, res.Skipped)
	assert.Contains(t, res.Errors, "row 4")
	assert.Contains(t, res.Errors, "row 5")

	ravi, err := store.GetByEmail(ctx, "ravi@college.edu")
	require.NoError(t, err)
	assert.Equal(t, "Ravi", ravi.Name)
	assert.Equal(t, "keep-me", ravi.QRToken, "re-import keeps the issued QR token")

	meera, err := store.GetByEmail(ctx, "meera@college.edu")
	require.NoError(t, err)
	assert.Equal(t, "98765", meera.PhoneNumber)

	require.Equal(t, 1, mail.count(), "only new registrations are mailed")
	assert.Equal(t, model.MailRegistration, mail.jobs[0].Kind)
	assert.Equal(t, meera.QRToken, mail.jobs[0].Data["qr_token"])
}

func TestStudentService_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := NewStudentService(newMemStudents(), nil)
	req := model.StudentRequest{Name: "Asha", Email: "asha@college.edu", RollNumber: "R9", EventName: "Drive"}

	st, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.NotEmpty(t, st.QRToken)

	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestStudentService_Authenticate(t *testing.T) {
	ctx := context.Background()
	store := newMemStudents(model.Student{ID: 1, Name: "Asha", Email: "asha@college.edu", RollNumber: "cs-042"})
	svc := NewStudentService(store, nil)

	st, err := svc.Authenticate(ctx, "asha@college.edu", " CS-042 ")
	require.NoError(t, err)
	assert.Equal(t, 1, st.ID)

	_, err = svc.Authenticate(ctx, "asha@college.edu", "CS-043")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "ghost@college.edu", "CS-042")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestStudentService_Review(t *testing.T) {
	ctx := context.Background()
	store := newMemStudents(model.Student{ID: 1, Name: "Asha", Email: "asha@college.edu"})
	svc := NewStudentService(store, nil)

	score := 8.5
	st, err := svc.Review(ctx, 1, model.ReviewRequest{Score: &score, RoundOneQualified: true})
	require.NoError(t, err)
	require.NotNil(t, st.Review)
	assert.Equal(t, 8.5, *st.Review.Score)
	assert.True(t, st.Review.RoundOneQualified)

	tooHigh := 11.0
	_, err = svc.Review(ctx, 1, model.ReviewRequest{Score: &tooHigh})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAlumniService_ImportRowsLaterRowWins(t *testing.T) {
	ctx := context.Background()
	store := &memAlumni{}
	svc := NewAlumniService(store)

	res, err := svc.ImportRows(ctx, []map[string]string{
		{"name": "Kiran", "email": "kiran@corp.com", "company": "Acme"},
		{"name": "Kiran R", "email": "KIRAN@corp.com", "organization": "Globex"},
		{"name": "", "email": "anon@corp.com"},
		{"name": "Nobody", "email": "bad"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 3, res.Skipped)
	assert.Len(t, res.Errors, 2)

	require.Len(t, store.alumni, 1)
	assert.Equal(t, "Globex", store.alumni[0].Company)
	assert.Equal(t, "Kiran R", store.alumni[0].Name)

	list, page, err := svc.List(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, page.TotalItems)
}
