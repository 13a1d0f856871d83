package repository

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActivationRepo(t *testing.T) (*ActivationRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewActivationRepository(client), mr
}

func sampleActivation(eventID uuid.UUID, at time.Time) *model.Activation {
	qid := uuid.New()
	return &model.Activation{
		EventID:     eventID,
		QuestionID:  qid,
		ActivatedAt: at,
		Question: model.StudentQuestion{
			ID:       qid,
			Prompt:   "2 + 2 = ?",
			Options:  []string{"3", "4", "5", "22"},
			OrderNum: 1,
		},
	}
}

func TestActivationRepository_SetAndGet(t *testing.T) {
	ctx := context.Background()
	repo, mr := newActivationRepo(t)
	eventID := uuid.New()

	got, err := repo.Get(ctx, eventID)
	require.NoError(t, err)
	assert.Nil(t, got, "unknown event must read as idle")

	at := time.Date(2026, 3, 1, 10, 0, 0, 123_000_000, time.UTC)
	act := sampleActivation(eventID, at)
	require.NoError(t, repo.Set(ctx, act))
	assert.True(t, mr.Exists("event:"+eventID.String()+":activation"))

	got, err = repo.Get(ctx, eventID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, act.QuestionID, got.QuestionID)
	assert.True(t, at.Equal(got.ActivatedAt))
	assert.Equal(t, act.Question, got.Question)
}

func TestActivationRepository_SetReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	repo, _ := newActivationRepo(t)
	eventID := uuid.New()
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	first := sampleActivation(eventID, t0)
	second := sampleActivation(eventID, t0.Add(5*time.Second))
	require.NoError(t, repo.Set(ctx, first))
	require.NoError(t, repo.Set(ctx, second))

	got, err := repo.Get(ctx, eventID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.QuestionID, got.QuestionID)
	assert.True(t, second.ActivatedAt.Equal(got.ActivatedAt))
}

func TestActivationRepository_ClearIfActivatedAt(t *testing.T) {
	ctx := context.Background()
	repo, _ := newActivationRepo(t)
	eventID := uuid.New()
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Set(ctx, sampleActivation(eventID, t0)))

	// A stale observation must not clear a newer activation.
	cleared, err := repo.ClearIfActivatedAt(ctx, eventID, t0.Add(-time.Minute))
	require.NoError(t, err)
	assert.False(t, cleared)

	got, err := repo.Get(ctx, eventID)
	require.NoError(t, err)
	assert.NotNil(t, got)

	cleared, err = repo.ClearIfActivatedAt(ctx, eventID, t0)
	require.NoError(t, err)
	assert.True(t, cleared)

	got, err = repo.Get(ctx, eventID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Second clear is a no-op.
	cleared, err = repo.ClearIfActivatedAt(ctx, eventID, t0)
	require.NoError(t, err)
	assert.False(t, cleared)
}

func TestActivationRepository_ClearIfQuestion(t *testing.T) {
	ctx := context.Background()
	repo, _ := newActivationRepo(t)
	eventID := uuid.New()
	act := sampleActivation(eventID, time.Now().UTC())
	require.NoError(t, repo.Set(ctx, act))

	cleared, err := repo.ClearIfQuestion(ctx, eventID, uuid.New())
	require.NoError(t, err)
	assert.False(t, cleared)

	cleared, err = repo.ClearIfQuestion(ctx, eventID, act.QuestionID)
	require.NoError(t, err)
	assert.True(t, cleared)

	got, err := repo.Get(ctx, eventID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestActivationRepository_RefreshQuestion(t *testing.T) {
	ctx := context.Background()
	repo, _ := newActivationRepo(t)
	eventID := uuid.New()
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	act := sampleActivation(eventID, t0)
	require.NoError(t, repo.Set(ctx, act))

	edited := act.Question
	edited.Prompt = "2 * 2 = ?"
	ok, err := repo.RefreshQuestion(ctx, eventID, edited)
	require.NoError(t, err)
	assert.True(t, ok)

	other := edited
	other.ID = uuid.New()
	ok, err = repo.RefreshQuestion(ctx, eventID, other)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.Get(ctx, eventID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2 * 2 = ?", got.Question.Prompt)
	assert.True(t, t0.Equal(got.ActivatedAt), "refresh must keep the activation instant")
}

func TestActivationRepository_Clear(t *testing.T) {
	ctx := context.Background()
	repo, _ := newActivationRepo(t)
	eventID := uuid.New()

	require.NoError(t, repo.Clear(ctx, eventID))
	require.NoError(t, repo.Set(ctx, sampleActivation(eventID, time.Now().UTC())))
	require.NoError(t, repo.Clear(ctx, eventID))

	got, err := repo.Get(ctx, eventID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
