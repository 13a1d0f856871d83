package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuizRequest() model.QuizRequest {
	return model.QuizRequest{
		Title:           " Aptitude Warmup ",
		DurationMinutes: 10,
		Tags:            []string{"aptitude", " ", "warmup "},
		Questions: []model.QuizQuestionRequest{
			{Prompt: "7 x 8?", Options: []model.QuizOption{{Text: "54"}, {Text: "56", IsCorrect: true}, {Text: "58"}}},
			{Prompt: "Next prime after 7?", Options: []model.QuizOption{{Text: "9"}, {Text: "11", IsCorrect: true}}},
			{Prompt: "Even numbers?", Options: []model.QuizOption{{Text: "2", IsCorrect: true}, {Text: "3"}, {Text: "4", IsCorrect: true}}},
		},
	}
}

func newLiveQuiz(t *testing.T) (*QuizService, *memQuizzes, *testClock, *model.Quiz) {
	t.Helper()
	store := newMemQuizzes()
	clock := newTestClock()
	svc := NewQuizService(store, clock.Clock())

	q, err := svc.Create(context.Background(), sampleQuizRequest())
	require.NoError(t, err)
	live := true
	_, err = svc.SetLive(context.Background(), q.ID, &live)
	require.NoError(t, err)
	return svc, store, clock, q
}

func TestQuizService_CreateNormalizes(t *testing.T) {
	svc := NewQuizService(newMemQuizzes(), nil)

	q, err := svc.Create(context.Background(), sampleQuizRequest())
	require.NoError(t, err)
	assert.Equal(t, "Aptitude Warmup", q.Title)
	assert.Equal(t, []string{"aptitude", "warmup"}, q.Tags)
	assert.True(t, q.Published, "quizzes are published by default")
	assert.False(t, q.Live)
	require.Len(t, q.Questions, 3)
	assert.NotEqual(t, uuid.Nil, q.Questions[0].ID)
}

func TestQuizService_CreateValidation(t *testing.T) {
	svc := NewQuizService(newMemQuizzes(), nil)

	noCorrect := sampleQuizRequest()
	noCorrect.Questions[1].Options = []model.QuizOption{{Text: "9"}, {Text: "11"}}
	_, err := svc.Create(context.Background(), noCorrect)
	assert.ErrorIs(t, err, ErrValidation)

	oneOption := sampleQuizRequest()
	oneOption.Questions[0].Options = oneOption.Questions[0].Options[:1]
	_, err = svc.Create(context.Background(), oneOption)
	assert.ErrorIs(t, err, ErrValidation)

	noQuestions := sampleQuizRequest()
	noQuestions.Questions = nil
	_, err = svc.Create(context.Background(), noQuestions)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestQuizService_SetLiveToggles(t *testing.T) {
	ctx := context.Background()
	svc, _, _, q := newLiveQuiz(t)

	live, err := svc.SetLive(ctx, q.ID, nil)
	require.NoError(t, err)
	assert.False(t, live)

	live, err = svc.SetLive(ctx, q.ID, nil)
	require.NoError(t, err)
	assert.True(t, live)

	_, err = svc.SetLive(ctx, uuid.New(), nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGradeAttempt(t *testing.T) {
	_, _, _, q := newLiveQuiz(t)
	q1, q2, q3 := q.Questions[0].ID.String(), q.Questions[1].ID.String(), q.Questions[2].ID.String()

	graded, score := GradeAttempt(q, []model.AttemptAnswerRequest{
		{QuestionID: q1, SelectedIndex: 1},
		{QuestionID: q1, SelectedIndex: 0},
		{QuestionID: q2, SelectedIndex: -1},
		{QuestionID: q3, SelectedIndex: 2},
		{QuestionID: uuid.NewString(), SelectedIndex: 0},
	})

	assert.Equal(t, 2, score, "first answer per question only, any correct option counts")
	require.Len(t, graded, 3, "answers for questions outside the quiz are dropped")
	assert.True(t, graded[0].IsCorrect)
	assert.False(t, graded[1].IsCorrect)
	assert.True(t, graded[2].IsCorrect)
	for _, g := range graded {
		assert.Contains(t, []string{q1, q2, q3}, g.QuestionID.String())
	}
}

func TestQuizService_SubmitAttempt(t *testing.T) {
	ctx := context.Background()
	svc, store, clock, q := newLiveQuiz(t)
	started := clock.Now().Add(-95 * time.Second)

	res, err := svc.SubmitAttempt(ctx, q.ID, model.SubmitAttemptRequest{
		Answers: []model.AttemptAnswerRequest{
			{QuestionID: q.Questions[0].ID.String(), SelectedIndex: 1},
			{QuestionID: q.Questions[1].ID.String(), SelectedIndex: 0},
		},
		Participant: model.Participant{Name: " Dana ", Email: "Dana@College.edu"},
		StartedAt:   &started,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, 3, res.TotalQuestions)
	assert.Equal(t, 33, res.Percentage)
	assert.Equal(t, 95, res.DurationSecs)

	require.Len(t, store.attempts, 1)
	assert.Equal(t, "dana@college.edu", store.attempts[0].Participant.Email)
	assert.Equal(t, "Dana", store.attempts[0].Participant.Name)
}

func TestQuizService_SubmitAttemptDurationBounds(t *testing.T) {
	ctx := context.Background()
	svc, _, clock, q := newLiveQuiz(t)

	longAgo := clock.Now().Add(-2 * time.Hour)
	res, err := svc.SubmitAttempt(ctx, q.ID, model.SubmitAttemptRequest{StartedAt: &longAgo})
	require.NoError(t, err)
	assert.Equal(t, 600, res.DurationSecs, "capped at the quiz duration")
	assert.Equal(t, 0, res.Score)

	future := clock.Now().Add(time.Minute)
	res, err = svc.SubmitAttempt(ctx, q.ID, model.SubmitAttemptRequest{StartedAt: &future})
	require.NoError(t, err)
	assert.Equal(t, 1, res.DurationSecs)
}

func TestQuizService_SubmitAttemptUnavailable(t *testing.T) {
	ctx := context.Background()
	svc, _, _, q := newLiveQuiz(t)

	off := false
	_, err := svc.SetLive(ctx, q.ID, &off)
	require.NoError(t, err)
	_, err = svc.SubmitAttempt(ctx, q.ID, model.SubmitAttemptRequest{})
	assert.ErrorIs(t, err, ErrQuizUnavailable)
	_, err = svc.GetPublic(ctx, q.ID)
	assert.ErrorIs(t, err, ErrQuizUnavailable)

	unpublished := sampleQuizRequest()
	unpublished.Published = &off
	draft, err := svc.Create(ctx, unpublished)
	require.NoError(t, err)
	on := true
	_, err = svc.SetLive(ctx, draft.ID, &on)
	require.NoError(t, err)
	_, err = svc.SubmitAttempt(ctx, draft.ID, model.SubmitAttemptRequest{})
	assert.ErrorIs(t, err, ErrQuizUnavailable)

	_, err = svc.SubmitAttempt(ctx, uuid.New(), model.SubmitAttemptRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuizService_PublicViewHidesCorrectness(t *testing.T) {
	ctx := context.Background()
	svc, _, _, q := newLiveQuiz(t)

	pq, err := svc.GetPublic(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, pq.Questions, 3)
	assert.Equal(t, []string{"54", "56", "58"}, pq.Questions[0].Options)

	cards, err := svc.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Empty(t, cards[0].Questions)
	assert.Equal(t, 3, cards[0].QuestionCount)
}

func TestQuizService_Analytics(t *testing.T) {
	ctx := context.Background()
	svc, _, _, q := newLiveQuiz(t)

	for _, selected := range []int{1, 0} {
		_, err := svc.SubmitAttempt(ctx, q.ID, model.SubmitAttemptRequest{
			Answers: []model.AttemptAnswerRequest{{QuestionID: q.Questions[0].ID.String(), SelectedIndex: selected}},
		})
		require.NoError(t, err)
	}

	stats, err := svc.Analytics(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Attempts)
	assert.Equal(t, 0.5, stats.AvgScore)
	assert.Equal(t, 16.7, stats.AvgPercent)
	assert.Len(t, stats.Recent, 2)
}
