package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrade(t *testing.T) {
	assert.True(t, Grade(2, 2))
	assert.False(t, Grade(2, 1))
	assert.False(t, Grade(2, model.NoAnswerIndex))
	assert.False(t, Grade(model.NoAnswerIndex, model.NoAnswerIndex), "a timeout never grades as correct")
}

func TestAnswerService_SubmitCorrectThenWrong(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t)

	f.activate(t, f.q1)
	res, err := f.answers.Submit(ctx, f.alice.ID, f.event.ID, answer(f.q1, 2, 12))
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 1, res.TotalScore)
	assert.Equal(t, 1, res.TotalAnswered)
	assert.True(t, f.signals.has(model.SignalAnswerSubmitted))

	f.activate(t, f.q2)
	res, err = f.answers.Submit(ctx, f.alice.ID, f.event.ID, answer(f.q2, 0, 8))
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 1, res.TotalScore)
	assert.Equal(t, 2, res.TotalAnswered)

	resp, err := f.answers.MyResponse(ctx, f.event.ID, f.alice.Email)
	require.NoError(t, err)
	assert.Equal(t, 20, resp.TotalTimeTaken)
	assert.Len(t, resp.Answers, 2)
}

func TestAnswerService_SubmitDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t)
	f.activate(t, f.q1)

	_, err := f.answers.Submit(ctx, f.alice.ID, f.event.ID, answer(f.q1, 1, 5))
	require.NoError(t, err)

	_, err = f.answers.Submit(ctx, f.alice.ID, f.event.ID, answer(f.q1, 2, 6))
	assert.ErrorIs(t, err, ErrDuplicateAnswer)

	resp, err := f.answers.MyResponse(ctx, f.event.ID, f.alice.Email)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.TotalScore, "the rejected retry must not change the score")
	assert.Equal(t, 1, resp.AnsweredCount)
}

func TestAnswerService_SubmitConcurrentDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t)
	f.activate(t, f.q1)

	var ok, dup atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.answers.Submit(ctx, f.alice.ID, f.event.ID, answer(f.q1, 2, 3))
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, ErrDuplicateAnswer):
				dup.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(15), dup.Load())
}

func TestAnswerService_SubmitTimeout(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t)
	f.activate(t, f.q1)

	res, err := f.answers.Submit(ctx, f.alice.ID, f.event.ID, answer(f.q1, model.NoAnswerIndex, 60))
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 0, res.TotalScore)
	assert.Equal(t, 1, res.TotalAnswered)
}

func TestAnswerService_SubmitClampsTimeTaken(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t)
	f.activate(t, f.q1)

	_, err := f.answers.Submit(ctx, f.alice.ID, f.event.ID, answer(f.q1, 2, 120))
	require.NoError(t, err)

	resp, err := f.answers.MyResponse(ctx, f.event.ID, f.alice.Email)
	require.NoError(t, err)
	assert.Equal(t, 60, resp.TotalTimeTaken)
	assert.Equal(t, 60, resp.Answers[0].TimeTaken)
}

func TestAnswerService_SubmitRequiresActiveEvent(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t)

	_, err := f.answers.Submit(ctx, f.alice.ID, f.event.ID, answer(f.q1, 2, 5))
	assert.ErrorIs(t, err, ErrNoActiveQuestion, "idle event")

	f.activate(t, f.q1)
	f.clock.Advance(61 * time.Second)
	_, err = f.answers.Submit(ctx, f.alice.ID, f.event.ID, answer(f.q1, 2, 5))
	assert.ErrorIs(t, err, ErrNoActiveQuestion, "expired activation")

	_, err = f.answers.MyResponse(ctx, f.event.ID, f.alice.Email)
	assert.ErrorIs(t, err, ErrNotFound, "nothing may be recorded")
}

func TestAnswerService_SubmitAcrossReactivation(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t)

	f.activate(t, f.q1)
	f.activate(t, f.q2)

	res, err := f.answers.Submit(ctx, f.alice.ID, f.event.ID, answer(f.q1, 2, 30))
	require.NoError(t, err, "an answer in flight for the previous question still counts")
	assert.True(t, res.IsCorrect)
}

func TestAnswerService_SubmitValidation(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t)
	f.activate(t, f.q1)

	cases := []struct {
		name string
		req  model.SubmitAnswerRequest
		want error
	}{
		{"bad question id", model.SubmitAnswerRequest{QuestionID: "nope", SelectedIndex: new(int)}, ErrValidation},
		{"missing selection", model.SubmitAnswerRequest{QuestionID: f.q1.ID.String()}, ErrValidation},
		{"index too large", answer(f.q1, 4, 1), ErrValidation},
		{"index below timeout", answer(f.q1, -2, 1), ErrValidation},
		{"unknown question", answer(model.EventQuestion{ID: uuid.New()}, 0, 1), ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.answers.Submit(ctx, f.alice.ID, f.event.ID, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAnswerService_Poll(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t)

	res, err := f.answers.Poll(ctx, f.event.ID, f.alice.Email)
	require.NoError(t, err)
	assert.Equal(t, model.PollNone, res.Status)
	assert.Equal(t, model.PollReasonIdle, res.Reason)

	f.activate(t, f.q1)
	f.clock.Advance(14 * time.Second)
	res, err = f.answers.Poll(ctx, f.event.ID, f.alice.Email)
	require.NoError(t, err)
	assert.Equal(t, model.PollActive, res.Status)
	require.NotNil(t, res.Question)
	assert.Equal(t, f.q1.Prompt, res.Question.Prompt)
	assert.Equal(t, 46, res.RemainingSeconds)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "correct", "poll payload must not expose the answer")

	_, err = f.answers.Submit(ctx, f.alice.ID, f.event.ID, answer(f.q1, 2, 14))
	require.NoError(t, err)

	res, err = f.answers.Poll(ctx, f.event.ID, f.alice.Email)
	require.NoError(t, err)
	assert.Equal(t, model.PollAlreadyAnswered, res.Status)
	assert.Nil(t, res.Question)

	res, err = f.answers.Poll(ctx, f.event.ID, f.bob.Email)
	require.NoError(t, err)
	assert.Equal(t, model.PollActive, res.Status, "bob has not answered yet")

	f.clock.Advance(46 * time.Second)
	res, err = f.answers.Poll(ctx, f.event.ID, f.bob.Email)
	require.NoError(t, err)
	assert.Equal(t, model.PollNone, res.Status)
	assert.Equal(t, model.PollReasonExpired, res.Reason)
}

func TestAnswerService_PollMyEvent(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t)
	f.activate(t, f.q2)

	event, res, err := f.answers.PollMyEvent(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, f.event.ID, event.ID)
	assert.Equal(t, model.PollActive, res.Status)
	assert.Equal(t, f.q2.ID, *res.QuestionID)

	_, _, err = f.answers.PollMyEvent(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}
