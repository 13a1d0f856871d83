package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ptpcell/placement-backend/internal/config"
	"github.com/ptpcell/placement-backend/internal/mailer"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	fail map[string]bool
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[msg.To] {
		return errors.New("mailbox unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func setupWorker(t *testing.T, m mailer.Mailer, maxAttempts int) (*MailWorker, *MailQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	w := NewMailWorker(rdb, m, maxAttempts, zerolog.Nop())
	w.retryDelay = 0
	return w, NewMailQueue(rdb), mr
}

func reminder(to string) model.MailJob {
	return model.MailJob{
		Kind:    model.MailReminder,
		To:      to,
		Subject: "Reminder: PTP - Drive",
		Data:    map[string]string{"name": "x", "event_name": "Drive", "venue": "Hall", "time": "3:00 PM"},
	}
}

func TestMailQueue_EnqueueBatch(t *testing.T) {
	_, q, mr := setupWorker(t, &fakeMailer{}, 3)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, reminder("a@x.edu"), reminder("b@x.edu")))
	require.NoError(t, q.Enqueue(ctx))

	items, err := mr.List(config.WorkerKey.MailQueue)
	require.NoError(t, err)
	require.Len(t, items, 2)

	var first model.MailJob
	require.NoError(t, json.Unmarshal([]byte(items[0]), &first))
	assert.Equal(t, "a@x.edu", first.To)

	pending, dead, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, pending)
	assert.EqualValues(t, 0, dead)
}

func TestMailWorker_DeliversInOrder(t *testing.T) {
	fm := &fakeMailer{}
	w, q, _ := setupWorker(t, fm, 3)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, reminder("a@x.edu"), reminder("b@x.edu")))
	w.processNext(ctx)
	w.processNext(ctx)

	require.Len(t, fm.sent, 2)
	assert.Equal(t, "a@x.edu", fm.sent[0].To)
	assert.Equal(t, "b@x.edu", fm.sent[1].To)
	assert.Contains(t, fm.sent[0].HTML, "Hall")
}

func TestMailWorker_OneFailureDoesNotBlockOthers(t *testing.T) {
	fm := &fakeMailer{fail: map[string]bool{"bad@x.edu": true}}
	w, q, mr := setupWorker(t, fm, 2)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, reminder("bad@x.edu"), reminder("good@x.edu")))

	w.processNext(ctx) // bad fails, requeued behind good
	w.processNext(ctx) // good delivered
	w.processNext(ctx) // bad fails again, parked

	require.Len(t, fm.sent, 1)
	assert.Equal(t, "good@x.edu", fm.sent[0].To)

	live, _ := mr.List(config.WorkerKey.MailQueue)
	assert.Empty(t, live)

	dead, err := mr.List(config.WorkerKey.MailDeadQueue)
	require.NoError(t, err)
	require.Len(t, dead, 1)

	var parked model.MailJob
	require.NoError(t, json.Unmarshal([]byte(dead[0]), &parked))
	assert.Equal(t, "bad@x.edu", parked.To)
	assert.Equal(t, 2, parked.Attempts)
}

func TestMailWorker_Drain(t *testing.T) {
	fm := &fakeMailer{}
	w, q, mr := setupWorker(t, fm, 3)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, reminder("a@x.edu"), reminder("b@x.edu"), reminder("c@x.edu")))
	w.drain(ctx)

	assert.Len(t, fm.sent, 3)
	assert.False(t, mr.Exists(config.WorkerKey.MailQueue))
}

func TestMailWorker_StartDrainsWhenCancelled(t *testing.T) {
	fm := &fakeMailer{}
	w, q, _ := setupWorker(t, fm, 3)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, q.Enqueue(ctx, reminder("a@x.edu")))

	cancel()
	w.Start(ctx)

	fm.mu.Lock()
	defer fm.mu.Unlock()
	assert.Len(t, fm.sent, 1)
}

func TestMailWorker_RequeueFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	w, _, mr := setupWorker(t, &fakeMailer{}, 3)
	w.log = zerolog.New(&buf)

	job := reminder("lost@x.edu")
	mr.SetError("ERR store offline")
	requeued := w.retry(context.Background(), &job, errors.New("smtp timeout"))
	mr.SetError("")

	assert.False(t, requeued)
	assert.Contains(t, buf.String(), "mail job lost")
	assert.Contains(t, buf.String(), "lost@x.edu")
	assert.False(t, mr.Exists(config.WorkerKey.MailQueue))
}

func TestMailWorker_PauseReturnsOnShutdown(t *testing.T) {
	w, _, _ := setupWorker(t, &fakeMailer{}, 3)
	w.retryDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	w.pause(ctx)
	assert.Less(t, time.Since(start), time.Second)
}
