package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ptpcell/placement-backend/internal/config"
	"github.com/ptpcell/placement-backend/internal/logger"
	"github.com/ptpcell/placement-backend/internal/mailer"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	mailPollTimeout   = time.Second
	mailDrainDeadline = 30 * time.Second
)

// MailWorker consumes mail_queue and delivers each job through a Mailer.
// Jobs that keep failing are parked on mail_dead_queue.
type MailWorker struct {
	rdb         *redis.Client
	mailer      mailer.Mailer
	maxAttempts int
	retryDelay  time.Duration
	log         zerolog.Logger
}

// NewMailWorker creates a new MailWorker.
func NewMailWorker(rdb *redis.Client, m mailer.Mailer, maxAttempts int, log zerolog.Logger) *MailWorker {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &MailWorker{
		rdb:         rdb,
		mailer:      m,
		maxAttempts: maxAttempts,
		retryDelay:  5 * time.Second,
		log:         logger.Component(log, "mail_worker"),
	}
}

// Start begins the worker loop. Call in a goroutine.
func (w *MailWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			drainCtx, cancel := context.WithTimeout(context.Background(), mailDrainDeadline)
			w.drain(drainCtx)
			cancel()
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *MailWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, mailPollTimeout, config.WorkerKey.MailQueue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}
	if len(result) < 2 {
		return
	}

	var job model.MailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error, dropping job")
		return
	}

	if err := w.deliver(ctx, &job); err != nil {
		if w.retry(ctx, &job, err) {
			w.pause(ctx)
		}
	}
}

// pause waits retryDelay before the next pop, returning early on shutdown.
func (w *MailWorker) pause(ctx context.Context) {
	if w.retryDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(w.retryDelay):
	}
}

// requeue pushes raw onto queue. The job has already left Redis, so a failed push
// is logged with the full payload for manual recovery.
func (w *MailWorker) requeue(ctx context.Context, queue string, raw []byte) bool {
	if err := w.rdb.RPush(ctx, queue, raw).Err(); err != nil {
		w.log.Error().Err(err).Str("queue", queue).RawJSON("job", raw).Msg("Requeue failed, mail job lost")
		return false
	}
	return true
}

func (w *MailWorker) deliver(ctx context.Context, job *model.MailJob) error {
	msg, err := mailer.Render(*job)
	if err != nil {
		return err
	}
	if err := w.mailer.Send(ctx, msg); err != nil {
		return err
	}
	w.log.Debug().Str("kind", string(job.Kind)).Str("to", job.To).Msg("Mail delivered")
	return nil
}

// retry requeues job after a failed delivery, or moves it to the dead queue once it
// has used up its attempts. It reports whether the job is back on the live queue.
func (w *MailWorker) retry(ctx context.Context, job *model.MailJob, cause error) bool {
	job.Attempts++
	raw, err := json.Marshal(job)
	if err != nil {
		w.log.Error().Err(err).Msg("Marshal error, dropping job")
		return false
	}

	if job.Attempts >= w.maxAttempts {
		w.log.Error().Err(cause).Str("kind", string(job.Kind)).Str("to", job.To).
			Int("attempts", job.Attempts).Msg("Mail failed permanently")
		w.requeue(ctx, config.WorkerKey.MailDeadQueue, raw)
		return false
	}

	w.log.Warn().Err(cause).Str("kind", string(job.Kind)).Str("to", job.To).
		Int("attempts", job.Attempts).Msg("Mail failed, requeueing")
	return w.requeue(ctx, config.WorkerKey.MailQueue, raw)
}

// drain delivers what is left on the queue before shutdown. Items that fail are put
// back so the next process picks them up.
func (w *MailWorker) drain(ctx context.Context) {
	drained := 0
	for ctx.Err() == nil {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.MailQueue).Result()
		if err != nil {
			break
		}

		var job model.MailJob
		if err := json.Unmarshal([]byte(result), &job); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.deliver(ctx, &job); err != nil {
			w.log.Error().Err(err).Msg("Drain delivery error")
			w.requeue(context.Background(), config.WorkerKey.MailQueue, []byte(result))
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining mail")
	}
}
