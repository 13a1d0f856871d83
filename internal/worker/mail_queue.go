package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ptpcell/placement-backend/internal/config"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

// MailQueue enqueues outbound mail for MailWorker.
type MailQueue struct {
	rdb *redis.Client
}

// NewMailQueue creates a new MailQueue.
func NewMailQueue(rdb *redis.Client) *MailQueue {
	return &MailQueue{rdb: rdb}
}

// Enqueue appends jobs to the queue in one round trip.
func (q *MailQueue) Enqueue(ctx context.Context, jobs ...model.MailJob) error {
	if len(jobs) == 0 {
		return nil
	}
	pipe := q.rdb.Pipeline()
	for _, job := range jobs {
		raw, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("marshal mail job: %w", err)
		}
		pipe.RPush(ctx, config.WorkerKey.MailQueue, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("enqueue mail: %w", err)
	}
	return nil
}

// Depth reports how many jobs are waiting and how many have been parked as dead.
func (q *MailQueue) Depth(ctx context.Context) (pending, dead int64, err error) {
	pipe := q.rdb.Pipeline()
	p := pipe.LLen(ctx, config.WorkerKey.MailQueue)
	d := pipe.LLen(ctx, config.WorkerKey.MailDeadQueue)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}
	return p.Val(), d.Val(), nil
}
