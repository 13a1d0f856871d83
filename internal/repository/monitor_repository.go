package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/ptpcell/placement-backend/internal/config"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

// MonitorRepository carries live quiz signals over Redis Pub/Sub, one channel per event.
type MonitorRepository struct {
	rdb *redis.Client
}

// NewMonitorRepository creates a new MonitorRepository.
func NewMonitorRepository(rdb *redis.Client) *MonitorRepository {
	return &MonitorRepository{rdb: rdb}
}

// Publish sends sig to every monitor attached to its event.
func (r *MonitorRepository) Publish(ctx context.Context, sig model.QuizSignal) error {
	payload, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("marshal signal: %w", err)
	}
	return r.rdb.Publish(ctx, config.CacheKey.EventQuizChannel(sig.EventID.String()), payload).Err()
}

// Subscribe attaches to an event's signal channel. The caller must Close the subscription.
func (r *MonitorRepository) Subscribe(ctx context.Context, eventID uuid.UUID) *redis.PubSub {
	return r.rdb.Subscribe(ctx, config.CacheKey.EventQuizChannel(eventID.String()))
}
