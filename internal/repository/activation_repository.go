package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/ptpcell/placement-backend/internal/config"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

// Hash fields of an activation key.
const (
	fieldQuestionID  = "question_id"
	fieldActivatedAt = "activated_at"
	fieldQuestion    = "question"
)

// clearIfFieldEquals deletes KEYS[1] only while field ARGV[1] still equals ARGV[2].
var clearIfFieldEquals = redis.NewScript(`
if redis.call('HGET', KEYS[1], ARGV[1]) == ARGV[2] then
	redis.call('DEL', KEYS[1])
	return 1
end
return 0
`)

// setIfQuestion overwrites the question snapshot only while the same question is active.
var setIfQuestion = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'question_id') == ARGV[1] then
	redis.call('HSET', KEYS[1], 'question', ARGV[2])
	return 1
end
return 0
`)

// ActivationRepository keeps each event's Idle/Active quiz state in a Redis hash.
// A missing key is Idle. All transitions are single commands or Lua scripts.
type ActivationRepository struct {
	rdb *redis.Client
}

// NewActivationRepository creates a new ActivationRepository.
func NewActivationRepository(rdb *redis.Client) *ActivationRepository {
	return &ActivationRepository{rdb: rdb}
}

// Set makes act the event's only active question, replacing any previous one.
func (r *ActivationRepository) Set(ctx context.Context, act *model.Activation) error {
	payload, err := json.Marshal(act.Question)
	if err != nil {
		return fmt.Errorf("marshal question: %w", err)
	}
	return r.rdb.HSet(ctx, config.CacheKey.EventActivationKey(act.EventID.String()),
		fieldQuestionID, act.QuestionID.String(),
		fieldActivatedAt, strconv.FormatInt(act.ActivatedAt.UnixMilli(), 10),
		fieldQuestion, payload,
	).Err()
}

// Get returns the current activation, or nil when the event is Idle.
func (r *ActivationRepository) Get(ctx context.Context, eventID uuid.UUID) (*model.Activation, error) {
	vals, err := r.rdb.HGetAll(ctx, config.CacheKey.EventActivationKey(eventID.String())).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, nil
	}

	qid, err := uuid.Parse(vals[fieldQuestionID])
	if err != nil {
		return nil, fmt.Errorf("corrupt activation question_id: %w", err)
	}
	ms, err := strconv.ParseInt(vals[fieldActivatedAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt activation activated_at: %w", err)
	}

	act := &model.Activation{
		EventID:     eventID,
		QuestionID:  qid,
		ActivatedAt: time.UnixMilli(ms).UTC(),
	}
	if raw := vals[fieldQuestion]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &act.Question); err != nil {
			return nil, fmt.Errorf("corrupt activation question: %w", err)
		}
	}
	return act, nil
}

// ClearIfActivatedAt moves the event to Idle only if the activation stamped activatedAt is
// still current. A newer activation is left untouched. Reports whether a key was removed.
func (r *ActivationRepository) ClearIfActivatedAt(ctx context.Context, eventID uuid.UUID, activatedAt time.Time) (bool, error) {
	n, err := clearIfFieldEquals.Run(ctx, r.rdb,
		[]string{config.CacheKey.EventActivationKey(eventID.String())},
		fieldActivatedAt, strconv.FormatInt(activatedAt.UnixMilli(), 10),
	).Int()
	return n == 1, err
}

// ClearIfQuestion moves the event to Idle only if questionID is the active question.
func (r *ActivationRepository) ClearIfQuestion(ctx context.Context, eventID, questionID uuid.UUID) (bool, error) {
	n, err := clearIfFieldEquals.Run(ctx, r.rdb,
		[]string{config.CacheKey.EventActivationKey(eventID.String())},
		fieldQuestionID, questionID.String(),
	).Int()
	return n == 1, err
}

// RefreshQuestion replaces the cached student snapshot if q is still the active question.
// The activation instant is kept.
func (r *ActivationRepository) RefreshQuestion(ctx context.Context, eventID uuid.UUID, q model.StudentQuestion) (bool, error) {
	payload, err := json.Marshal(q)
	if err != nil {
		return false, fmt.Errorf("marshal question: %w", err)
	}
	n, err := setIfQuestion.Run(ctx, r.rdb,
		[]string{config.CacheKey.EventActivationKey(eventID.String())},
		q.ID.String(), payload,
	).Int()
	return n == 1, err
}

// Clear moves the event to Idle. Idempotent.
func (r *ActivationRepository) Clear(ctx context.Context, eventID uuid.UUID) error {
	return r.rdb.Del(ctx, config.CacheKey.EventActivationKey(eventID.String())).Err()
}
