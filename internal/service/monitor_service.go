package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/ptpcell/placement-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// MonitorSnapshot is what an admin monitor shows on attach and on refresh.
type MonitorSnapshot struct {
	Event            *model.Event           `json:"event"`
	RemainingSeconds int                    `json:"remaining_seconds"`
	Leaderboard      []model.LeaderboardRow `json:"leaderboard"`
	TotalStudents    int                    `json:"total_students"`
	Participated     int                    `json:"participated_students"`
}

// MonitorService publishes quiz signals and builds live monitor snapshots.
type MonitorService struct {
	monitorRepo *repository.MonitorRepository
	activation  *ActivationService
	leaderboard *LeaderboardService
}

// NewMonitorService creates a new MonitorService.
func NewMonitorService(monitorRepo *repository.MonitorRepository) *MonitorService {
	return &MonitorService{monitorRepo: monitorRepo}
}

// Attach wires the services a snapshot reads from. Both depend on the publisher,
// so they are attached after construction.
func (s *MonitorService) Attach(activation *ActivationService, leaderboard *LeaderboardService) {
	s.activation = activation
	s.leaderboard = leaderboard
}

// Publish implements SignalPublisher. Failures are logged and dropped.
func (s *MonitorService) Publish(ctx context.Context, sig model.QuizSignal) {
	if err := s.monitorRepo.Publish(ctx, sig); err != nil {
		log.Warn().Err(err).Str("event_id", sig.EventID.String()).Str("type", string(sig.Type)).
			Msg("Failed to publish quiz signal")
	}
}

// Subscribe attaches to an event's live signals.
func (s *MonitorService) Subscribe(ctx context.Context, eventID uuid.UUID) *redis.PubSub {
	return s.monitorRepo.Subscribe(ctx, eventID)
}

// Snapshot loads live state and the leaderboard concurrently.
func (s *MonitorService) Snapshot(ctx context.Context, eventID uuid.UUID) (*MonitorSnapshot, error) {
	var (
		event *model.Event
		act   *model.Activation
		board *model.Leaderboard
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		event, err = s.activation.events.GetByID(gctx, eventID)
		if err != nil {
			return fromRepo(err)
		}
		act, _, err = s.activation.Current(gctx, eventID)
		return err
	})
	g.Go(func() error {
		var err error
		board, err = s.leaderboard.Get(gctx, eventID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	event.ApplyActivation(act)
	snap := &MonitorSnapshot{
		Event:         event,
		Leaderboard:   board.Rows,
		TotalStudents: board.TotalStudents,
		Participated:  board.ParticipatedStudents,
	}
	if act != nil {
		snap.RemainingSeconds = s.activation.Remaining(act)
	}
	return snap, nil
}
