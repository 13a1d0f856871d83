package service

import (
	"context"
	"time"

	"github.com/ptpcell/placement-backend/internal/repository"
	"golang.org/x/sync/errgroup"
)

// QueueDepth reports outbound mail backlog.
type QueueDepth interface {
	Depth(ctx context.Context) (pending, dead int64, err error)
}

// DashboardData consolidates all metrics for the admin dashboard.
type DashboardData struct {
	Counts          *repository.DashboardCounts         `json:"counts"`
	UpcomingEvents  []repository.DashboardEvent         `json:"upcoming_events"`
	AttendanceTrend []repository.DashboardAttendanceDay `json:"attendance_trend"`
	MailPending     int64                               `json:"mail_pending"`
	MailFailed      int64                               `json:"mail_failed"`
}

// DashboardService handles admin dashboard business logic.
type DashboardService struct {
	repo  *repository.DashboardRepository
	queue QueueDepth
	loc   *time.Location
	clock Clock
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo *repository.DashboardRepository, queue QueueDepth, loc *time.Location) *DashboardService {
	return &DashboardService{repo: repo, queue: queue, loc: loc}
}

// GetDashboardData fetches all dashboard metrics concurrently.
func (s *DashboardService) GetDashboardData(ctx context.Context) (*DashboardData, error) {
	now := s.clock.now()
	today := AttendanceDay(now, s.loc)
	data := &DashboardData{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data.Counts, err = s.repo.GetSummaryCounts(gctx, today)
		return err
	})
	g.Go(func() error {
		var err error
		data.UpcomingEvents, err = s.repo.GetUpcomingEvents(gctx, now.Add(-12*time.Hour), 5)
		return err
	})
	g.Go(func() error {
		var err error
		data.AttendanceTrend, err = s.repo.GetAttendanceTrend(gctx, today, 7)
		return err
	})
	if s.queue != nil {
		g.Go(func() error {
			var err error
			data.MailPending, data.MailFailed, err = s.queue.Depth(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}
