package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/rs/zerolog/log"
)

// LeaderboardService ranks every registered participant of an event.
type LeaderboardService struct {
	events    EventStore
	responses ResponseStore
	students  StudentStore
	signals   SignalPublisher
	clock     Clock
}

// NewLeaderboardService creates a new LeaderboardService. signals may be nil.
func NewLeaderboardService(events EventStore, responses ResponseStore, students StudentStore, signals SignalPublisher, clock Clock) *LeaderboardService {
	if signals == nil {
		signals = nopSignals{}
	}
	return &LeaderboardService{
		events:    events,
		responses: responses,
		students:  students,
		signals:   signals,
		clock:     clock,
	}
}

// Get builds the leaderboard. Every student registered under the event's name gets a
// row; those without a response score 0 with no completion time.
func (s *LeaderboardService) Get(ctx context.Context, eventID uuid.UUID) (*model.Leaderboard, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fromRepo(err)
	}

	roster, err := s.students.ListByEventName(ctx, event.Name)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	responses, err := s.responses.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}

	byEmail := make(map[string]*model.QuizResponse, len(responses))
	for i := range responses {
		byEmail[strings.ToLower(responses[i].StudentEmail)] = &responses[i]
	}

	rows := make([]model.LeaderboardRow, 0, len(roster))
	participated := 0
	for _, st := range roster {
		row := model.LeaderboardRow{
			StudentID:    st.ID,
			StudentName:  st.Name,
			RollNumber:   st.RollNumber,
			StudentEmail: st.Email,
		}
		if resp, ok := byEmail[strings.ToLower(st.Email)]; ok {
			completed := resp.CompletedAt
			row.TotalScore = resp.TotalScore
			row.TotalTimeTaken = resp.TotalTimeTaken
			row.AnsweredCount = resp.AnsweredCount
			row.CompletedAt = &completed
			row.HasSubmitted = true
			participated++
		}
		rows = append(rows, row)
	}
	RankRows(rows)

	return &model.Leaderboard{
		EventID:              event.ID,
		EventName:            event.Name,
		TotalQuestions:       event.QuestionCount,
		TotalStudents:        len(roster),
		ParticipatedStudents: participated,
		Rows:                 rows,
	}, nil
}

// RankRows sorts by score descending, then total time ascending, and assigns ranks.
// Rows that both scored 0 keep their relative order.
func RankRows(rows []model.LeaderboardRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		if a.TotalScore == 0 {
			return false
		}
		return a.TotalTimeTaken < b.TotalTimeTaken
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
}

// Clear wipes all responses of an event. It is irreversible and needs confirm=true.
func (s *LeaderboardService) Clear(ctx context.Context, eventID uuid.UUID, confirm bool) (int64, error) {
	if !confirm {
		return 0, ErrConfirmationRequired
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return 0, fromRepo(err)
	}

	deleted, err := s.responses.DeleteByEvent(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("delete responses: %w", err)
	}

	s.signals.Publish(ctx, model.QuizSignal{
		Type:    model.SignalLeaderboardCleared,
		EventID: eventID,
		At:      s.clock.now(),
	})
	log.Warn().Str("event_id", eventID.String()).Str("event_name", event.Name).Int64("responses", deleted).
		Msg("Leaderboard cleared")
	return deleted, nil
}
