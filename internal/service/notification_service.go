package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/ptpcell/placement-backend/internal/validator"
	"github.com/rs/zerolog/log"
)

// Reminder defaults used when the admin leaves them blank.
const (
	DefaultReminderVenue = "PTP - HALL"
	DefaultReminderTime  = "3:00 PM"
)

// NotificationService fans reminder mail out to an event's registered students.
// Each student becomes an independent mail job; delivery happens in the mail worker,
// so one failing address never holds back the others.
type NotificationService struct {
	events   EventStore
	students StudentStore
	mail     MailQueue
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(events EventStore, students StudentStore, mail MailQueue) *NotificationService {
	return &NotificationService{events: events, students: students, mail: mail}
}

// SendReminders queues one reminder per registered student of eventID.
func (s *NotificationService) SendReminders(ctx context.Context, eventID uuid.UUID, req model.ReminderRequest) (*model.ReminderResult, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fromRepo(err)
	}
	roster, err := s.students.ListByEventName(ctx, event.Name)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	venue := strings.TrimSpace(req.Venue)
	if venue == "" {
		venue = DefaultReminderVenue
	}
	at := strings.TrimSpace(req.Time)
	if at == "" {
		at = DefaultReminderTime
	}

	res := &model.ReminderResult{}
	jobs := make([]model.MailJob, 0, len(roster))
	for _, st := range roster {
		if !validator.IsEmail(st.Email) {
			res.Skipped++
			continue
		}
		jobs = append(jobs, model.MailJob{
			Kind:    model.MailReminder,
			To:      st.Email,
			Subject: "Reminder: PTP - " + event.Name,
			Data: map[string]string{
				"name":       st.Name,
				"event_name": event.Name,
				"venue":      venue,
				"time":       at,
			},
		})
	}
	if len(jobs) == 0 {
		return res, nil
	}

	if err := s.mail.Enqueue(ctx, jobs...); err != nil {
		return nil, fmt.Errorf("queue reminders: %w", err)
	}
	res.Queued = len(jobs)
	log.Info().Str("event_id", eventID.String()).Int("queued", res.Queued).Int("skipped", res.Skipped).
		Msg("Reminders queued")
	return res, nil
}
