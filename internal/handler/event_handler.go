package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/ptpcell/placement-backend/internal/response"
	"github.com/ptpcell/placement-backend/internal/service"
	"github.com/ptpcell/placement-backend/internal/validator"
)

// EventHandler handles event management, quiz activation and leaderboard endpoints.
type EventHandler struct {
	eventService        *service.EventService
	activationService   *service.ActivationService
	leaderboardService  *service.LeaderboardService
	notificationService *service.NotificationService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(
	eventService *service.EventService,
	activationService *service.ActivationService,
	leaderboardService *service.LeaderboardService,
	notificationService *service.NotificationService,
) *EventHandler {
	return &EventHandler{
		eventService:        eventService,
		activationService:   activationService,
		leaderboardService:  leaderboardService,
		notificationService: notificationService,
	}
}

// ListEvents godoc
// GET /api/v1/admin/events
func (h *EventHandler) ListEvents(c *gin.Context) {
	events, err := h.eventService.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, events)
}

// GetEvent godoc
// GET /api/v1/admin/events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	event, err := h.eventService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, event)
}

// CreateEvent godoc
// POST /api/v1/admin/events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req model.CreateEventRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	event, err := h.eventService.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, event)
}

// UpdateEvent godoc
// PUT /api/v1/admin/events/:id
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req model.UpdateEventRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	event, err := h.eventService.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, event)
}

// DeleteEvent godoc
// DELETE /api/v1/admin/events/:id
// Removes the event with its questions and responses. Any live question goes with it.
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.eventService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}

// ActivateQuestion godoc
// POST /api/v1/admin/events/:id/activate
// Makes one question live for the quiz window. Replaces whatever was live before.
func (h *EventHandler) ActivateQuestion(c *gin.Context) {
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req model.ActivateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	act, err := h.activationService.Activate(c.Request.Context(), eventID, uuid.MustParse(req.QuestionID))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"event_id":          act.EventID,
		"question_id":       act.QuestionID,
		"activated_at":      act.ActivatedAt,
		"remaining_seconds": h.activationService.Remaining(act),
	})
}

// DeactivateQuestion godoc
// POST /api/v1/admin/events/:id/deactivate
// Returns the event to Idle. Calling it on an Idle event is a no-op.
func (h *EventHandler) DeactivateQuestion(c *gin.Context) {
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.activationService.Deactivate(c.Request.Context(), eventID); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"event_id": eventID, "quiz_active": false})
}

// QuizStatus godoc
// GET /api/v1/admin/events/:id/status
// Reads live state through the expiry check, so an elapsed question shows as Idle.
func (h *EventHandler) QuizStatus(c *gin.Context) {
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	event, err := h.activationService.Status(c.Request.Context(), eventID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"event":             event,
		"remaining_seconds": h.activationService.RemainingSeconds(event),
	})
}

// GetLeaderboard godoc
// GET /api/v1/admin/events/:id/leaderboard
// Every registered student is ranked, including those who never answered.
func (h *EventHandler) GetLeaderboard(c *gin.Context) {
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	board, err := h.leaderboardService.Get(c.Request.Context(), eventID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, board)
}

// ClearLeaderboard godoc
// DELETE /api/v1/admin/events/:id/leaderboard
// Deletes every response for the event. Requires {"confirm": true} or ?confirm=true.
func (h *EventHandler) ClearLeaderboard(c *gin.Context) {
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req model.ClearLeaderboardRequest
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}
	confirm := req.Confirm || c.Query("confirm") == "true"

	deleted, err := h.leaderboardService.Clear(c.Request.Context(), eventID, confirm)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted_responses": deleted})
}

// SendReminders godoc
// POST /api/v1/admin/events/:id/reminders
// Queues one reminder mail per registered student. Delivery happens in the background.
func (h *EventHandler) SendReminders(c *gin.Context) {
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req model.ReminderRequest
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	res, err := h.notificationService.SendReminders(c.Request.Context(), eventID, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusAccepted, res)
}
