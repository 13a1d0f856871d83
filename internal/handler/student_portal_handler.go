package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ptpcell/placement-backend/internal/middleware"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/ptpcell/placement-backend/internal/response"
	"github.com/ptpcell/placement-backend/internal/service"
	"github.com/ptpcell/placement-backend/internal/validator"
)

// StudentPortalHandler handles student-facing endpoints (live quiz polling and answering).
type StudentPortalHandler struct {
	answerService     *service.AnswerService
	attendanceService *service.AttendanceService
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(
	answerService *service.AnswerService,
	attendanceService *service.AttendanceService,
) *StudentPortalHandler {
	return &StudentPortalHandler{
		answerService:     answerService,
		attendanceService: attendanceService,
	}
}

// PollMyEvent godoc
// GET /api/v1/student/quiz/poll
// Polls the live question of the event the student registered for.
// Safe to call every second; the response is never cached.
func (h *StudentPortalHandler) PollMyEvent(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	event, poll, err := h.answerService.PollMyEvent(c.Request.Context(), claims.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"event_id":   event.ID,
		"event_name": event.Name,
		"poll":       poll,
	})
}

// PollEvent godoc
// GET /api/v1/student/events/:id/poll
// Returns one of: active question with remaining seconds, none with a reason, or already_answered.
func (h *StudentPortalHandler) PollEvent(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	poll, err := h.answerService.Poll(c.Request.Context(), eventID, claims.Email)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, poll)
}

// SubmitAnswer godoc
// POST /api/v1/student/events/:id/answers
// Body: {"question_id": "...", "selected_index": 2, "time_taken": 14}
// selected_index -1 records a timeout. A second answer to the same question is rejected with 409.
func (h *StudentPortalHandler) SubmitAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.answerService.Submit(c.Request.Context(), claims.UserID, eventID, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// MyResponse godoc
// GET /api/v1/student/events/:id/response
// Returns the student's own answers and totals for the event.
func (h *StudentPortalHandler) MyResponse(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	res, err := h.answerService.MyResponse(c.Request.Context(), eventID, claims.Email)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// MyAttendance godoc
// GET /api/v1/student/attendance
func (h *StudentPortalHandler) MyAttendance(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	days, err := h.attendanceService.History(c.Request.Context(), claims.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, days)
}
