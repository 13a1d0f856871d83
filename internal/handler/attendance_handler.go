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

// AttendanceHandler handles QR check-in at the venue.
type AttendanceHandler struct {
	attendanceService *service.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(attendanceService *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

// Mark godoc
// POST /api/v1/admin/attendance
// Body: {"qr_token": "..."}. Scanning twice on the same day returns the first record.
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req model.MarkAttendanceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	var markedBy *int
	if claims := middleware.GetClaims(c); claims != nil {
		id := claims.UserID
		markedBy = &id
	}

	res, err := h.attendanceService.Mark(c.Request.Context(), req.QRToken, markedBy)
	if err != nil {
		fail(c, err)
		return
	}

	status := http.StatusCreated
	if res.AlreadyMarked {
		status = http.StatusOK
	}
	response.Success(c, status, res)
}

// ByDay godoc
// GET /api/v1/admin/attendance?day=YYYY-MM-DD
// Defaults to today in the attendance timezone.
func (h *AttendanceHandler) ByDay(c *gin.Context) {
	records, err := h.attendanceService.ByDay(c.Request.Context(), c.Query("day"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, records)
}

// StudentHistory godoc
// GET /api/v1/admin/students/:id/attendance
func (h *AttendanceHandler) StudentHistory(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	records, err := h.attendanceService.History(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, records)
}
