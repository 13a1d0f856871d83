package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/ptpcell/placement-backend/internal/response"
	"github.com/ptpcell/placement-backend/internal/service"
	"github.com/ptpcell/placement-backend/internal/validator"
)

// QuizHandler handles standalone quizzes: admin management and public attempts.
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// ListQuizzes godoc
// GET /api/v1/admin/quizzes
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	quizzes, err := h.quizService.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, quizzes)
}

// GetQuiz godoc
// GET /api/v1/admin/quizzes/:id
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	quiz, err := h.quizService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, quiz)
}

// CreateQuiz godoc
// POST /api/v1/admin/quizzes
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req model.QuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	quiz, err := h.quizService.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, quiz)
}

// UpdateQuiz godoc
// PUT /api/v1/admin/quizzes/:id
// Replaces the quiz including its question snapshot. Past attempts are untouched.
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req model.QuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	quiz, err := h.quizService.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, quiz)
}

// DeleteQuiz godoc
// DELETE /api/v1/admin/quizzes/:id
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.quizService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}

// SetLive godoc
// PATCH /api/v1/admin/quizzes/:id/live
// Body: {"live": true}. An empty body toggles.
func (h *QuizHandler) SetLive(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req model.ToggleLiveRequest
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}
	live, err := h.quizService.SetLive(c.Request.Context(), id, req.Live)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "live": live})
}

// Analytics godoc
// GET /api/v1/admin/quizzes/:id/analytics
func (h *QuizHandler) Analytics(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	stats, err := h.quizService.Analytics(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// ListAvailable godoc
// GET /api/v1/public/quizzes
// Published, live quizzes as listing cards.
func (h *QuizHandler) ListAvailable(c *gin.Context) {
	quizzes, err := h.quizService.ListAvailable(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, quizzes)
}

// GetPublic godoc
// GET /api/v1/public/quizzes/:id
// Questions without correctness flags.
func (h *QuizHandler) GetPublic(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	quiz, err := h.quizService.GetPublic(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, quiz)
}

// SubmitAttempt godoc
// POST /api/v1/public/quizzes/:id/attempts
// Grades the whole answer set at once and stores one immutable attempt.
func (h *QuizHandler) SubmitAttempt(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req model.SubmitAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	res, err := h.quizService.SubmitAttempt(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}
