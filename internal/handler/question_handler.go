package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/ptpcell/placement-backend/internal/response"
	"github.com/ptpcell/placement-backend/internal/service"
	"github.com/ptpcell/placement-backend/internal/validator"
)

// QuestionHandler manages the MCQ questions attached to an event.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// ListQuestions godoc
// GET /api/v1/admin/events/:id/questions
// Admin view, correct answers included.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	questions, err := h.questionService.ListForAdmin(c.Request.Context(), eventID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, questions)
}

// AddQuestion godoc
// POST /api/v1/admin/events/:id/questions
// Body: {"prompt": "...", "options": ["a","b","c","d"], "correct_index": 2}
func (h *QuestionHandler) AddQuestion(c *gin.Context) {
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req model.QuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.questionService.Add(c.Request.Context(), eventID, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, q)
}

// UpdateQuestion godoc
// PUT /api/v1/admin/events/:id/questions/:qid
// Editing the live question refreshes what polling students see.
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	questionID, ok := uuidParam(c, "qid")
	if !ok {
		return
	}
	var req model.QuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.questionService.Update(c.Request.Context(), eventID, questionID, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, q)
}

// DeleteQuestion godoc
// DELETE /api/v1/admin/events/:id/questions/:qid
// Deleting the live question deactivates the event.
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	questionID, ok := uuidParam(c, "qid")
	if !ok {
		return
	}
	if err := h.questionService.Delete(c.Request.Context(), eventID, questionID); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": questionID})
}
