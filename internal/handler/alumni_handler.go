package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ptpcell/placement-backend/internal/response"
	"github.com/ptpcell/placement-backend/internal/service"
)

// AlumniHandler handles the alumni directory.
type AlumniHandler struct {
	alumniService  *service.AlumniService
	maxImportBytes int64
}

// NewAlumniHandler creates a new AlumniHandler.
func NewAlumniHandler(alumniService *service.AlumniService, maxImportBytes int64) *AlumniHandler {
	return &AlumniHandler{alumniService: alumniService, maxImportBytes: maxImportBytes}
}

// ListAlumni godoc
// GET /api/v1/admin/alumni?search=&page=&per_page=
func (h *AlumniHandler) ListAlumni(c *gin.Context) {
	alumni, pagination, err := h.alumniService.List(
		c.Request.Context(),
		c.Query("search"),
		queryInt(c, "page", 1),
		queryInt(c, "per_page", 10),
	)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"alumni": alumni}, pagination)
}

// ImportAlumni godoc
// POST /api/v1/admin/alumni/import (multipart, field "file", .csv or .xlsx)
// Upserts by email. Rows without a name or email are reported and skipped.
func (h *AlumniHandler) ImportAlumni(c *gin.Context) {
	rows, ok := readSheet(c, h.maxImportBytes)
	if !ok {
		return
	}
	res, err := h.alumniService.ImportRows(c.Request.Context(), rows)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}
