package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ptpcell/placement-backend/internal/middleware"
	"github.com/ptpcell/placement-backend/internal/response"
	"github.com/ptpcell/placement-backend/internal/service"
	"github.com/ptpcell/placement-backend/internal/validator"
)

// AdminHandler handles staff account and role endpoints.
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

type createStaffRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Role     string `json:"role" binding:"required,oneof=admin coordinator"`
}

// ListStaff godoc
// GET /api/v1/admin/staff
func (h *AdminHandler) ListStaff(c *gin.Context) {
	admins, err := h.adminService.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, admins)
}

// CreateStaff godoc
// POST /api/v1/admin/staff
func (h *AdminHandler) CreateStaff(c *gin.Context) {
	var req createStaffRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin, err := h.adminService.Provision(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, admin)
}

// DeleteStaff godoc
// DELETE /api/v1/admin/staff/:id
func (h *AdminHandler) DeleteStaff(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	id, ok := intParam(c, "id")
	if !ok {
		return
	}

	if err := h.adminService.Remove(c.Request.Context(), claims.UserID, id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}

// ListRoles godoc
// GET /api/v1/admin/roles
func (h *AdminHandler) ListRoles(c *gin.Context) {
	roles, err := h.adminService.Roles(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, roles)
}
