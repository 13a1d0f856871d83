package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/ptpcell/placement-backend/internal/repository"
	"github.com/ptpcell/placement-backend/internal/validator"
	"github.com/rs/zerolog/log"
)

// AdminService handles admin accounts and role permissions.
type AdminService struct {
	adminRepo *repository.AdminRepository
	roleRepo  *repository.RoleRepository
	auth      *AuthService
}

// NewAdminService creates a new AdminService.
func NewAdminService(adminRepo *repository.AdminRepository, roleRepo *repository.RoleRepository, auth *AuthService) *AdminService {
	return &AdminService{adminRepo: adminRepo, roleRepo: roleRepo, auth: auth}
}

// GetByEmail retrieves an admin by email.
func (s *AdminService) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	a, err := s.adminRepo.GetByEmail(ctx, email)
	return a, fromRepo(err)
}

// GetByID retrieves an admin by ID.
func (s *AdminService) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	a, err := s.adminRepo.GetByID(ctx, id)
	return a, fromRepo(err)
}

// GetPermissions retrieves permission codes for an admin's role.
func (s *AdminService) GetPermissions(ctx context.Context, roleID int) ([]string, error) {
	return s.roleRepo.GetPermissionsByRoleID(ctx, roleID)
}

// Authenticate checks email and password and returns the admin with permissions.
func (s *AdminService) Authenticate(ctx context.Context, email, password string) (*model.Admin, []string, error) {
	admin, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if err := s.auth.CheckPassword(admin.PasswordHash, password); err != nil {
		return nil, nil, err
	}
	perms, err := s.roleRepo.GetPermissionsByRoleID(ctx, admin.RoleID)
	if err != nil {
		return nil, nil, err
	}
	return admin, perms, nil
}

// Provision creates an admin account with the named role.
func (s *AdminService) Provision(ctx context.Context, name, email, password, roleName string) (*model.Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validator.IsEmail(email) {
		return nil, invalid("email", "must be a valid email address")
	}
	if len(password) < 6 {
		return nil, invalid("password", "must be at least 6 characters")
	}
	role, err := s.roleRepo.GetByName(ctx, roleName)
	if err != nil {
		return nil, fmt.Errorf("role %q: %w", roleName, fromRepo(err))
	}
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin := &model.Admin{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		RoleID:       role.ID,
		RoleName:     role.Name,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, fromRepo(err)
	}
	log.Info().Int("admin_id", admin.ID).Str("role", role.Name).Msg("Admin provisioned")
	return admin, nil
}

// SyncRolePermissions grants the default permission sets: everything to admin and
// the coordinator subset to coordinator. Existing grants are kept.
func (s *AdminService) SyncRolePermissions(ctx context.Context) (int64, error) {
	all := make([]string, 0, len(model.AllPermissions))
	for _, p := range model.AllPermissions {
		all = append(all, string(p))
	}
	coordinator := make([]string, 0, len(model.CoordinatorPermissions))
	for _, p := range model.CoordinatorPermissions {
		coordinator = append(coordinator, string(p))
	}

	added, err := s.roleRepo.SyncPermissions(ctx, model.RoleAdmin, all)
	if err != nil {
		return 0, err
	}
	n, err := s.roleRepo.SyncPermissions(ctx, model.RoleCoordinator, coordinator)
	if err != nil {
		return added, err
	}
	return added + n, nil
}

// List returns every staff account.
func (s *AdminService) List(ctx context.Context) ([]model.Admin, error) {
	return s.adminRepo.List(ctx)
}

// Roles returns every role with its granted permissions.
func (s *AdminService) Roles(ctx context.Context) ([]model.Role, error) {
	return s.roleRepo.List(ctx)
}

// Remove deletes a staff account. Admins cannot remove themselves.
func (s *AdminService) Remove(ctx context.Context, actorID, id int) error {
	if actorID == id {
		return invalid("id", "cannot remove your own account")
	}
	if err := s.adminRepo.Delete(ctx, id); err != nil {
		return fromRepo(err)
	}
	log.Info().Int("admin_id", id).Int("removed_by", actorID).Msg("Admin removed")
	return nil
}
