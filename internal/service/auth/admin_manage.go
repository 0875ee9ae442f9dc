// internal/service/auth/admin_manage.go
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"arrears-service/internal/domain/admin"
	"arrears-service/internal/domain/auth"
	xerrors "arrears-service/internal/pkg/errors"
)

// EnsureSuperAdminExists bootstraps the first superadmin account on startup.
// Idempotent: an existing account with the email is left untouched.
func (s *AuthService) EnsureSuperAdminExists(ctx context.Context, email, password, fullName string) error {
	if _, err := s.adminRepo.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, xerrors.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := s.adminRepo.Create(ctx, &admin.Admin{
		FullName:     fullName,
		Email:        email,
		Role:         admin.RoleSuperAdmin,
		PasswordHash: string(hash),
		IsActive:     true,
	}); err != nil {
		return fmt.Errorf("failed to create super admin: %w", err)
	}

	s.logger.Info("super admin created", zap.String("email", email))
	return nil
}

// CreateAdmin provisions a new admin account. Superadmin only; enforced at
// the route.
func (s *AuthService) CreateAdmin(ctx context.Context, createdBy int64, req *admin.CreateAdminRequest) (*admin.Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	a := &admin.Admin{
		FullName:     req.FullName,
		Email:        req.Email,
		Role:         req.Role,
		Region:       sql.NullString{String: req.Region, Valid: req.Region != ""},
		RTOM:         sql.NullString{String: req.RTOM, Valid: req.RTOM != ""},
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedBy:    sql.NullInt64{Int64: createdBy, Valid: true},
	}

	created, err := s.adminRepo.Create(ctx, a)
	if err != nil {
		return nil, err
	}

	s.logger.Info("admin created",
		zap.Int64("admin_id", created.ID),
		zap.String("role", created.Role),
		zap.Int64("created_by", createdBy),
	)

	return created, nil
}

func (s *AuthService) ListAdmins(ctx context.Context) ([]admin.AdminInfo, error) {
	admins, err := s.adminRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]admin.AdminInfo, 0, len(admins))
	for i := range admins {
		infos = append(infos, admins[i].Info())
	}
	return infos, nil
}

func (s *AuthService) UpdateAdmin(ctx context.Context, id int64, req *admin.UpdateAdminRequest) (*admin.Admin, error) {
	a, err := s.adminRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		a.FullName = *req.FullName
	}
	if req.Role != nil {
		a.Role = *req.Role
	}
	if req.Region != nil {
		a.Region = sql.NullString{String: *req.Region, Valid: *req.Region != ""}
	}
	if req.RTOM != nil {
		a.RTOM = sql.NullString{String: *req.RTOM, Valid: *req.RTOM != ""}
	}

	if err := s.adminRepo.Update(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("admin updated", zap.Int64("admin_id", id))
	return s.adminRepo.FindByID(ctx, id)
}

// DeactivateAdmin disables the account and revokes its sessions; accounts
// are never hard-deleted.
func (s *AuthService) DeactivateAdmin(ctx context.Context, id int64) error {
	if err := s.adminRepo.SetActive(ctx, id, false); err != nil {
		return err
	}
	if err := s.sessions.RevokeAllSessions(ctx, auth.KindAdmin, id); err != nil {
		s.logger.Warn("failed to revoke sessions for deactivated admin", zap.Error(err))
	}

	s.logger.Info("admin deactivated", zap.Int64("admin_id", id))
	return nil
}
