// internal/service/auth/auth.go
package auth

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"arrears-service/internal/domain/admin"
	"arrears-service/internal/domain/auth"
	"arrears-service/internal/domain/caller"
	xerrors "arrears-service/internal/pkg/errors"
	"arrears-service/internal/pkg/jwt"
	"arrears-service/internal/pkg/session"
)

// AuthService authenticates the two principal kinds: admins by email,
// callers by staff code. Dispatch is on the principal kind, never on a
// free-form role string.
type AuthService struct {
	adminRepo   admin.Repository
	callerRepo  caller.Repository
	jwtManager  *jwt.Manager
	sessions    *session.Manager
	rateLimiter *session.RateLimiter
	logger      *zap.Logger
}

func NewAuthService(
	adminRepo admin.Repository,
	callerRepo caller.Repository,
	jwtManager *jwt.Manager,
	sessions *session.Manager,
	rateLimiter *session.RateLimiter,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		adminRepo:   adminRepo,
		callerRepo:  callerRepo,
		jwtManager:  jwtManager,
		sessions:    sessions,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// Login verifies credentials and issues a token plus a Redis session.
func (s *AuthService) Login(ctx context.Context, req *auth.LoginRequest, ip, userAgent string) (*auth.LoginResponse, error) {
	identifier := req.Email
	if identifier == "" {
		identifier = req.StaffCode
	}
	if identifier == "" {
		return nil, fmt.Errorf("%w: email or staff code is required", xerrors.ErrInvalidInput)
	}

	allowed, _, err := s.rateLimiter.CheckLoginAttempt(ctx, ip, identifier)
	if err != nil {
		s.logger.Warn("rate limiter unavailable", zap.Error(err))
	} else if !allowed {
		return nil, xerrors.ErrRateLimited
	}

	var (
		principal auth.Principal
		hash      string
		profile   interface{}
	)

	if req.Email != "" {
		a, err := s.adminRepo.FindByEmail(ctx, req.Email)
		if err != nil || !a.IsActive {
			return nil, xerrors.ErrUnauthorized
		}
		principal = auth.Principal{
			Kind:   auth.KindAdmin,
			ID:     a.ID,
			Role:   a.Role,
			Region: a.Region.String,
			RTOM:   a.RTOM.String,
		}
		hash = a.PasswordHash
		profile = a.Info()
	} else {
		c, err := s.callerRepo.FindByStaffCode(ctx, req.StaffCode)
		if err != nil || !c.IsActive {
			return nil, xerrors.ErrUnauthorized
		}
		principal = auth.Principal{
			Kind:   auth.KindCaller,
			ID:     c.ID,
			Role:   auth.RoleCaller,
			Region: c.Region.String,
			RTOM:   c.RTOM.String,
		}
		hash = c.PasswordHash
		profile = c
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, xerrors.ErrUnauthorized
	}

	token, jti, err := s.jwtManager.Generate(principal)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(s.jwtManager.TTL)
	if err := s.sessions.CreateSession(ctx, &session.SessionData{
		JTI:            jti,
		Kind:           principal.Kind,
		PrincipalID:    principal.ID,
		IPAddress:      ip,
		UserAgent:      userAgent,
		LoginAt:        now,
		LastActivityAt: now,
		ExpiresAt:      expiresAt,
	}); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if principal.Kind == auth.KindAdmin {
		if err := s.adminRepo.UpdateLastLogin(ctx, principal.ID); err != nil {
			s.logger.Warn("failed to record last login", zap.Error(err))
		}
	}
	s.rateLimiter.ResetLoginAttempts(ctx, ip, identifier)

	s.logger.Info("login",
		zap.String("kind", string(principal.Kind)),
		zap.Int64("principal_id", principal.ID),
		zap.String("role", principal.Role),
	)

	return &auth.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Principal: principal,
		Profile:   profile,
	}, nil
}

// ValidateToken verifies the JWT and checks that its session still exists.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (auth.Principal, string, error) {
	claims, principal, err := s.jwtManager.Verify(token)
	if err != nil {
		return auth.Principal{}, "", xerrors.ErrUnauthorized
	}

	if _, err := s.sessions.GetSession(ctx, principal.Kind, principal.ID, claims.ID); err != nil {
		return auth.Principal{}, "", xerrors.ErrSessionExpired
	}

	return principal, claims.ID, nil
}

// Logout revokes the current session.
func (s *AuthService) Logout(ctx context.Context, p auth.Principal, jti string) error {
	return s.sessions.RevokeSession(ctx, p.Kind, p.ID, jti)
}

// Me loads the profile behind the principal.
func (s *AuthService) Me(ctx context.Context, p auth.Principal) (interface{}, error) {
	switch p.Kind {
	case auth.KindAdmin:
		a, err := s.adminRepo.FindByID(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		return a.Info(), nil
	case auth.KindCaller:
		return s.callerRepo.FindByID(ctx, p.ID)
	default:
		return nil, xerrors.ErrUnauthorized
	}
}

// ChangePassword verifies the current password and rotates it, revoking all
// other sessions of the principal.
func (s *AuthService) ChangePassword(ctx context.Context, p auth.Principal, req *auth.ChangePasswordRequest) error {
	var currentHash string
	switch p.Kind {
	case auth.KindAdmin:
		a, err := s.adminRepo.FindByID(ctx, p.ID)
		if err != nil {
			return err
		}
		currentHash = a.PasswordHash
	case auth.KindCaller:
		c, err := s.callerRepo.FindByID(ctx, p.ID)
		if err != nil {
			return err
		}
		currentHash = c.PasswordHash
	default:
		return xerrors.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(currentHash), []byte(req.CurrentPassword)); err != nil {
		return xerrors.ErrUnauthorized
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	switch p.Kind {
	case auth.KindAdmin:
		err = s.adminRepo.UpdatePassword(ctx, p.ID, string(newHash))
	case auth.KindCaller:
		err = s.callerRepo.UpdatePassword(ctx, p.ID, string(newHash))
	}
	if err != nil {
		return err
	}

	if err := s.sessions.RevokeAllSessions(ctx, p.Kind, p.ID); err != nil {
		s.logger.Warn("failed to revoke sessions after password change", zap.Error(err))
	}

	s.logger.Info("password changed",
		zap.String("kind", string(p.Kind)),
		zap.Int64("principal_id", p.ID),
	)
	return nil
}
