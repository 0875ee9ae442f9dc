// internal/handlers/auth/auth_handler.go
package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"arrears-service/internal/domain/auth"
	"arrears-service/internal/middleware"
	xerrors "arrears-service/internal/pkg/errors"
	"arrears-service/internal/pkg/response"
	authUsecase "arrears-service/internal/service/auth"
)

type AuthHandler struct {
	authService *authUsecase.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login authenticates an admin by email or a caller by staff code.
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	loginResp, err := h.authService.Login(c.Request.Context(), &req,
		c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		if errors.Is(err, xerrors.ErrRateLimited) {
			response.Error(c, http.StatusTooManyRequests, "too many login attempts", nil)
			return
		}
		h.logger.Warn("login failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		response.Error(c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	response.Success(c, http.StatusOK, "login successful", loginResp)
}

// Logout revokes the current session (requires auth).
func (h *AuthHandler) Logout(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)
	jti := middleware.MustGetJTI(c)

	if err := h.authService.Logout(c.Request.Context(), p, jti); err != nil {
		h.logger.Error("logout failed",
			zap.Int64("principal_id", p.ID),
			zap.Error(err),
		)
		response.Error(c, http.StatusInternalServerError, "logout failed", err)
		return
	}

	response.Success(c, http.StatusOK, "logout successful", nil)
}

// Me returns the profile behind the current token.
func (h *AuthHandler) Me(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	profile, err := h.authService.Me(c.Request.Context(), p)
	if err != nil {
		response.Error(c, http.StatusNotFound, "profile not found", err)
		return
	}

	response.Success(c, http.StatusOK, "profile retrieved", gin.H{
		"principal": p,
		"profile":   profile,
	})
}

// ChangePassword rotates the current principal's password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	var req auth.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), p, &req); err != nil {
		if errors.Is(err, xerrors.ErrUnauthorized) {
			response.Error(c, http.StatusUnauthorized, "current password is incorrect", nil)
			return
		}
		response.Error(c, http.StatusBadRequest, "password change failed", err)
		return
	}

	response.Success(c, http.StatusOK, "password changed successfully", nil)
}
