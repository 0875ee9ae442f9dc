// internal/handlers/admin/admin_handler.go
package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"arrears-service/internal/domain/admin"
	"arrears-service/internal/middleware"
	xerrors "arrears-service/internal/pkg/errors"
	"arrears-service/internal/pkg/response"
	authUsecase "arrears-service/internal/service/auth"
)

// AdminHandler covers superadmin account management.
type AdminHandler struct {
	authService *authUsecase.AuthService
	logger      *zap.Logger
}

func NewAdminHandler(authService *authUsecase.AuthService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		authService: authService,
		logger:      logger,
	}
}

// CreateAdmin provisions a new admin account.
func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	var req admin.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	created, err := h.authService.CreateAdmin(c.Request.Context(), p.ID, &req)
	if err != nil {
		if errors.Is(err, xerrors.ErrDuplicateEntry) {
			response.Error(c, http.StatusConflict, "email already registered", nil)
			return
		}
		response.Error(c, http.StatusBadRequest, "failed to create admin", err)
		return
	}

	response.Success(c, http.StatusCreated, "admin created", created.Info())
}

// ListAdmins returns every admin account.
func (h *AdminHandler) ListAdmins(c *gin.Context) {
	admins, err := h.authService.ListAdmins(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list admins", err)
		return
	}

	response.Success(c, http.StatusOK, "admins retrieved", gin.H{
		"admins": admins,
		"count":  len(admins),
	})
}

// UpdateAdmin patches an admin account.
func (h *AdminHandler) UpdateAdmin(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid admin ID", err)
		return
	}

	var req admin.UpdateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	updated, err := h.authService.UpdateAdmin(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "admin not found")
			return
		}
		response.Error(c, http.StatusBadRequest, "failed to update admin", err)
		return
	}

	response.Success(c, http.StatusOK, "admin updated", updated.Info())
}

// DeactivateAdmin disables an account without deleting it.
func (h *AdminHandler) DeactivateAdmin(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid admin ID", err)
		return
	}
	if id == p.ID {
		response.Error(c, http.StatusBadRequest, "cannot deactivate own account", nil)
		return
	}

	if err := h.authService.DeactivateAdmin(c.Request.Context(), id); err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "admin not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to deactivate admin", err)
		return
	}

	h.logger.Info("admin deactivated via api",
		zap.Int64("admin_id", id),
		zap.Int64("by", p.ID),
	)
	response.Success(c, http.StatusOK, "admin deactivated", nil)
}
