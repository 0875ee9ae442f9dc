// internal/handlers/caller/caller_handler.go
package caller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"arrears-service/internal/domain/caller"
	"arrears-service/internal/middleware"
	xerrors "arrears-service/internal/pkg/errors"
	"arrears-service/internal/pkg/response"
	"arrears-service/internal/service/assignment"
	service "arrears-service/internal/service/caller"
)

type CallerHandler struct {
	callerService     *service.CallerService
	assignmentService *assignment.Service
}

func NewCallerHandler(callerService *service.CallerService, assignmentService *assignment.Service) *CallerHandler {
	return &CallerHandler{
		callerService:     callerService,
		assignmentService: assignmentService,
	}
}

// CreateCaller registers a new calling agent.
func (h *CallerHandler) CreateCaller(c *gin.Context) {
	var req caller.CreateCallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	created, err := h.callerService.CreateCaller(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, xerrors.ErrDuplicateEntry) {
			response.Error(c, http.StatusConflict, "staff code already registered", nil)
			return
		}
		response.Error(c, http.StatusBadRequest, "failed to create caller", err)
		return
	}

	response.Success(c, http.StatusCreated, "caller created", created)
}

// ListCallers lists agents visible to the principal's scope.
func (h *CallerHandler) ListCallers(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	var filters caller.CallerListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	callers, total, err := h.callerService.ListCallers(c.Request.Context(), p, &filters)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list callers", err)
		return
	}

	response.Success(c, http.StatusOK, "callers retrieved", gin.H{
		"callers": callers,
		"count":   len(callers),
		"total":   total,
	})
}

// GetCaller retrieves one agent.
func (h *CallerHandler) GetCaller(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid caller ID", err)
		return
	}

	result, err := h.callerService.GetCaller(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "caller not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to get caller", err)
		return
	}

	response.Success(c, http.StatusOK, "caller retrieved", result)
}

// GetStats returns workload and completion figures for one agent.
func (h *CallerHandler) GetStats(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid caller ID", err)
		return
	}

	stats, err := h.callerService.GetStats(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "caller not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to get caller stats", err)
		return
	}

	response.Success(c, http.StatusOK, "caller stats retrieved", stats)
}

// AssignCustomers batches customers into a new task for the agent.
func (h *CallerHandler) AssignCustomers(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid caller ID", err)
		return
	}

	var req caller.AssignCustomersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	task, err := h.assignmentService.AssignCustomers(c.Request.Context(), id, req.CustomerIDs)
	switch {
	case err == nil:
		response.Success(c, http.StatusCreated, "customers assigned", task)
	case errors.Is(err, xerrors.ErrNotFound):
		response.NotFound(c, "caller or customer not found")
	case errors.Is(err, xerrors.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, "assignment rejected", err)
	default:
		response.Error(c, http.StatusInternalServerError, "failed to assign customers", err)
	}
}
