// internal/handlers/task/task_handler.go
package task

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"arrears-service/internal/domain/request"
	"arrears-service/internal/middleware"
	xerrors "arrears-service/internal/pkg/errors"
	"arrears-service/internal/pkg/response"
	"arrears-service/internal/service/assignment"
)

type TaskHandler struct {
	assignmentService *assignment.Service
}

func NewTaskHandler(assignmentService *assignment.Service) *TaskHandler {
	return &TaskHandler{
		assignmentService: assignmentService,
	}
}

// ListTasks lists request batches; callers only see their own.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	var filters request.RequestListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	result, err := h.assignmentService.ListTasks(c.Request.Context(), p, &filters)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list tasks", err)
		return
	}

	response.Success(c, http.StatusOK, "tasks retrieved", result)
}

// GetTask retrieves one batch by task id.
func (h *TaskHandler) GetTask(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	result, err := h.assignmentService.GetTask(c.Request.Context(), p, c.Param("taskId"))
	if err != nil {
		h.taskError(c, err, "failed to get task")
		return
	}

	response.Success(c, http.StatusOK, "task retrieved", result)
}

// AcceptTask moves a pending batch to accepted.
func (h *TaskHandler) AcceptTask(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	result, err := h.assignmentService.AcceptTask(c.Request.Context(), p, c.Param("taskId"))
	if err != nil {
		h.taskError(c, err, "failed to accept task")
		return
	}

	response.Success(c, http.StatusOK, "task accepted", result)
}

// DeclineTask closes a batch and returns its customers to the pool.
func (h *TaskHandler) DeclineTask(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	result, err := h.assignmentService.DeclineTask(c.Request.Context(), p, c.Param("taskId"))
	if err != nil {
		h.taskError(c, err, "failed to decline task")
		return
	}

	response.Success(c, http.StatusOK, "task declined", result)
}

func (h *TaskHandler) taskError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, xerrors.ErrNotFound):
		response.NotFound(c, "task not found")
	case errors.Is(err, xerrors.ErrForbidden):
		response.Forbidden(c, "task belongs to another caller")
	case errors.Is(err, xerrors.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, fallback, err)
	default:
		response.Error(c, http.StatusInternalServerError, fallback, err)
	}
}
