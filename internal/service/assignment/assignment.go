// internal/service/assignment/assignment.go
package assignment

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"arrears-service/internal/domain/auth"
	"arrears-service/internal/domain/caller"
	"arrears-service/internal/domain/customer"
	"arrears-service/internal/domain/request"
	xerrors "arrears-service/internal/pkg/errors"
)

// Notifier pushes task lifecycle events to connected callers.
type Notifier interface {
	TaskAssigned(callerID int64, taskID string, customers int)
}

// Service creates task batches and handles caller accept/decline. A request
// snapshots the customers at assignment time; later customer edits do not
// flow back into the batch.
type Service struct {
	customers customer.Repository
	callers   caller.Repository
	requests  request.Repository
	notifier  Notifier
	logger    *zap.Logger
}

func NewService(customers customer.Repository, callers caller.Repository, requests request.Repository, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		customers: customers,
		callers:   callers,
		requests:  requests,
		notifier:  notifier,
		logger:    logger,
	}
}

// AssignCustomers batches the given customers into a new PENDING request for
// the caller and moves them to OVERDUE.
func (s *Service) AssignCustomers(ctx context.Context, callerID int64, customerIDs []int64) (*request.Request, error) {
	cl, err := s.callers.FindByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !cl.IsActive {
		return nil, fmt.Errorf("%w: caller %s is inactive", xerrors.ErrInvalidInput, cl.StaffCode)
	}
	if cl.MaxLoad > 0 && cl.CurrentLoad+len(customerIDs) > cl.MaxLoad {
		return nil, fmt.Errorf("%w: assignment exceeds caller max load (%d/%d)",
			xerrors.ErrInvalidInput, cl.CurrentLoad+len(customerIDs), cl.MaxLoad)
	}

	snapshots := make([]request.CustomerSnapshot, 0, len(customerIDs))
	for _, id := range customerIDs {
		c, err := s.customers.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("customer %d: %w", id, err)
		}
		if c.Status != customer.StatusUnassigned {
			return nil, fmt.Errorf("%w: customer %s is already %s",
				xerrors.ErrInvalidInput, c.AccountNumber, c.Status)
		}
		snapshots = append(snapshots, request.CustomerSnapshot{
			CustomerID:    c.ID,
			Name:          c.Name,
			AccountNumber: c.AccountNumber,
			ContactNumber: c.ContactNumber,
			AmountOverdue: c.AmountOverdue,
		})
	}

	taskID := ulid.Make().String()
	req := &request.Request{
		TaskID:        taskID,
		CallerID:      sql.NullInt64{Int64: callerID, Valid: true},
		Customers:     snapshots,
		CustomersSent: len(snapshots),
		Status:        request.StatusPending,
	}
	if _, err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	if err := s.customers.Assign(ctx, customerIDs, callerID, taskID); err != nil {
		return nil, err
	}
	if err := s.callers.AdjustLoad(ctx, callerID, len(customerIDs)); err != nil {
		return nil, err
	}
	if err := s.callers.UpdateTaskStatus(ctx, callerID, caller.TaskStatusAssigned); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.TaskAssigned(callerID, taskID, len(snapshots))
	}

	s.logger.Info("customers assigned",
		zap.String("task_id", taskID),
		zap.Int64("caller_id", callerID),
		zap.Int("customers", len(snapshots)),
	)

	return req, nil
}

// AcceptTask moves a PENDING request to ACCEPTED. Only the assigned caller
// may accept.
func (s *Service) AcceptTask(ctx context.Context, p auth.Principal, taskID string) (*request.Request, error) {
	req, err := s.ownedTask(ctx, p, taskID)
	if err != nil {
		return nil, err
	}
	if req.Status != request.StatusPending {
		return nil, fmt.Errorf("%w: task %s is %s", xerrors.ErrInvalidInput, taskID, req.Status)
	}

	if err := s.requests.UpdateStatus(ctx, taskID, request.StatusAccepted); err != nil {
		return nil, err
	}
	req.Status = request.StatusAccepted

	s.logger.Info("task accepted", zap.String("task_id", taskID), zap.Int64("caller_id", p.ID))
	return req, nil
}

// DeclineTask is terminal: the batch is closed and its customers return to
// the unassigned pool.
func (s *Service) DeclineTask(ctx context.Context, p auth.Principal, taskID string) (*request.Request, error) {
	req, err := s.ownedTask(ctx, p, taskID)
	if err != nil {
		return nil, err
	}
	if req.Status != request.StatusPending && req.Status != request.StatusAccepted {
		return nil, fmt.Errorf("%w: task %s is %s", xerrors.ErrInvalidInput, taskID, req.Status)
	}

	if err := s.requests.UpdateStatus(ctx, taskID, request.StatusDeclined); err != nil {
		return nil, err
	}
	req.Status = request.StatusDeclined

	ids := req.CustomerIDs()
	if err := s.customers.Unassign(ctx, ids); err != nil {
		return nil, err
	}

	callerID := req.CallerID.Int64
	if err := s.callers.AdjustLoad(ctx, callerID, -len(ids)); err != nil {
		return nil, err
	}

	remaining, err := s.customers.CountAssignedInStatuses(ctx, callerID,
		[]string{customer.StatusPending, customer.StatusOverdue})
	if err != nil {
		return nil, err
	}
	if remaining == 0 {
		if err := s.callers.UpdateTaskStatus(ctx, callerID, caller.TaskStatusIdle); err != nil {
			return nil, err
		}
	}

	s.logger.Info("task declined", zap.String("task_id", taskID), zap.Int64("caller_id", callerID))
	return req, nil
}

// GetTask fetches a request; callers can only see their own.
func (s *Service) GetTask(ctx context.Context, p auth.Principal, taskID string) (*request.Request, error) {
	if p.Kind == auth.KindCaller {
		return s.ownedTask(ctx, p, taskID)
	}
	return s.requests.FindByTaskID(ctx, taskID)
}

// ListTasks lists requests; callers are pinned to their own batches.
func (s *Service) ListTasks(ctx context.Context, p auth.Principal, filters *request.RequestListFilters) (*request.RequestListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 50
	}
	if p.Kind == auth.KindCaller {
		filters.CallerID = p.ID
	}

	requests, total, err := s.requests.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	return &request.RequestListResponse{
		Requests: requests,
		Count:    len(requests),
		Total:    total,
		Page:     filters.Page,
		PageSize: filters.PageSize,
	}, nil
}

func (s *Service) ownedTask(ctx context.Context, p auth.Principal, taskID string) (*request.Request, error) {
	req, err := s.requests.FindByTaskID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if p.Kind == auth.KindCaller && (!req.CallerID.Valid || req.CallerID.Int64 != p.ID) {
		return nil, xerrors.ErrForbidden
	}
	return req, nil
}
