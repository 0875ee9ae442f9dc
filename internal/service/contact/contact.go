// internal/service/contact/contact.go
package contact

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"arrears-service/internal/domain/caller"
	"arrears-service/internal/domain/customer"
	"arrears-service/internal/domain/request"
	xerrors "arrears-service/internal/pkg/errors"
)

// Notifier pushes task lifecycle events to connected callers. Implemented by
// the websocket hub; a nil notifier disables pushes.
type Notifier interface {
	TaskCompleted(callerID int64, taskID string)
}

// Service records call outcomes and cascades completion bookkeeping to the
// customer's in-flight requests and the assigned caller.
//
// There is no transaction spanning the customer write and the cascade: the
// customer mutation stays committed even when a later cascade step fails.
// Every cascade counter is recomputed from live rows, so a retry converges
// instead of double counting.
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

// RecordContact appends a contact-history entry for the customer, moves its
// status, and updates any ACCEPTED requests the customer belongs to.
func (s *Service) RecordContact(ctx context.Context, customerID int64, req *customer.RecordContactRequest) (*customer.CustomerView, error) {
	if !customer.ValidOutcome(req.CallOutcome) {
		return nil, fmt.Errorf("%w: unknown call outcome %q", xerrors.ErrInvalidInput, req.CallOutcome)
	}

	c, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	entry := customer.ContactRecord{
		ContactDate:  time.Now().Format(customer.ContactDateLayout),
		Outcome:      req.CallOutcome,
		Remark:       req.CustomerResponse,
		RetriedCount: len(c.ContactHistory),
		PromisedDate: req.PromisedDate,
		PaymentMade:  req.PaymentMade,
	}
	if c.AssignedTo.Valid {
		callerID := c.AssignedTo.Int64
		entry.ContactedBy = &callerID
	}
	c.ContactHistory = append(c.ContactHistory, entry)

	// Contacted-but-unpaid always resolves to PENDING, promised date or not;
	// a customer never returns to OVERDUE once contacted.
	if req.PaymentMade {
		c.Status = customer.StatusCompleted
	} else {
		c.Status = customer.StatusPending
	}

	// Both fields carry the newest response. Existing consumers read
	// previous_response as the current value, so it must not lag.
	c.Response = sql.NullString{String: req.CustomerResponse, Valid: true}
	c.PreviousResponse = sql.NullString{String: req.CustomerResponse, Valid: true}

	if err := s.customers.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to record contact: %w", err)
	}

	if c.AssignedTo.Valid {
		if err := s.cascade(ctx, c.AssignedTo.Int64, customerID); err != nil {
			// The contact itself is already committed and is not rolled back.
			s.logger.Error("request cascade failed after contact write",
				zap.Int64("customer_id", customerID),
				zap.Int64("caller_id", c.AssignedTo.Int64),
				zap.Error(err),
			)
			return nil, fmt.Errorf("contact recorded but request update failed: %w", err)
		}
	}

	s.logger.Info("contact recorded",
		zap.Int64("customer_id", customerID),
		zap.String("outcome", req.CallOutcome),
		zap.Bool("payment_made", req.PaymentMade),
		zap.String("status", c.Status),
	)

	return s.view(ctx, customerID)
}

// cascade recomputes progress on every ACCEPTED request of the caller that
// embeds this customer. A customer can sit in several requests at once; all
// of them are updated.
func (s *Service) cascade(ctx context.Context, callerID, customerID int64) error {
	reqs, err := s.requests.FindAcceptedByCaller(ctx, callerID)
	if err != nil {
		return err
	}

	for i := range reqs {
		r := &reqs[i]
		if !r.ContainsCustomer(customerID) {
			continue
		}

		ids := r.CustomerIDs()

		// Full recount against live customer rows. "Contacted" means the
		// customer has any contact on record, not one under this request.
		contacted, err := s.customers.CountContacted(ctx, ids)
		if err != nil {
			return err
		}
		completed, err := s.customers.CountInStatus(ctx, ids, customer.StatusCompleted)
		if err != nil {
			return err
		}

		status := r.Status
		isCompleted := r.IsCompleted
		if completed >= r.CustomersSent {
			status = request.StatusCompleted
			isCompleted = true
		}

		if err := s.requests.UpdateProgress(ctx, r.ID, contacted, status, isCompleted); err != nil {
			return err
		}

		if isCompleted && !r.IsCompleted {
			// Customers stay assigned to the caller; completed batches remain
			// visible. The caller only goes IDLE once nothing workable is left.
			remaining, err := s.customers.CountAssignedInStatuses(ctx, callerID,
				[]string{customer.StatusPending, customer.StatusOverdue})
			if err != nil {
				return err
			}
			if remaining == 0 {
				if err := s.callers.UpdateTaskStatus(ctx, callerID, caller.TaskStatusIdle); err != nil {
					return err
				}
			}

			if s.notifier != nil {
				s.notifier.TaskCompleted(callerID, r.TaskID)
			}

			s.logger.Info("request completed",
				zap.String("task_id", r.TaskID),
				zap.Int64("caller_id", callerID),
				zap.Int("customers_sent", r.CustomersSent),
			)
		}
	}

	return nil
}

// view reloads the customer with its assigned caller resolved.
func (s *Service) view(ctx context.Context, customerID int64) (*customer.CustomerView, error) {
	c, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	v := &customer.CustomerView{Customer: *c}
	if c.AssignedTo.Valid {
		cl, err := s.callers.FindByID(ctx, c.AssignedTo.Int64)
		if err == nil {
			v.AssignedCaller = &customer.AssignedCaller{
				ID:        cl.ID,
				StaffCode: cl.StaffCode,
				FullName:  cl.FullName,
			}
		}
	}
	return v, nil
}
