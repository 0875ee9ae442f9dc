// internal/service/customer/customer.go
package customer

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"arrears-service/internal/domain/auth"
	"arrears-service/internal/domain/caller"
	"arrears-service/internal/domain/customer"
	"arrears-service/internal/pkg/scope"
)

type CustomerService struct {
	customerRepo customer.Repository
	callerRepo   caller.Repository
	logger       *zap.Logger
}

func NewCustomerService(customerRepo customer.Repository, callerRepo caller.Repository, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		callerRepo:   callerRepo,
		logger:       logger,
	}
}

// ListCustomers returns customers visible to the principal. An unresolvable
// callerId filter yields an empty result, never an error: listing fails
// closed rather than leaking unfiltered rows.
func (s *CustomerService) ListCustomers(ctx context.Context, p auth.Principal, filters *customer.CustomerListFilters) (*customer.CustomerListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 50
	}
	if filters.PageSize > 200 {
		filters.PageSize = 200
	}

	var callerID *int64
	switch {
	case p.Kind == auth.KindCaller:
		// Callers only ever see their own assignments.
		id := p.ID
		callerID = &id
	case filters.CallerID != "":
		id, ok := s.resolveCallerID(ctx, filters.CallerID)
		if !ok {
			return &customer.CustomerListResponse{
				Customers: []customer.Customer{},
				Count:     0,
				Total:     0,
				Page:      filters.Page,
				PageSize:  filters.PageSize,
			}, nil
		}
		callerID = &id
	}

	customers, total, err := s.customerRepo.List(ctx, scope.ForPrincipal(p), filters, callerID)
	if err != nil {
		return nil, err
	}

	return &customer.CustomerListResponse{
		Customers: customers,
		Count:     len(customers),
		Total:     total,
		Page:      filters.Page,
		PageSize:  filters.PageSize,
	}, nil
}

// resolveCallerID accepts either the internal id or the caller-facing staff
// code.
func (s *CustomerService) resolveCallerID(ctx context.Context, ref string) (int64, bool) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if _, err := s.callerRepo.FindByID(ctx, id); err == nil {
			return id, true
		}
	}
	if c, err := s.callerRepo.FindByStaffCode(ctx, ref); err == nil {
		return c.ID, true
	}
	return 0, false
}

// GetCustomer returns one customer with its assigned caller resolved.
func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (*customer.CustomerView, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	v := &customer.CustomerView{Customer: *c}
	if c.AssignedTo.Valid {
		cl, err := s.callerRepo.FindByID(ctx, c.AssignedTo.Int64)
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

// DeleteCustomer soft deletes; the row stays for the audit trail.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id int64) error {
	if err := s.customerRepo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("customer deleted", zap.Int64("customer_id", id))
	return nil
}

// GetStats aggregates customer counts under the principal's scope.
func (s *CustomerService) GetStats(ctx context.Context, p auth.Principal) (*customer.CustomerStats, error) {
	return s.customerRepo.GetStats(ctx, scope.ForPrincipal(p))
}
