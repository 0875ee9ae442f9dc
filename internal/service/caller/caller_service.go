// internal/service/caller/caller_service.go
package caller

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"arrears-service/internal/domain/auth"
	"arrears-service/internal/domain/caller"
	"arrears-service/internal/domain/customer"
	"arrears-service/internal/domain/request"
	"arrears-service/internal/pkg/scope"
)

const defaultMaxLoad = 50

// CallerStats combines request progress with the caller's live backlog.
type CallerStats struct {
	request.CallerRequestStats
	CustomersCompleted int `json:"customers_completed"`
	CustomersRemaining int `json:"customers_remaining"`
}

type CallerService struct {
	callerRepo   caller.Repository
	customerRepo customer.Repository
	requestRepo  request.Repository
	logger       *zap.Logger
}

func NewCallerService(callerRepo caller.Repository, customerRepo customer.Repository, requestRepo request.Repository, logger *zap.Logger) *CallerService {
	return &CallerService{
		callerRepo:   callerRepo,
		customerRepo: customerRepo,
		requestRepo:  requestRepo,
		logger:       logger,
	}
}

func (s *CallerService) CreateCaller(ctx context.Context, req *caller.CreateCallerRequest) (*caller.Caller, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	maxLoad := req.MaxLoad
	if maxLoad == 0 {
		maxLoad = defaultMaxLoad
	}

	c := &caller.Caller{
		StaffCode:     req.StaffCode,
		FullName:      req.FullName,
		Email:         sql.NullString{String: req.Email, Valid: req.Email != ""},
		ContactNumber: req.ContactNumber,
		Region:        sql.NullString{String: req.Region, Valid: req.Region != ""},
		RTOM:          sql.NullString{String: req.RTOM, Valid: req.RTOM != ""},
		PasswordHash:  string(hash),
		TaskStatus:    caller.TaskStatusIdle,
		MaxLoad:       maxLoad,
		IsActive:      true,
	}

	created, err := s.callerRepo.Create(ctx, c)
	if err != nil {
		return nil, err
	}

	s.logger.Info("caller created",
		zap.Int64("caller_id", created.ID),
		zap.String("staff_code", created.StaffCode),
	)

	return created, nil
}

func (s *CallerService) ListCallers(ctx context.Context, p auth.Principal, filters *caller.CallerListFilters) ([]caller.Caller, int64, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 50
	}
	return s.callerRepo.List(ctx, scope.ForPrincipal(p), filters)
}

func (s *CallerService) GetCaller(ctx context.Context, id int64) (*caller.Caller, error) {
	return s.callerRepo.FindByID(ctx, id)
}

// GetStats aggregates batch progress plus the caller's current backlog.
func (s *CallerService) GetStats(ctx context.Context, callerID int64) (*CallerStats, error) {
	if _, err := s.callerRepo.FindByID(ctx, callerID); err != nil {
		return nil, err
	}

	reqStats, err := s.requestRepo.CallerStats(ctx, callerID)
	if err != nil {
		return nil, err
	}

	completed, err := s.customerRepo.CountAssignedInStatuses(ctx, callerID, []string{customer.StatusCompleted})
	if err != nil {
		return nil, err
	}
	remaining, err := s.customerRepo.CountAssignedInStatuses(ctx, callerID,
		[]string{customer.StatusPending, customer.StatusOverdue})
	if err != nil {
		return nil, err
	}

	return &CallerStats{
		CallerRequestStats: *reqStats,
		CustomersCompleted: completed,
		CustomersRemaining: remaining,
	}, nil
}
