// internal/domain/caller/repository.go
package caller

import (
	"context"

	"arrears-service/internal/pkg/scope"
)

type Repository interface {
	Create(ctx context.Context, c *Caller) (*Caller, error)
	FindByID(ctx context.Context, id int64) (*Caller, error)
	FindByStaffCode(ctx context.Context, staffCode string) (*Caller, error)
	List(ctx context.Context, sc scope.Scope, filters *CallerListFilters) ([]Caller, int64, error)
	UpdateTaskStatus(ctx context.Context, id int64, taskStatus string) error
	AdjustLoad(ctx context.Context, id int64, delta int) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetActive(ctx context.Context, id int64, active bool) error
}
