// internal/domain/customer/repository.go
package customer

import (
	"context"

	"arrears-service/internal/pkg/scope"
)

type Repository interface {
	Create(ctx context.Context, c *Customer) error
	FindByID(ctx context.Context, id int64) (*Customer, error)
	FindByAccountNumber(ctx context.Context, accountNumber string) (*Customer, error)
	Update(ctx context.Context, c *Customer) error
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, sc scope.Scope, filters *CustomerListFilters, callerID *int64) ([]Customer, int64, error)
	GetStats(ctx context.Context, sc scope.Scope) (*CustomerStats, error)

	// Assignment bookkeeping
	Assign(ctx context.Context, ids []int64, callerID int64, taskID string) error
	Unassign(ctx context.Context, ids []int64) error

	// Batch recounts used by the request-completion cascade. Counts are
	// computed over live customer rows, never incremented.
	CountContacted(ctx context.Context, ids []int64) (int, error)
	CountInStatus(ctx context.Context, ids []int64, status string) (int, error)
	CountAssignedInStatuses(ctx context.Context, callerID int64, statuses []string) (int, error)
}
