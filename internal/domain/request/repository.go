// internal/domain/request/repository.go
package request

import "context"

type Repository interface {
	Create(ctx context.Context, r *Request) (*Request, error)
	FindByTaskID(ctx context.Context, taskID string) (*Request, error)
	// FindAcceptedByCaller returns every ACCEPTED request for the caller;
	// a customer may appear in more than one of them.
	FindAcceptedByCaller(ctx context.Context, callerID int64) ([]Request, error)
	List(ctx context.Context, filters *RequestListFilters) ([]Request, int64, error)
	UpdateProgress(ctx context.Context, id int64, contacted int, status string, isCompleted bool) error
	UpdateStatus(ctx context.Context, taskID string, status string) error
	CallerStats(ctx context.Context, callerID int64) (*CallerRequestStats, error)
}

// CallerRequestStats aggregates request progress for one caller.
type CallerRequestStats struct {
	CustomersSent      int64 `json:"customers_sent"`
	CustomersContacted int64 `json:"customers_contacted"`
	RequestsTotal      int64 `json:"requests_total"`
	RequestsCompleted  int64 `json:"requests_completed"`
}
