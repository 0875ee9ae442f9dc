// internal/domain/admin/repository.go
package admin

import "context"

type Repository interface {
	Create(ctx context.Context, a *Admin) (*Admin, error)
	Update(ctx context.Context, a *Admin) error
	FindByEmail(ctx context.Context, email string) (*Admin, error)
	FindByID(ctx context.Context, id int64) (*Admin, error)
	List(ctx context.Context) ([]Admin, error)
	UpdateLastLogin(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetActive(ctx context.Context, id int64, active bool) error
}
