// internal/repository/postgres/admin_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"arrears-service/internal/domain/admin"
	xerrors "arrears-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const adminColumns = `
	id, full_name, email, role, region, rtom, password_hash,
	is_active, created_by, last_login, created_at, updated_at`

type AdminRepository struct {
	db *pgxpool.Pool
}

func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) Create(ctx context.Context, a *admin.Admin) (*admin.Admin, error) {
	query := `
		INSERT INTO admins (
			full_name, email, role, region, rtom, password_hash, is_active, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		a.FullName, a.Email, a.Role, a.Region, a.RTOM,
		a.PasswordHash, a.IsActive, a.CreatedBy,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, xerrors.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	return a, nil
}

func (r *AdminRepository) Update(ctx context.Context, a *admin.Admin) error {
	query := `
		UPDATE admins
		SET full_name = $1, role = $2, region = $3, rtom = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := r.db.Exec(ctx, query, a.FullName, a.Role, a.Region, a.RTOM, time.Now(), a.ID)
	if err != nil {
		return fmt.Errorf("failed to update admin: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*admin.Admin, error) {
	query := fmt.Sprintf(`SELECT %s FROM admins WHERE email = $1`, adminColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, email))
}

func (r *AdminRepository) FindByID(ctx context.Context, id int64) (*admin.Admin, error) {
	query := fmt.Sprintf(`SELECT %s FROM admins WHERE id = $1`, adminColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *AdminRepository) List(ctx context.Context) ([]admin.Admin, error) {
	query := fmt.Sprintf(`SELECT %s FROM admins ORDER BY created_at DESC`, adminColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer rows.Close()

	admins := []admin.Admin{}
	for rows.Next() {
		var a admin.Admin
		if err := scanAdmin(rows, &a); err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}

	return admins, nil
}

func (r *AdminRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	query := `UPDATE admins SET last_login = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (r *AdminRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE admins SET password_hash = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(ctx, query, passwordHash, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *AdminRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE admins SET is_active = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(ctx, query, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update admin: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *AdminRepository) scanOne(row pgx.Row) (*admin.Admin, error) {
	var a admin.Admin
	err := scanAdmin(row, &a)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func scanAdmin(row rowScanner, a *admin.Admin) error {
	err := row.Scan(
		&a.ID, &a.FullName, &a.Email, &a.Role, &a.Region, &a.RTOM,
		&a.PasswordHash, &a.IsActive, &a.CreatedBy, &a.LastLogin,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to scan admin: %w", err)
	}
	return nil
}
