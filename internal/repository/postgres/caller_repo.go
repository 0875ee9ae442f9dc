// internal/repository/postgres/caller_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"arrears-service/internal/domain/caller"
	xerrors "arrears-service/internal/pkg/errors"
	"arrears-service/internal/pkg/scope"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const callerColumns = `
	id, staff_code, full_name, email, contact_number, region, rtom,
	password_hash, task_status, current_load, max_load, is_active,
	created_at, updated_at`

type CallerRepository struct {
	db *pgxpool.Pool
}

func NewCallerRepository(db *pgxpool.Pool) *CallerRepository {
	return &CallerRepository{db: db}
}

func (r *CallerRepository) Create(ctx context.Context, c *caller.Caller) (*caller.Caller, error) {
	query := `
		INSERT INTO callers (
			staff_code, full_name, email, contact_number, region, rtom,
			password_hash, task_status, current_load, max_load, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		c.StaffCode, c.FullName, c.Email, c.ContactNumber, c.Region, c.RTOM,
		c.PasswordHash, c.TaskStatus, c.CurrentLoad, c.MaxLoad, c.IsActive,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, xerrors.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("failed to create caller: %w", err)
	}

	return c, nil
}

func (r *CallerRepository) FindByID(ctx context.Context, id int64) (*caller.Caller, error) {
	query := fmt.Sprintf(`SELECT %s FROM callers WHERE id = $1`, callerColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *CallerRepository) FindByStaffCode(ctx context.Context, staffCode string) (*caller.Caller, error) {
	query := fmt.Sprintf(`SELECT %s FROM callers WHERE staff_code = $1`, callerColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, staffCode))
}

func (r *CallerRepository) List(ctx context.Context, sc scope.Scope, filters *caller.CallerListFilters) ([]caller.Caller, int64, error) {
	conditions := []string{"is_active = TRUE"}
	args := []interface{}{}
	argPos := 1

	if sc.ByRTOM() {
		conditions = append(conditions, fmt.Sprintf("rtom = $%d", argPos))
		args = append(args, sc.RTOM)
		argPos++
	} else if sc.ByRegion() {
		conditions = append(conditions, fmt.Sprintf("region = $%d", argPos))
		args = append(args, sc.Region)
		argPos++
	}

	if filters.TaskStatus != "" {
		conditions = append(conditions, fmt.Sprintf("task_status = $%d", argPos))
		args = append(args, filters.TaskStatus)
		argPos++
	}

	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(full_name ILIKE $%d OR staff_code ILIKE $%d)", argPos, argPos,
		))
		args = append(args, "%"+filters.Search+"%")
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM callers WHERE %s", whereClause)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count callers: %w", err)
	}

	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 50
	}
	offset := (filters.Page - 1) * filters.PageSize

	query := fmt.Sprintf(`
		SELECT %s FROM callers
		WHERE %s
		ORDER BY full_name ASC
		LIMIT $%d OFFSET $%d
	`, callerColumns, whereClause, argPos, argPos+1)
	args = append(args, filters.PageSize, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list callers: %w", err)
	}
	defer rows.Close()

	callers := []caller.Caller{}
	for rows.Next() {
		var c caller.Caller
		if err := scanCaller(rows, &c); err != nil {
			return nil, 0, err
		}
		callers = append(callers, c)
	}

	return callers, total, nil
}

func (r *CallerRepository) UpdateTaskStatus(ctx context.Context, id int64, taskStatus string) error {
	query := `UPDATE callers SET task_status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(ctx, query, taskStatus, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// AdjustLoad shifts current_load by delta, clamped at zero.
func (r *CallerRepository) AdjustLoad(ctx context.Context, id int64, delta int) error {
	query := `
		UPDATE callers
		SET current_load = GREATEST(current_load + $1, 0), updated_at = $2
		WHERE id = $3
	`

	result, err := r.db.Exec(ctx, query, delta, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to adjust load: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *CallerRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE callers SET password_hash = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(ctx, query, passwordHash, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *CallerRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE callers SET is_active = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(ctx, query, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update caller: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *CallerRepository) scanOne(row pgx.Row) (*caller.Caller, error) {
	var c caller.Caller
	err := scanCaller(row, &c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCaller(row rowScanner, c *caller.Caller) error {
	err := row.Scan(
		&c.ID, &c.StaffCode, &c.FullName, &c.Email, &c.ContactNumber,
		&c.Region, &c.RTOM, &c.PasswordHash, &c.TaskStatus,
		&c.CurrentLoad, &c.MaxLoad, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to scan caller: %w", err)
	}
	return nil
}
