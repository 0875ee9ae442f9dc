// internal/repository/postgres/customer_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"arrears-service/internal/domain/customer"
	xerrors "arrears-service/internal/pkg/errors"
	"arrears-service/internal/pkg/scope"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const customerColumns = `
	id, account_number, name, contact_number,
	region, rtom, product_label, medium,
	latest_bill_amount, new_arrears, amount_overdue, days_overdue,
	credit_score, credit_class_name,
	assigned_to, task_id, status, response, previous_response,
	contact_history, created_at, updated_at, deleted_at`

type CustomerRepository struct {
	db *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Create inserts a new customer. A unique violation on account_number is
// reported as ErrDuplicateEntry so bulk import can count it, not abort.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (
			account_number, name, contact_number,
			region, rtom, product_label, medium,
			latest_bill_amount, new_arrears, amount_overdue, days_overdue,
			credit_score, credit_class_name, status, contact_history
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at
	`

	historyJSON, err := marshalHistory(c.ContactHistory)
	if err != nil {
		return err
	}

	err = r.db.QueryRow(
		ctx, query,
		c.AccountNumber, c.Name, c.ContactNumber,
		c.Region, c.RTOM, c.ProductLabel, c.Medium,
		c.LatestBillAmount, c.NewArrears, c.AmountOverdue, c.DaysOverdue,
		c.CreditScore, c.CreditClassName, c.Status, historyJSON,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return xerrors.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// FindByID retrieves a customer by ID
func (r *CustomerRepository) FindByID(ctx context.Context, id int64) (*customer.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE id = $1 AND deleted_at IS NULL`, customerColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// FindByAccountNumber retrieves a customer by its unique account number.
func (r *CustomerRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*customer.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE account_number = $1 AND deleted_at IS NULL`, customerColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, strings.TrimSpace(accountNumber)))
}

// Update persists every mutable customer field, including the contact
// history JSONB.
func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, contact_number = $2, region = $3, rtom = $4,
		    product_label = $5, medium = $6,
		    latest_bill_amount = $7, new_arrears = $8, amount_overdue = $9,
		    days_overdue = $10, credit_score = $11, credit_class_name = $12,
		    assigned_to = $13, task_id = $14, status = $15,
		    response = $16, previous_response = $17, contact_history = $18,
		    updated_at = $19
		WHERE id = $20 AND deleted_at IS NULL
	`

	historyJSON, err := marshalHistory(c.ContactHistory)
	if err != nil {
		return err
	}

	result, err := r.db.Exec(
		ctx, query,
		c.Name, c.ContactNumber, c.Region, c.RTOM,
		c.ProductLabel, c.Medium,
		c.LatestBillAmount, c.NewArrears, c.AmountOverdue,
		c.DaysOverdue, c.CreditScore, c.CreditClassName,
		c.AssignedTo, c.TaskID, c.Status,
		c.Response, c.PreviousResponse, historyJSON,
		time.Now(), c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// SoftDelete soft deletes a customer (explicit admin delete only).
func (r *CustomerRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE customers SET deleted_at = $1, updated_at = $1 WHERE id = $2 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// List retrieves customers under the caller's scope with filters. A non-nil
// callerID restricts to that caller's assignments.
func (r *CustomerRepository) List(ctx context.Context, sc scope.Scope, filters *customer.CustomerListFilters, callerID *int64) ([]customer.Customer, int64, error) {
	conditions := []string{"deleted_at IS NULL"}
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

	if callerID != nil {
		conditions = append(conditions, fmt.Sprintf("assigned_to = $%d", argPos))
		args = append(args, *callerID)
		argPos++
	}

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, filters.Status)
		argPos++
	}

	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE $%d OR account_number ILIKE $%d OR contact_number ILIKE $%d)",
			argPos, argPos, argPos,
		))
		args = append(args, "%"+filters.Search+"%")
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM customers WHERE %s", whereClause)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 50
	}
	offset := (filters.Page - 1) * filters.PageSize

	query := fmt.Sprintf(`
		SELECT %s FROM customers
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, customerColumns, whereClause, argPos, argPos+1)
	args = append(args, filters.PageSize, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []customer.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, *c)
	}

	return customers, total, nil
}

// GetStats aggregates customer counts and arrears under the given scope.
func (r *CustomerRepository) GetStats(ctx context.Context, sc scope.Scope) (*customer.CustomerStats, error) {
	conditions := []string{"deleted_at IS NULL"}
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

	query := fmt.Sprintf(`
		SELECT
			COUNT(*) AS total,
			COUNT(CASE WHEN status = 'UNASSIGNED' THEN 1 END) AS unassigned,
			COUNT(CASE WHEN status = 'OVERDUE' THEN 1 END) AS overdue,
			COUNT(CASE WHEN status = 'PENDING' THEN 1 END) AS pending,
			COUNT(CASE WHEN status = 'COMPLETED' THEN 1 END) AS completed,
			COUNT(CASE WHEN jsonb_array_length(contact_history) > 0 THEN 1 END) AS contacted,
			COALESCE(SUM(new_arrears), 0) AS total_arrears
		FROM customers
		WHERE %s
	`, strings.Join(conditions, " AND "))

	var stats customer.CustomerStats
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&stats.TotalCustomers,
		&stats.Unassigned,
		&stats.Overdue,
		&stats.Pending,
		&stats.Completed,
		&stats.ContactedCustomers,
		&stats.TotalArrears,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return &stats, nil
}

// Assign points the given customers at a caller and moves them to OVERDUE.
func (r *CustomerRepository) Assign(ctx context.Context, ids []int64, callerID int64, taskID string) error {
	query := `
		UPDATE customers
		SET assigned_to = $1, task_id = $2, status = $3, updated_at = $4
		WHERE id = ANY($5) AND deleted_at IS NULL
	`

	_, err := r.db.Exec(ctx, query, callerID, taskID, customer.StatusOverdue, time.Now(), pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to assign customers: %w", err)
	}
	return nil
}

// Unassign clears assignment and returns the customers to UNASSIGNED.
func (r *CustomerRepository) Unassign(ctx context.Context, ids []int64) error {
	query := `
		UPDATE customers
		SET assigned_to = NULL, task_id = NULL, status = $1, updated_at = $2
		WHERE id = ANY($3) AND deleted_at IS NULL
	`

	_, err := r.db.Exec(ctx, query, customer.StatusUnassigned, time.Now(), pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to unassign customers: %w", err)
	}
	return nil
}

// CountContacted counts customers in ids with at least one contact on
// record, regardless of which request the contact happened under.
func (r *CustomerRepository) CountContacted(ctx context.Context, ids []int64) (int, error) {
	query := `
		SELECT COUNT(*) FROM customers
		WHERE id = ANY($1) AND deleted_at IS NULL
		  AND jsonb_array_length(contact_history) > 0
	`

	var count int
	if err := r.db.QueryRow(ctx, query, pq.Array(ids)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count contacted customers: %w", err)
	}
	return count, nil
}

// CountInStatus counts customers in ids whose live status matches.
func (r *CustomerRepository) CountInStatus(ctx context.Context, ids []int64, status string) (int, error) {
	query := `SELECT COUNT(*) FROM customers WHERE id = ANY($1) AND deleted_at IS NULL AND status = $2`

	var count int
	if err := r.db.QueryRow(ctx, query, pq.Array(ids), status).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count customers by status: %w", err)
	}
	return count, nil
}

// CountAssignedInStatuses counts the caller's assigned customers that are
// still in one of the given statuses.
func (r *CustomerRepository) CountAssignedInStatuses(ctx context.Context, callerID int64, statuses []string) (int, error) {
	query := `
		SELECT COUNT(*) FROM customers
		WHERE assigned_to = $1 AND deleted_at IS NULL AND status = ANY($2)
	`

	var count int
	if err := r.db.QueryRow(ctx, query, callerID, pq.Array(statuses)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count assigned customers: %w", err)
	}
	return count, nil
}

// --- scanning helpers ---

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *CustomerRepository) scanOne(row pgx.Row) (*customer.Customer, error) {
	c, err := scanCustomer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func scanCustomer(row rowScanner) (*customer.Customer, error) {
	var c customer.Customer
	var historyJSON []byte

	err := row.Scan(
		&c.ID, &c.AccountNumber, &c.Name, &c.ContactNumber,
		&c.Region, &c.RTOM, &c.ProductLabel, &c.Medium,
		&c.LatestBillAmount, &c.NewArrears, &c.AmountOverdue, &c.DaysOverdue,
		&c.CreditScore, &c.CreditClassName,
		&c.AssignedTo, &c.TaskID, &c.Status, &c.Response, &c.PreviousResponse,
		&historyJSON, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}

	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &c.ContactHistory); err != nil {
			return nil, fmt.Errorf("failed to unmarshal contact history: %w", err)
		}
	}

	return &c, nil
}

func marshalHistory(history []customer.ContactRecord) ([]byte, error) {
	if history == nil {
		history = []customer.ContactRecord{}
	}
	data, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal contact history: %w", err)
	}
	return data, nil
}
