// internal/repository/postgres/request_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"arrears-service/internal/domain/request"
	xerrors "arrears-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const requestColumns = `
	id, task_id, caller_id, customers, customers_sent, customers_contacted,
	status, is_completed, remark, created_at, updated_at`

type RequestRepository struct {
	db *pgxpool.Pool
}

func NewRequestRepository(db *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) Create(ctx context.Context, req *request.Request) (*request.Request, error) {
	query := `
		INSERT INTO requests (
			task_id, caller_id, customers, customers_sent, customers_contacted,
			status, is_completed, remark
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	snapshotJSON, err := marshalSnapshots(req.Customers)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRow(
		ctx, query,
		req.TaskID, req.CallerID, snapshotJSON, req.CustomersSent,
		req.CustomersContacted, req.Status, req.IsCompleted, req.Remark,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return req, nil
}

func (r *RequestRepository) FindByTaskID(ctx context.Context, taskID string) (*request.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE task_id = $1`, requestColumns)

	req, err := scanRequest(r.db.QueryRow(ctx, query, taskID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

// FindAcceptedByCaller returns every ACCEPTED request for the caller. The
// contact-workflow cascade iterates all of them; a customer may be embedded
// in more than one.
func (r *RequestRepository) FindAcceptedByCaller(ctx context.Context, callerID int64) ([]request.Request, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM requests
		WHERE caller_id = $1 AND status = $2
		ORDER BY created_at ASC
	`, requestColumns)

	rows, err := r.db.Query(ctx, query, callerID, request.StatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to query accepted requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

func (r *RequestRepository) List(ctx context.Context, filters *request.RequestListFilters) ([]request.Request, int64, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argPos := 1

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, filters.Status)
		argPos++
	}

	if filters.CallerID != 0 {
		conditions = append(conditions, fmt.Sprintf("caller_id = $%d", argPos))
		args = append(args, filters.CallerID)
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM requests WHERE %s", whereClause)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count requests: %w", err)
	}

	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 50
	}
	offset := (filters.Page - 1) * filters.PageSize

	query := fmt.Sprintf(`
		SELECT %s FROM requests
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, requestColumns, whereClause, argPos, argPos+1)
	args = append(args, filters.PageSize, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	requests, err := collectRequests(rows)
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// UpdateProgress rewrites the recomputed progress counters and, when the
// batch is done, the terminal status. Requests are never deleted.
func (r *RequestRepository) UpdateProgress(ctx context.Context, id int64, contacted int, status string, isCompleted bool) error {
	query := `
		UPDATE requests
		SET customers_contacted = $1, status = $2, is_completed = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.db.Exec(ctx, query, contacted, status, isCompleted, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update request progress: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *RequestRepository) UpdateStatus(ctx context.Context, taskID string, status string) error {
	query := `UPDATE requests SET status = $1, updated_at = $2 WHERE task_id = $3`

	result, err := r.db.Exec(ctx, query, status, time.Now(), taskID)
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// CallerStats aggregates batch progress across all the caller's requests.
func (r *RequestRepository) CallerStats(ctx context.Context, callerID int64) (*request.CallerRequestStats, error) {
	query := `
		SELECT
			COALESCE(SUM(customers_sent), 0),
			COALESCE(SUM(customers_contacted), 0),
			COUNT(*),
			COUNT(CASE WHEN is_completed THEN 1 END)
		FROM requests
		WHERE caller_id = $1
	`

	var stats request.CallerRequestStats
	err := r.db.QueryRow(ctx, query, callerID).Scan(
		&stats.CustomersSent,
		&stats.CustomersContacted,
		&stats.RequestsTotal,
		&stats.RequestsCompleted,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get caller stats: %w", err)
	}

	return &stats, nil
}

// --- scanning helpers ---

func collectRequests(rows pgx.Rows) ([]request.Request, error) {
	requests := []request.Request{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	return requests, nil
}

func scanRequest(row rowScanner) (*request.Request, error) {
	var req request.Request
	var snapshotJSON []byte

	err := row.Scan(
		&req.ID, &req.TaskID, &req.CallerID, &snapshotJSON,
		&req.CustomersSent, &req.CustomersContacted,
		&req.Status, &req.IsCompleted, &req.Remark,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan request: %w", err)
	}

	if len(snapshotJSON) > 0 {
		if err := json.Unmarshal(snapshotJSON, &req.Customers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal customer snapshots: %w", err)
		}
	}

	return &req, nil
}

func marshalSnapshots(snapshots []request.CustomerSnapshot) ([]byte, error) {
	if snapshots == nil {
		snapshots = []request.CustomerSnapshot{}
	}
	data, err := json.Marshal(snapshots)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal customer snapshots: %w", err)
	}
	return data, nil
}
