package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/calendar-agent/internal/types"
)

const requestColumns = `id, raw_text, status, reference_at, timezone, received_at, started_at, completed_at, attempts`

// CreateRequest stores a new request in the pending state and returns the
// full row. referenceAt and timezone are optional anchors for relative time
// expressions; when absent the request is anchored at processing time.
func (db *DB) CreateRequest(ctx context.Context, rawText string, referenceAt *time.Time, timezone string) (*StoredRequest, error) {
	var req StoredRequest
	err := db.pool.QueryRow(ctx,
		`INSERT INTO requests (raw_text, status, reference_at, timezone)
		 VALUES ($1, 'pending', $2, $3)
		 RETURNING `+requestColumns,
		rawText, referenceAt, timezone,
	).Scan(&req.ID, &req.RawText, &req.Status, &req.ReferenceAt, &req.Timezone, &req.ReceivedAt, &req.StartedAt, &req.CompletedAt, &req.Attempts)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return &req, nil
}

// GetRequest retrieves a request by ID. Returns nil when no row exists.
func (db *DB) GetRequest(ctx context.Context, id uuid.UUID) (*StoredRequest, error) {
	var req StoredRequest
	err := db.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = $1`,
		id,
	).Scan(&req.ID, &req.RawText, &req.Status, &req.ReferenceAt, &req.Timezone, &req.ReceivedAt, &req.StartedAt, &req.CompletedAt, &req.Attempts)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return &req, nil
}

// ListRequests retrieves recent requests with optional filters
func (db *DB) ListRequests(ctx context.Context, filters RequestFilters) ([]StoredRequest, error) {
	if filters.Limit == 0 {
		filters.Limit = 50
	}

	query := `SELECT ` + requestColumns + ` FROM requests WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filters.Status)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY received_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []StoredRequest
	for rows.Next() {
		var req StoredRequest
		if err := rows.Scan(&req.ID, &req.RawText, &req.Status, &req.ReferenceAt, &req.Timezone, &req.ReceivedAt, &req.StartedAt, &req.CompletedAt, &req.Attempts); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// ClaimRequest atomically takes the oldest pending request for processing.
// SKIP LOCKED lets concurrent workers claim without blocking each other.
// Returns nil when the queue is empty.
func (db *DB) ClaimRequest(ctx context.Context) (*StoredRequest, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin claim: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var req StoredRequest
	err = tx.QueryRow(ctx,
		`SELECT `+requestColumns+`
		 FROM requests
		 WHERE status = 'pending'
		 ORDER BY received_at
		 FOR UPDATE SKIP LOCKED
		 LIMIT 1`,
	).Scan(&req.ID, &req.RawText, &req.Status, &req.ReferenceAt, &req.Timezone, &req.ReceivedAt, &req.StartedAt, &req.CompletedAt, &req.Attempts)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to claim request: %w", err)
	}

	err = tx.QueryRow(ctx,
		`UPDATE requests
		 SET status = 'processing', started_at = NOW(), attempts = attempts + 1
		 WHERE id = $1
		 RETURNING status, started_at, attempts`,
		req.ID,
	).Scan(&req.Status, &req.StartedAt, &req.Attempts)
	if err != nil {
		return nil, fmt.Errorf("failed to mark request processing: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}
	return &req, nil
}

// FinishRequest records the terminal status of a processed request.
func (db *DB) FinishRequest(ctx context.Context, id uuid.UUID, status types.RequestStatus) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE requests SET status = $1, completed_at = NOW() WHERE id = $2`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("failed to finish request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("request not found: %s", id)
	}
	return nil
}
