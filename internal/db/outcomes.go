package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/calendar-agent/internal/types"
)

// SaveOutcome stores the pipeline outcome for a request. The scalar columns
// support filtering; the results column holds the complete outcome document.
// Re-running a request replaces its previous outcome.
func (db *DB) SaveOutcome(ctx context.Context, outcome *types.PipelineOutcome) error {
	requestID, err := uuid.Parse(outcome.RequestID)
	if err != nil {
		return fmt.Errorf("outcome has no valid request id: %w", err)
	}

	doc, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO outcomes (request_id, terminal_state, stage_reached, error_kind, results)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (request_id) DO UPDATE
		 SET terminal_state = $2, stage_reached = $3, error_kind = $4, results = $5, created_at = NOW()`,
		requestID, string(outcome.State), string(outcome.StageReached), string(outcome.ErrorKind), doc,
	)
	if err != nil {
		return fmt.Errorf("failed to save outcome: %w", err)
	}
	return nil
}

// GetOutcome retrieves the stored outcome for a request. Returns nil when
// the request has not been processed yet.
func (db *DB) GetOutcome(ctx context.Context, requestID uuid.UUID) (*types.PipelineOutcome, error) {
	var doc []byte
	err := db.pool.QueryRow(ctx,
		`SELECT results FROM outcomes WHERE request_id = $1`,
		requestID,
	).Scan(&doc)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get outcome: %w", err)
	}

	var outcome types.PipelineOutcome
	if err := json.Unmarshal(doc, &outcome); err != nil {
		return nil, fmt.Errorf("failed to decode stored outcome: %w", err)
	}
	return &outcome, nil
}
