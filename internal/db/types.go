package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/calendar-agent/internal/types"
)

// StoredRequest is a persisted calendar request with its queue lifecycle
// fields. StartedAt and CompletedAt are nil until the worker touches it.
// ReferenceAt and Timezone anchor relative time expressions when the caller
// supplied them at submission.
type StoredRequest struct {
	ID          uuid.UUID           `json:"id"`
	RawText     string              `json:"raw_text"`
	Status      types.RequestStatus `json:"status"`
	ReferenceAt *time.Time          `json:"reference_at,omitempty"`
	Timezone    string              `json:"timezone,omitempty"`
	ReceivedAt  time.Time           `json:"received_at"`
	StartedAt   *time.Time          `json:"started_at,omitempty"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	Attempts    int                 `json:"attempts"`
}

// Record converts the stored row into the immutable form the pipeline takes.
func (r *StoredRequest) Record() types.RequestRecord {
	return types.RequestRecord{
		ID:         r.ID,
		RawText:    r.RawText,
		ReceivedAt: r.ReceivedAt,
	}
}

// RequestFilters holds optional filters for listing requests
type RequestFilters struct {
	Status string
	Limit  int
}
