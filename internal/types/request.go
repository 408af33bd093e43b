// Package types provides the shared type definitions exchanged between the
// pipeline stages of the calendar agent.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestType identifies the calendar operation a request asks for.
type RequestType string

const (
	// RequestTypeCreate schedules a new event.
	RequestTypeCreate RequestType = "create"
	// RequestTypeUpdate modifies an existing event.
	RequestTypeUpdate RequestType = "update"
	// RequestTypeDelete removes an existing event.
	RequestTypeDelete RequestType = "delete"
	// RequestTypeLookup retrieves existing events without changing them.
	RequestTypeLookup RequestType = "lookup"
	// RequestTypeUnknown is the zero intent; it never passes the classifier gate.
	RequestTypeUnknown RequestType = "unknown"
)

// ParseRequestType normalizes a string into a RequestType, mapping anything
// unrecognized to RequestTypeUnknown.
func ParseRequestType(s string) RequestType {
	switch RequestType(strings.ToLower(strings.TrimSpace(s))) {
	case RequestTypeCreate:
		return RequestTypeCreate
	case RequestTypeUpdate:
		return RequestTypeUpdate
	case RequestTypeDelete:
		return RequestTypeDelete
	case RequestTypeLookup:
		return RequestTypeLookup
	default:
		return RequestTypeUnknown
	}
}

// Actionable reports whether the type names a concrete calendar operation.
func (t RequestType) Actionable() bool {
	switch t {
	case RequestTypeCreate, RequestTypeUpdate, RequestTypeDelete, RequestTypeLookup:
		return true
	default:
		return false
	}
}

// RequestRecord is a natural-language calendar request as accepted by the
// ingress layer. It is immutable once it enters the pipeline.
type RequestRecord struct {
	ID         uuid.UUID `json:"id"`
	RawText    string    `json:"raw_text"`
	ReceivedAt time.Time `json:"received_at"`
}

// RequestStatus tracks a persisted request through its queue lifecycle.
type RequestStatus string

// Queue lifecycle states for persisted requests.
const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusProcessing RequestStatus = "processing"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusRejected   RequestStatus = "rejected"
	RequestStatusFailed     RequestStatus = "failed"
)
