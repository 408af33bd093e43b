// Package calendar provides the calendar backend capability: create, look up,
// update and delete events against a concrete provider. The pipeline depends
// only on the Backend interface; the Google implementation and the in-memory
// implementation are interchangeable.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/calendar-agent/internal/types"
)

// Event is a provider-neutral event record returned by backend reads.
type Event struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Location    string           `json:"location,omitempty"`
	Start       types.TimeSpec   `json:"start"`
	End         types.TimeSpec   `json:"end"`
	Attendees   []types.Attendee `json:"attendees,omitempty"`
	Status      string           `json:"status,omitempty"`
	HTMLLink    string           `json:"html_link,omitempty"`
}

// ListQuery selects events overlapping [TimeMin, TimeMax), optionally
// narrowed by free-text terms. Timezone controls how all-day events are
// anchored when comparing against the window.
type ListQuery struct {
	TimeMin    time.Time
	TimeMax    time.Time
	Timezone   string
	Query      string
	MaxResults int64
}

// Backend is the calendar capability consumed by the execution stage.
type Backend interface {
	// Create inserts a new event and returns the stored record.
	Create(ctx context.Context, details *types.CreateEventDetails) (*Event, error)
	// Get retrieves a single event by id.
	Get(ctx context.Context, eventID string) (*Event, error)
	// List returns events overlapping the query window, soonest first.
	List(ctx context.Context, q ListQuery) ([]*Event, error)
	// Update applies a partial patch to an existing event.
	Update(ctx context.Context, eventID string, changes *types.EventChanges) (*Event, error)
	// Delete removes an event by id.
	Delete(ctx context.Context, eventID string) error
}

// BackendError represents a failed backend call. NotFound distinguishes a
// missing event from transport and auth failures; the two map to different
// execution outcomes.
type BackendError struct {
	Op       string
	EventID  string
	NotFound bool
	Message  string
	Cause    error
}

func (e *BackendError) Error() string {
	target := e.Op
	if e.EventID != "" {
		target = fmt.Sprintf("%s %s", e.Op, e.EventID)
	}
	if e.Cause != nil {
		return fmt.Sprintf("calendar %s: %s: %v", target, e.Message, e.Cause)
	}
	return fmt.Sprintf("calendar %s: %s", target, e.Message)
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether err represents a missing event rather than a
// backend malfunction.
func IsNotFound(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.NotFound
}

func notFoundError(op, eventID string) *BackendError {
	return &BackendError{Op: op, EventID: eventID, NotFound: true, Message: "event not found"}
}
