// Package calendar - memory.go implements Backend with an in-process store.
// Used by tests and by the CLI dry-run path where no Google credentials are
// configured.
package calendar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/calendar-agent/internal/types"
)

// MemoryBackend stores events in a mutex-guarded map with sequential ids.
type MemoryBackend struct {
	mu     sync.Mutex
	events map[string]*Event
	nextID int
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{events: make(map[string]*Event)}
}

// Create inserts a new event and returns the stored record.
func (b *MemoryBackend) Create(ctx context.Context, details *types.CreateEventDetails) (*Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, &BackendError{Op: "create", Message: "context cancelled", Cause: err}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := fmt.Sprintf("evt-%d", b.nextID)

	ev := &Event{
		ID:          id,
		Title:       details.Title,
		Description: details.Description,
		Location:    details.Location,
		Start:       details.Start,
		End:         details.End,
		Attendees:   append([]types.Attendee(nil), details.Attendees...),
		Status:      "confirmed",
		HTMLLink:    "memory://events/" + id,
	}
	b.events[id] = ev
	return copyEvent(ev), nil
}

// Get retrieves a single event by id.
func (b *MemoryBackend) Get(ctx context.Context, eventID string) (*Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, &BackendError{Op: "get", EventID: eventID, Message: "context cancelled", Cause: err}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ev, ok := b.events[eventID]
	if !ok {
		return nil, notFoundError("get", eventID)
	}
	return copyEvent(ev), nil
}

// List returns events overlapping [TimeMin, TimeMax), soonest first. When a
// free-text query is set, every whitespace-separated term must appear in the
// event's title, description or location.
func (b *MemoryBackend) List(ctx context.Context, q ListQuery) ([]*Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, &BackendError{Op: "list", Message: "context cancelled", Cause: err}
	}

	loc := time.UTC
	if q.Timezone != "" {
		if l, err := time.LoadLocation(q.Timezone); err == nil {
			loc = l
		}
	}
	terms := strings.Fields(strings.ToLower(q.Query))

	b.mu.Lock()
	defer b.mu.Unlock()

	var matches []*Event
	for _, ev := range b.events {
		start, end, ok := eventInterval(ev, loc)
		if !ok {
			continue
		}
		if !end.After(q.TimeMin) || !start.Before(q.TimeMax) {
			continue
		}
		if !matchesTerms(ev, terms) {
			continue
		}
		matches = append(matches, copyEvent(ev))
	}

	sort.Slice(matches, func(i, j int) bool {
		si, _, _ := eventInterval(matches[i], loc)
		sj, _, _ := eventInterval(matches[j], loc)
		if si.Equal(sj) {
			return matches[i].ID < matches[j].ID
		}
		return si.Before(sj)
	})

	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if int64(len(matches)) > maxResults {
		matches = matches[:maxResults]
	}
	return matches, nil
}

// Update applies a partial patch to an existing event.
func (b *MemoryBackend) Update(ctx context.Context, eventID string, changes *types.EventChanges) (*Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, &BackendError{Op: "update", EventID: eventID, Message: "context cancelled", Cause: err}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ev, ok := b.events[eventID]
	if !ok {
		return nil, notFoundError("update", eventID)
	}

	if changes != nil {
		if changes.Title != nil {
			ev.Title = *changes.Title
		}
		if changes.Description != nil {
			ev.Description = *changes.Description
		}
		if changes.Location != nil {
			ev.Location = *changes.Location
		}
		if changes.Start != nil {
			ev.Start = *changes.Start
		}
		if changes.End != nil {
			ev.End = *changes.End
		}
		if changes.Attendees != nil {
			ev.Attendees = append([]types.Attendee(nil), changes.Attendees...)
		}
	}
	return copyEvent(ev), nil
}

// Delete removes an event by id.
func (b *MemoryBackend) Delete(ctx context.Context, eventID string) error {
	if err := ctx.Err(); err != nil {
		return &BackendError{Op: "delete", EventID: eventID, Message: "context cancelled", Cause: err}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.events[eventID]; !ok {
		return notFoundError("delete", eventID)
	}
	delete(b.events, eventID)
	return nil
}

// Len reports the number of stored events.
func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

func eventInterval(ev *Event, loc *time.Location) (time.Time, time.Time, bool) {
	start, err := ev.Start.Time(loc)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := ev.End.Time(loc)
	if err != nil || ev.End.IsZero() {
		end = start.Add(time.Hour)
	}
	return start, end, true
}

func matchesTerms(ev *Event, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	haystack := strings.ToLower(ev.Title + " " + ev.Description + " " + ev.Location)
	for _, term := range terms {
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}

func copyEvent(ev *Event) *Event {
	out := *ev
	out.Attendees = append([]types.Attendee(nil), ev.Attendees...)
	return &out
}
