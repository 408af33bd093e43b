// Package calendar - google.go implements Backend against the Google
// Calendar API.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/jonathan/calendar-agent/internal/types"
)

const defaultMaxResults = 10

// GoogleBackend talks to a single Google calendar. Invitation emails are
// suppressed on every mutating call (sendUpdates=none).
type GoogleBackend struct {
	svc        *gcal.Service
	calendarID string
}

// NewGoogleBackend builds a backend for the given calendar. When
// credentialsFile is empty, Application Default Credentials are used.
func NewGoogleBackend(ctx context.Context, calendarID, credentialsFile string) (*GoogleBackend, error) {
	if calendarID == "" {
		calendarID = "primary"
	}

	opts := []option.ClientOption{option.WithScopes(gcal.CalendarScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &GoogleBackend{svc: svc, calendarID: calendarID}, nil
}

// Create inserts a new event and returns the stored record.
func (b *GoogleBackend) Create(ctx context.Context, details *types.CreateEventDetails) (*Event, error) {
	created, err := b.svc.Events.Insert(b.calendarID, toGoogleEvent(details)).
		SendUpdates("none").
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapAPIError("create", "", err)
	}
	return fromGoogleEvent(created), nil
}

// Get retrieves a single event by id.
func (b *GoogleBackend) Get(ctx context.Context, eventID string) (*Event, error) {
	ev, err := b.svc.Events.Get(b.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError("get", eventID, err)
	}
	return fromGoogleEvent(ev), nil
}

// List returns events overlapping the query window, soonest first.
// Recurring events are expanded into single instances so each match can be
// acted on individually.
func (b *GoogleBackend) List(ctx context.Context, q ListQuery) ([]*Event, error) {
	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	call := b.svc.Events.List(b.calendarID).
		TimeMin(q.TimeMin.Format(time.RFC3339)).
		TimeMax(q.TimeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxResults)
	if q.Timezone != "" {
		call = call.TimeZone(q.Timezone)
	}
	if q.Query != "" {
		call = call.Q(q.Query)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError("list", "", err)
	}

	events := make([]*Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		events = append(events, fromGoogleEvent(item))
	}
	return events, nil
}

// Update applies a partial patch to an existing event.
func (b *GoogleBackend) Update(ctx context.Context, eventID string, changes *types.EventChanges) (*Event, error) {
	patch := toGooglePatch(changes)

	updated, err := b.svc.Events.Patch(b.calendarID, eventID, patch).
		SendUpdates("none").
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapAPIError("update", eventID, err)
	}
	return fromGoogleEvent(updated), nil
}

// Delete removes an event by id.
func (b *GoogleBackend) Delete(ctx context.Context, eventID string) error {
	err := b.svc.Events.Delete(b.calendarID, eventID).
		SendUpdates("none").
		Context(ctx).
		Do()
	if err != nil {
		return wrapAPIError("delete", eventID, err)
	}
	return nil
}

// toGoogleEvent converts validated extraction output to the insert body.
func toGoogleEvent(details *types.CreateEventDetails) *gcal.Event {
	ev := &gcal.Event{
		Summary:     details.Title,
		Description: details.Description,
		Location:    details.Location,
		Start:       toGoogleDateTime(details.Start),
		End:         toGoogleDateTime(details.End),
	}
	for _, att := range details.Attendees {
		ev.Attendees = append(ev.Attendees, &gcal.EventAttendee{
			Email:       att.Email,
			DisplayName: att.DisplayName,
		})
	}
	return ev
}

// toGooglePatch builds a sparse patch body: only fields present in changes
// are sent. Explicit empty strings clear the field, which requires
// ForceSendFields.
func toGooglePatch(changes *types.EventChanges) *gcal.Event {
	patch := &gcal.Event{}
	if changes == nil {
		return patch
	}

	if changes.Title != nil {
		patch.Summary = *changes.Title
		if patch.Summary == "" {
			patch.ForceSendFields = append(patch.ForceSendFields, "Summary")
		}
	}
	if changes.Description != nil {
		patch.Description = *changes.Description
		if patch.Description == "" {
			patch.ForceSendFields = append(patch.ForceSendFields, "Description")
		}
	}
	if changes.Location != nil {
		patch.Location = *changes.Location
		if patch.Location == "" {
			patch.ForceSendFields = append(patch.ForceSendFields, "Location")
		}
	}
	if changes.Start != nil {
		patch.Start = toGoogleDateTime(*changes.Start)
	}
	if changes.End != nil {
		patch.End = toGoogleDateTime(*changes.End)
	}
	if changes.Attendees != nil {
		for _, att := range changes.Attendees {
			patch.Attendees = append(patch.Attendees, &gcal.EventAttendee{
				Email:       att.Email,
				DisplayName: att.DisplayName,
			})
		}
		if len(patch.Attendees) == 0 {
			patch.ForceSendFields = append(patch.ForceSendFields, "Attendees")
		}
	}
	return patch
}

func toGoogleDateTime(spec types.TimeSpec) *gcal.EventDateTime {
	if spec.IsZero() {
		return nil
	}
	if spec.IsAllDay() {
		return &gcal.EventDateTime{Date: spec.Date}
	}
	return &gcal.EventDateTime{DateTime: spec.DateTime, TimeZone: spec.TimeZone}
}

func fromGoogleEvent(ev *gcal.Event) *Event {
	out := &Event{
		ID:          ev.Id,
		Title:       ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       fromGoogleDateTime(ev.Start),
		End:         fromGoogleDateTime(ev.End),
		Status:      ev.Status,
		HTMLLink:    ev.HtmlLink,
	}
	for _, att := range ev.Attendees {
		if att == nil {
			continue
		}
		out.Attendees = append(out.Attendees, types.Attendee{
			Email:       att.Email,
			DisplayName: att.DisplayName,
		})
	}
	return out
}

func fromGoogleDateTime(dt *gcal.EventDateTime) types.TimeSpec {
	if dt == nil {
		return types.TimeSpec{}
	}
	if dt.Date != "" {
		return types.TimeSpec{Date: dt.Date}
	}
	return types.TimeSpec{DateTime: dt.DateTime, TimeZone: dt.TimeZone}
}

// wrapAPIError maps Google API failures onto BackendError. 404 and 410 both
// mean the event no longer exists.
func wrapAPIError(op, eventID string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound, http.StatusGone:
			return &BackendError{Op: op, EventID: eventID, NotFound: true, Message: "event not found", Cause: err}
		}
	}
	return &BackendError{Op: op, EventID: eventID, Message: "calendar API call failed", Cause: err}
}
