package calendar

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/jonathan/calendar-agent/internal/types"
)

func TestToGoogleEvent(t *testing.T) {
	details := &types.CreateEventDetails{
		Title:       "Team Meeting",
		Description: "Weekly sync",
		Location:    "Room 4",
		Start:       types.TimeSpec{DateTime: "2025-05-07T15:00:00+10:00", TimeZone: "Australia/Sydney"},
		End:         types.TimeSpec{DateTime: "2025-05-07T16:00:00+10:00", TimeZone: "Australia/Sydney"},
		Attendees: []types.Attendee{
			{Email: "jane.doe@example.com", DisplayName: "Jane Doe"},
		},
	}

	ev := toGoogleEvent(details)

	assert.Equal(t, "Team Meeting", ev.Summary)
	assert.Equal(t, "Weekly sync", ev.Description)
	assert.Equal(t, "Room 4", ev.Location)
	require.NotNil(t, ev.Start)
	assert.Equal(t, "2025-05-07T15:00:00+10:00", ev.Start.DateTime)
	assert.Equal(t, "Australia/Sydney", ev.Start.TimeZone)
	assert.Empty(t, ev.Start.Date)
	require.Len(t, ev.Attendees, 1)
	assert.Equal(t, "jane.doe@example.com", ev.Attendees[0].Email)
}

func TestToGoogleEvent_AllDay(t *testing.T) {
	details := &types.CreateEventDetails{
		Title: "Company Holiday",
		Start: types.TimeSpec{Date: "2025-05-07"},
		End:   types.TimeSpec{Date: "2025-05-08"},
	}

	ev := toGoogleEvent(details)

	require.NotNil(t, ev.Start)
	assert.Equal(t, "2025-05-07", ev.Start.Date)
	assert.Empty(t, ev.Start.DateTime)
	assert.Empty(t, ev.Start.TimeZone)
	require.NotNil(t, ev.End)
	assert.Equal(t, "2025-05-08", ev.End.Date)
}

func TestToGooglePatch_SparseFields(t *testing.T) {
	title := "New Title"
	patch := toGooglePatch(&types.EventChanges{Title: &title})

	assert.Equal(t, "New Title", patch.Summary)
	assert.Nil(t, patch.Start)
	assert.Nil(t, patch.End)
	assert.Empty(t, patch.ForceSendFields)
}

func TestToGooglePatch_ClearsWithForceSend(t *testing.T) {
	empty := ""
	patch := toGooglePatch(&types.EventChanges{Description: &empty})

	assert.Empty(t, patch.Description)
	assert.Contains(t, patch.ForceSendFields, "Description")
}

func TestFromGoogleEvent(t *testing.T) {
	ev := fromGoogleEvent(&gcal.Event{
		Id:      "abc123",
		Summary: "Team Meeting",
		Status:  "confirmed",
		Start: &gcal.EventDateTime{
			DateTime: "2025-05-07T15:00:00+10:00",
			TimeZone: "Australia/Sydney",
		},
		End: &gcal.EventDateTime{
			DateTime: "2025-05-07T16:00:00+10:00",
			TimeZone: "Australia/Sydney",
		},
		HtmlLink: "https://calendar.google.com/event?eid=abc123",
		Attendees: []*gcal.EventAttendee{
			{Email: "jane.doe@example.com", DisplayName: "Jane Doe"},
		},
	})

	assert.Equal(t, "abc123", ev.ID)
	assert.Equal(t, "Team Meeting", ev.Title)
	assert.Equal(t, "confirmed", ev.Status)
	assert.Equal(t, "2025-05-07T15:00:00+10:00", ev.Start.DateTime)
	assert.False(t, ev.Start.IsAllDay())
	require.Len(t, ev.Attendees, 1)
	assert.Equal(t, "Jane Doe", ev.Attendees[0].DisplayName)
}

func TestFromGoogleEvent_AllDay(t *testing.T) {
	ev := fromGoogleEvent(&gcal.Event{
		Id:    "holiday",
		Start: &gcal.EventDateTime{Date: "2025-05-07"},
		End:   &gcal.EventDateTime{Date: "2025-05-08"},
	})

	assert.True(t, ev.Start.IsAllDay())
	assert.Equal(t, "2025-05-07", ev.Start.Date)
	assert.Equal(t, "2025-05-08", ev.End.Date)
}

func TestWrapAPIError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantMissing bool
	}{
		{
			name:        "404 is not found",
			err:         &googleapi.Error{Code: http.StatusNotFound},
			wantMissing: true,
		},
		{
			name:        "410 gone is not found",
			err:         &googleapi.Error{Code: http.StatusGone},
			wantMissing: true,
		},
		{
			name:        "500 is a backend failure",
			err:         &googleapi.Error{Code: http.StatusInternalServerError},
			wantMissing: false,
		},
		{
			name:        "403 is a backend failure",
			err:         &googleapi.Error{Code: http.StatusForbidden},
			wantMissing: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := wrapAPIError("get", "evt-1", tt.err)
			assert.Equal(t, tt.wantMissing, IsNotFound(wrapped))

			var be *BackendError
			require.ErrorAs(t, wrapped, &be)
			assert.Equal(t, "get", be.Op)
			assert.Equal(t, "evt-1", be.EventID)
		})
	}
}
