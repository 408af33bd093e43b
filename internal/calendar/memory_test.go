package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/calendar-agent/internal/types"
)

func timedSpec(t *testing.T, value, zone string) types.TimeSpec {
	t.Helper()
	spec := types.TimeSpec{DateTime: value, TimeZone: zone}
	require.NoError(t, spec.Validate())
	return spec
}

func seedEvent(t *testing.T, b *MemoryBackend, title, start, end string) *Event {
	t.Helper()
	ev, err := b.Create(context.Background(), &types.CreateEventDetails{
		Title: title,
		Start: timedSpec(t, start, "Australia/Sydney"),
		End:   timedSpec(t, end, "Australia/Sydney"),
	})
	require.NoError(t, err)
	return ev
}

func TestMemoryBackend_CreateAndGet(t *testing.T) {
	b := NewMemoryBackend()

	created, err := b.Create(context.Background(), &types.CreateEventDetails{
		Title:    "Team Meeting",
		Location: "Room 4",
		Start:    timedSpec(t, "2025-05-07T15:00:00+10:00", "Australia/Sydney"),
		End:      timedSpec(t, "2025-05-07T16:00:00+10:00", "Australia/Sydney"),
		Attendees: []types.Attendee{
			{Email: "jane.doe@example.com", DisplayName: "Jane Doe"},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "confirmed", created.Status)
	assert.NotEmpty(t, created.HTMLLink)

	got, err := b.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Team Meeting", got.Title)
	assert.Equal(t, "Room 4", got.Location)
	require.Len(t, got.Attendees, 1)
	assert.Equal(t, "jane.doe@example.com", got.Attendees[0].Email)
}

func TestMemoryBackend_GetNotFound(t *testing.T) {
	b := NewMemoryBackend()

	_, err := b.Get(context.Background(), "evt-missing")

	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestMemoryBackend_ReturnsCopies(t *testing.T) {
	b := NewMemoryBackend()
	created := seedEvent(t, b, "Standup", "2025-05-07T09:00:00+10:00", "2025-05-07T09:15:00+10:00")

	created.Title = "mutated"

	got, err := b.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Standup", got.Title, "mutating a returned event must not touch the store")
}

func TestMemoryBackend_ListWindow(t *testing.T) {
	b := NewMemoryBackend()
	seedEvent(t, b, "Morning Standup", "2025-05-07T09:00:00+10:00", "2025-05-07T09:15:00+10:00")
	inWindow := seedEvent(t, b, "Team Meeting", "2025-05-07T15:00:00+10:00", "2025-05-07T16:00:00+10:00")
	seedEvent(t, b, "Late Review", "2025-05-08T10:00:00+10:00", "2025-05-08T11:00:00+10:00")

	min, _ := time.Parse(time.RFC3339, "2025-05-07T14:00:00+10:00")
	max, _ := time.Parse(time.RFC3339, "2025-05-07T17:00:00+10:00")

	events, err := b.List(context.Background(), ListQuery{TimeMin: min, TimeMax: max, Timezone: "Australia/Sydney"})

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, inWindow.ID, events[0].ID)
}

func TestMemoryBackend_ListOverlapIsHalfOpen(t *testing.T) {
	b := NewMemoryBackend()
	// Ends exactly at the window start: excluded.
	seedEvent(t, b, "Before", "2025-05-07T13:00:00+10:00", "2025-05-07T14:00:00+10:00")
	// Starts exactly at the window end: excluded.
	seedEvent(t, b, "After", "2025-05-07T17:00:00+10:00", "2025-05-07T18:00:00+10:00")
	// Straddles the window start: included.
	straddle := seedEvent(t, b, "Straddle", "2025-05-07T13:30:00+10:00", "2025-05-07T14:30:00+10:00")

	min, _ := time.Parse(time.RFC3339, "2025-05-07T14:00:00+10:00")
	max, _ := time.Parse(time.RFC3339, "2025-05-07T17:00:00+10:00")

	events, err := b.List(context.Background(), ListQuery{TimeMin: min, TimeMax: max})

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, straddle.ID, events[0].ID)
}

func TestMemoryBackend_ListQueryTerms(t *testing.T) {
	b := NewMemoryBackend()
	meeting := seedEvent(t, b, "Team Meeting", "2025-05-07T15:00:00+10:00", "2025-05-07T16:00:00+10:00")
	seedEvent(t, b, "Dentist", "2025-05-07T15:30:00+10:00", "2025-05-07T16:30:00+10:00")

	min, _ := time.Parse(time.RFC3339, "2025-05-07T00:00:00+10:00")
	max, _ := time.Parse(time.RFC3339, "2025-05-08T00:00:00+10:00")

	events, err := b.List(context.Background(), ListQuery{
		TimeMin: min,
		TimeMax: max,
		Query:   "team meeting",
	})

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, meeting.ID, events[0].ID)
}

func TestMemoryBackend_ListOrdersByStart(t *testing.T) {
	b := NewMemoryBackend()
	later := seedEvent(t, b, "Later", "2025-05-07T16:00:00+10:00", "2025-05-07T17:00:00+10:00")
	earlier := seedEvent(t, b, "Earlier", "2025-05-07T09:00:00+10:00", "2025-05-07T10:00:00+10:00")

	min, _ := time.Parse(time.RFC3339, "2025-05-07T00:00:00+10:00")
	max, _ := time.Parse(time.RFC3339, "2025-05-08T00:00:00+10:00")

	events, err := b.List(context.Background(), ListQuery{TimeMin: min, TimeMax: max})

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, earlier.ID, events[0].ID)
	assert.Equal(t, later.ID, events[1].ID)
}

func TestMemoryBackend_ListMaxResults(t *testing.T) {
	b := NewMemoryBackend()
	for i := 0; i < 5; i++ {
		start := time.Date(2025, 5, 7, 9+i, 0, 0, 0, time.FixedZone("AEST", 10*3600))
		seedEvent(t, b, "Busy", start.Format(time.RFC3339), start.Add(30*time.Minute).Format(time.RFC3339))
	}

	min, _ := time.Parse(time.RFC3339, "2025-05-07T00:00:00+10:00")
	max, _ := time.Parse(time.RFC3339, "2025-05-08T00:00:00+10:00")

	events, err := b.List(context.Background(), ListQuery{TimeMin: min, TimeMax: max, MaxResults: 3})

	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestMemoryBackend_ListAllDayEvent(t *testing.T) {
	b := NewMemoryBackend()
	_, err := b.Create(context.Background(), &types.CreateEventDetails{
		Title: "Company Holiday",
		Start: types.TimeSpec{Date: "2025-05-07"},
		End:   types.TimeSpec{Date: "2025-05-08"},
	})
	require.NoError(t, err)

	min, _ := time.Parse(time.RFC3339, "2025-05-07T00:00:00+10:00")
	max, _ := time.Parse(time.RFC3339, "2025-05-08T00:00:00+10:00")

	events, err := b.List(context.Background(), ListQuery{TimeMin: min, TimeMax: max, Timezone: "Australia/Sydney"})

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Company Holiday", events[0].Title)
}

func TestMemoryBackend_Update(t *testing.T) {
	b := NewMemoryBackend()
	created := seedEvent(t, b, "Team Meeting", "2025-05-07T15:00:00+10:00", "2025-05-07T16:00:00+10:00")

	newTitle := "Team Meeting (moved)"
	newStart := timedSpec(t, "2025-05-07T16:00:00+10:00", "Australia/Sydney")

	updated, err := b.Update(context.Background(), created.ID, &types.EventChanges{
		Title: &newTitle,
		Start: &newStart,
	})

	require.NoError(t, err)
	assert.Equal(t, "Team Meeting (moved)", updated.Title)
	assert.Equal(t, "2025-05-07T16:00:00+10:00", updated.Start.DateTime)
	// Untouched fields survive the patch.
	assert.Equal(t, "2025-05-07T16:00:00+10:00", updated.End.DateTime)
}

func TestMemoryBackend_UpdateNotFound(t *testing.T) {
	b := NewMemoryBackend()

	title := "anything"
	_, err := b.Update(context.Background(), "evt-missing", &types.EventChanges{Title: &title})

	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestMemoryBackend_Delete(t *testing.T) {
	b := NewMemoryBackend()
	created := seedEvent(t, b, "Team Meeting", "2025-05-07T15:00:00+10:00", "2025-05-07T16:00:00+10:00")

	require.NoError(t, b.Delete(context.Background(), created.ID))
	assert.Equal(t, 0, b.Len())

	err := b.Delete(context.Background(), created.ID)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestMemoryBackend_CancelledContext(t *testing.T) {
	b := NewMemoryBackend()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Get(ctx, "evt-1")

	require.Error(t, err)
	assert.False(t, IsNotFound(err))
}
