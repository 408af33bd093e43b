package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/calendar-agent/internal/types"
)

func TestResolveZone_LocationKeyword(t *testing.T) {
	zone, source := ResolveZone("Book a meeting with the Sydney team at 3pm", "UTC")
	assert.Equal(t, "Australia/Sydney", zone)
	assert.Equal(t, ZoneFromLocation, source)
}

func TestResolveZone_MultiWordLocation(t *testing.T) {
	zone, source := ResolveZone("Dinner in New York on Friday", "UTC")
	assert.Equal(t, "America/New_York", zone)
	assert.Equal(t, ZoneFromLocation, source)
}

func TestResolveZone_Abbreviation(t *testing.T) {
	zone, source := ResolveZone("Standup at 9am PST", "UTC")
	assert.Equal(t, "America/Los_Angeles", zone)
	assert.Equal(t, ZoneFromAbbreviation, source)
}

func TestResolveZone_LocationBeatsAbbreviation(t *testing.T) {
	zone, source := ResolveZone("Call with London at 4pm EST", "UTC")
	assert.Equal(t, "Europe/London", zone)
	assert.Equal(t, ZoneFromLocation, source)
}

func TestResolveZone_SystemFallback(t *testing.T) {
	zone, source := ResolveZone("Team meeting tomorrow at 3pm", "Australia/Sydney")
	assert.Equal(t, "Australia/Sydney", zone)
	assert.Equal(t, ZoneFromSystem, source)
}

func TestResolveZone_EarliestMentionWins(t *testing.T) {
	zone, _ := ResolveZone("Flight from Tokyo to London next Monday", "UTC")
	assert.Equal(t, "Asia/Tokyo", zone)
}

func TestResolveZone_WholeWordOnly(t *testing.T) {
	// "interesting" contains "est" but is not a timezone mention.
	zone, source := ResolveZone("An interesting discussion tomorrow", "UTC")
	assert.Equal(t, "UTC", zone)
	assert.Equal(t, ZoneFromSystem, source)
}

func TestReanchor_KeepsWallClock(t *testing.T) {
	// 15:00 stated with a wrong offset stays 15:00 in the resolved zone.
	wrong, err := time.Parse(time.RFC3339, "2025-05-07T15:00:00-05:00")
	require.NoError(t, err)

	got, err := Reanchor(wrong, "Australia/Sydney")
	require.NoError(t, err)
	assert.Equal(t, "2025-05-07T15:00:00+10:00", got.Format(time.RFC3339))
}

func TestReanchor_InvalidZone(t *testing.T) {
	_, err := Reanchor(time.Now(), "Mars/Olympus")
	assert.Error(t, err)
}

func TestEnsureZone_RepairsMismatch(t *testing.T) {
	spec := types.TimeSpec{DateTime: "2025-05-07T15:00:00Z", TimeZone: "Australia/Sydney"}

	got, repaired, err := EnsureZone(spec, "Australia/Sydney")
	require.NoError(t, err)
	assert.True(t, repaired)
	assert.Equal(t, "2025-05-07T15:00:00+10:00", got.DateTime)
	assert.NoError(t, got.Validate())
}

func TestEnsureZone_NoopWhenConsistent(t *testing.T) {
	spec := types.TimeSpec{DateTime: "2025-05-07T15:00:00+10:00", TimeZone: "Australia/Sydney"}

	got, repaired, err := EnsureZone(spec, "Australia/Sydney")
	require.NoError(t, err)
	assert.False(t, repaired)
	assert.Equal(t, spec, got)
}

func TestEnsureZone_AllDayPassesThrough(t *testing.T) {
	spec := types.TimeSpec{Date: "2025-05-07"}

	got, repaired, err := EnsureZone(spec, "Australia/Sydney")
	require.NoError(t, err)
	assert.False(t, repaired)
	assert.Equal(t, spec, got)
}

func TestDefaultEnd_TimedEvent(t *testing.T) {
	start := types.TimeSpec{DateTime: "2025-05-07T15:00:00+10:00", TimeZone: "Australia/Sydney"}

	end, err := DefaultEnd(start, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "2025-05-07T16:00:00+10:00", end.DateTime)
	assert.Equal(t, "Australia/Sydney", end.TimeZone)
}

func TestDefaultEnd_AllDayEvent(t *testing.T) {
	end, err := DefaultEnd(types.TimeSpec{Date: "2025-05-07"}, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "2025-05-08", end.Date)
}

func TestClampAllDayEnd_SingleDay(t *testing.T) {
	start := types.TimeSpec{Date: "2025-05-07"}

	// A draft that repeated the start date is clamped to the next day.
	end, clamped, err := ClampAllDayEnd(start, types.TimeSpec{Date: "2025-05-07"}, false)
	require.NoError(t, err)
	assert.True(t, clamped)
	assert.Equal(t, "2025-05-08", end.Date)

	// A conforming draft passes through.
	end, clamped, err = ClampAllDayEnd(start, types.TimeSpec{Date: "2025-05-08"}, false)
	require.NoError(t, err)
	assert.False(t, clamped)
	assert.Equal(t, "2025-05-08", end.Date)

	// Without an explicit multi-day statement a longer span collapses.
	end, clamped, err = ClampAllDayEnd(start, types.TimeSpec{Date: "2025-05-10"}, false)
	require.NoError(t, err)
	assert.True(t, clamped)
	assert.Equal(t, "2025-05-08", end.Date)
}

func TestClampAllDayEnd_ExplicitMultiDay(t *testing.T) {
	start := types.TimeSpec{Date: "2025-05-07"}

	end, clamped, err := ClampAllDayEnd(start, types.TimeSpec{Date: "2025-05-10"}, true)
	require.NoError(t, err)
	assert.False(t, clamped)
	assert.Equal(t, "2025-05-10", end.Date)
}

func TestClampAllDayEnd_TimedPairUntouched(t *testing.T) {
	start := types.TimeSpec{DateTime: "2025-05-07T15:00:00+10:00", TimeZone: "Australia/Sydney"}
	end := types.TimeSpec{DateTime: "2025-05-07T16:00:00+10:00", TimeZone: "Australia/Sydney"}

	got, clamped, err := ClampAllDayEnd(start, end, false)
	require.NoError(t, err)
	assert.False(t, clamped)
	assert.Equal(t, end, got)
}
