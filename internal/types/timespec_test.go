package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSpec_ValidateTimedVariant(t *testing.T) {
	spec := TimeSpec{DateTime: "2025-05-07T15:00:00+10:00", TimeZone: "Australia/Sydney"}
	assert.NoError(t, spec.Validate())
	assert.False(t, spec.IsAllDay())
}

func TestTimeSpec_ValidateOffsetMismatch(t *testing.T) {
	// Sydney is +10:00 in May (no DST); a -05:00 offset cannot belong to it.
	spec := TimeSpec{DateTime: "2025-05-07T15:00:00-05:00", TimeZone: "Australia/Sydney"}
	err := spec.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match timezone")
}

func TestTimeSpec_ValidateDSTOffset(t *testing.T) {
	// New York is -04:00 in July (DST) and -05:00 in January.
	summer := TimeSpec{DateTime: "2025-07-10T09:00:00-04:00", TimeZone: "America/New_York"}
	assert.NoError(t, summer.Validate())

	winter := TimeSpec{DateTime: "2025-01-10T09:00:00-04:00", TimeZone: "America/New_York"}
	assert.Error(t, winter.Validate())
}

func TestTimeSpec_ValidateAllDayVariant(t *testing.T) {
	spec := TimeSpec{Date: "2025-05-07"}
	assert.NoError(t, spec.Validate())
	assert.True(t, spec.IsAllDay())
}

func TestTimeSpec_ValidateRejectsBothVariants(t *testing.T) {
	spec := TimeSpec{DateTime: "2025-05-07T15:00:00+10:00", TimeZone: "Australia/Sydney", Date: "2025-05-07"}
	err := spec.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both")
}

func TestTimeSpec_ValidateRejectsNeitherVariant(t *testing.T) {
	assert.Error(t, TimeSpec{}.Validate())
}

func TestTimeSpec_ValidateRejectsZoneOnAllDay(t *testing.T) {
	spec := TimeSpec{Date: "2025-05-07", TimeZone: "Australia/Sydney"}
	assert.Error(t, spec.Validate())
}

func TestTimeSpec_ValidateRejectsMissingZone(t *testing.T) {
	spec := TimeSpec{DateTime: "2025-05-07T15:00:00+10:00"}
	err := spec.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeZone")
}

func TestTimeSpec_ValidateRejectsBadSyntax(t *testing.T) {
	assert.Error(t, TimeSpec{DateTime: "May 7th 3pm", TimeZone: "UTC"}.Validate())
	assert.Error(t, TimeSpec{Date: "07/05/2025"}.Validate())
	assert.Error(t, TimeSpec{DateTime: "2025-05-07T15:00:00+10:00", TimeZone: "Sydney"}.Validate())
}

func TestNewDateTimeSpec_RendersInZone(t *testing.T) {
	instant := time.Date(2025, 5, 7, 5, 0, 0, 0, time.UTC)
	spec, err := NewDateTimeSpec(instant, "Australia/Sydney")
	require.NoError(t, err)
	assert.Equal(t, "2025-05-07T15:00:00+10:00", spec.DateTime)
	assert.Equal(t, "Australia/Sydney", spec.TimeZone)
	assert.NoError(t, spec.Validate())
}

func TestTimeSpec_TimeRoundTrip(t *testing.T) {
	spec := TimeSpec{DateTime: "2025-05-07T15:00:00+10:00", TimeZone: "Australia/Sydney"}
	got, err := spec.Time(nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 7, 5, 0, 0, 0, time.UTC), got.UTC())
}

func TestTimeWindow_Bounds(t *testing.T) {
	w := TimeWindow{
		Center:        TimeSpec{DateTime: "2025-05-07T10:00:00+10:00", TimeZone: "Australia/Sydney"},
		BufferMinutes: 120,
	}
	start, end, err := w.Bounds(nil)
	require.NoError(t, err)
	assert.Equal(t, 4*time.Hour, end.Sub(start))
	assert.Equal(t, time.Date(2025, 5, 6, 22, 0, 0, 0, time.UTC), start.UTC())
}

func TestTimeWindow_BoundsAllDay(t *testing.T) {
	w := TimeWindow{Center: TimeSpec{Date: "2025-05-07"}, BufferMinutes: 0}
	start, end, err := w.Bounds(nil)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestTimeWindow_BoundsAllDayAnchorsInLocation(t *testing.T) {
	loc, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)

	w := TimeWindow{Center: TimeSpec{Date: "2025-05-13"}, BufferMinutes: 0}
	start, end, err := w.Bounds(loc)
	require.NoError(t, err)

	// Midnight Sydney, not midnight UTC.
	assert.Equal(t, time.Date(2025, 5, 12, 14, 0, 0, 0, time.UTC), start.UTC())
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestTimeWindow_ValidateRejectsNegativeBuffer(t *testing.T) {
	w := TimeWindow{Center: TimeSpec{Date: "2025-05-07"}, BufferMinutes: -5}
	assert.Error(t, w.Validate())
}

func TestReference_SpecUsesZone(t *testing.T) {
	ref := Reference{
		Instant:  time.Date(2025, 5, 6, 0, 0, 0, 0, time.UTC),
		Timezone: "Australia/Sydney",
	}
	spec := ref.Spec()
	assert.Equal(t, "2025-05-06T10:00:00+10:00", spec.DateTime)
	assert.Equal(t, "Australia/Sydney", spec.TimeZone)
}

func TestNow_FallsBackToUTC(t *testing.T) {
	ref := Now("Not/AZone")
	assert.Equal(t, "UTC", ref.Timezone)
}

func TestReferenceAt(t *testing.T) {
	instant := time.Date(2025, 5, 6, 0, 0, 0, 0, time.UTC)

	t.Run("explicit instant and zone", func(t *testing.T) {
		ref := ReferenceAt(&instant, "Australia/Sydney")
		assert.Equal(t, "Australia/Sydney", ref.Timezone)
		assert.True(t, ref.Instant.Equal(instant))
		assert.Equal(t, 10, ref.Instant.Hour(), "UTC midnight is 10am in Sydney")
	})

	t.Run("instant without zone anchors in UTC", func(t *testing.T) {
		ref := ReferenceAt(&instant, "")
		assert.Equal(t, "UTC", ref.Timezone)
		assert.True(t, ref.Instant.Equal(instant))
	})

	t.Run("unknown zone falls back to UTC", func(t *testing.T) {
		ref := ReferenceAt(&instant, "Mars/Olympus")
		assert.Equal(t, "UTC", ref.Timezone)
	})

	t.Run("zone without instant anchors now", func(t *testing.T) {
		ref := ReferenceAt(nil, "America/New_York")
		assert.Equal(t, "America/New_York", ref.Timezone)
		assert.WithinDuration(t, time.Now(), ref.Instant, 5*time.Second)
	})

	t.Run("neither yields the zero reference", func(t *testing.T) {
		ref := ReferenceAt(nil, "")
		assert.True(t, ref.Instant.IsZero())
	})
}
