package timeutil

import (
	"fmt"
	"time"

	"github.com/jonathan/calendar-agent/internal/types"
)

// Reanchor reinterprets the wall-clock components of t in the given IANA
// zone. Used to repair drafted timestamps whose UTC offset disagrees with
// the resolved zone: the stated local time is what the request meant, the
// offset is recomputed from the zone's rules.
func Reanchor(t time.Time, zone string) (time.Time, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid IANA timezone %q: %w", zone, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
}

// EnsureZone returns a spec whose offset agrees with zone, reanchoring the
// wall-clock time when it does not. All-day specs pass through untouched.
// The repaired flag reports whether an adjustment was made.
func EnsureZone(spec types.TimeSpec, zone string) (types.TimeSpec, bool, error) {
	if spec.IsAllDay() || spec.IsZero() {
		return spec, false, nil
	}

	t, err := time.Parse(time.RFC3339, spec.DateTime)
	if err != nil {
		return types.TimeSpec{}, false, fmt.Errorf("invalid RFC3339 dateTime %q: %w", spec.DateTime, err)
	}

	anchored, err := Reanchor(t, zone)
	if err != nil {
		return types.TimeSpec{}, false, err
	}
	out, err := types.NewDateTimeSpec(anchored, zone)
	if err != nil {
		return types.TimeSpec{}, false, err
	}
	return out, out != spec, nil
}

// DefaultEnd derives the end of an event that was extracted without one:
// timed events run for the default duration, all-day events end the next
// calendar day (exclusive bound).
func DefaultEnd(start types.TimeSpec, duration time.Duration) (types.TimeSpec, error) {
	if err := start.Validate(); err != nil {
		return types.TimeSpec{}, fmt.Errorf("start: %w", err)
	}

	if start.IsAllDay() {
		day, err := start.Time(nil)
		if err != nil {
			return types.TimeSpec{}, err
		}
		return types.NewDateSpec(day.AddDate(0, 0, 1)), nil
	}

	t, err := start.Time(nil)
	if err != nil {
		return types.TimeSpec{}, err
	}
	return types.NewDateTimeSpec(t.Add(duration), start.TimeZone)
}

// ClampAllDayEnd enforces the exclusive-end rule on an all-day pair: unless
// the request explicitly spans multiple days, the end is the day after the
// start. A drafted end at or before the start is always clamped.
func ClampAllDayEnd(start, end types.TimeSpec, multiDay bool) (types.TimeSpec, bool, error) {
	if !start.IsAllDay() || !end.IsAllDay() {
		return end, false, nil
	}
	startDay, err := start.Time(nil)
	if err != nil {
		return types.TimeSpec{}, false, err
	}
	endDay, err := end.Time(nil)
	if err != nil {
		return types.TimeSpec{}, false, err
	}

	next := startDay.AddDate(0, 0, 1)
	if multiDay && endDay.After(next) {
		return end, false, nil
	}
	if endDay.Equal(next) {
		return end, false, nil
	}
	return types.NewDateSpec(next), true, nil
}
