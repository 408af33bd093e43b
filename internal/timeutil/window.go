// Package timeutil provides deterministic time-normalization rules for the
// extraction stages: lookup-window buffer sizing by specificity tier and
// timezone resolution for extracted instants.
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/calendar-agent/internal/types"
)

// ClockBufferMinutes is the window half-width for an explicit clock time.
const ClockBufferMinutes = 5

// daypart maps a coarse time-of-day word to a default clock hour and buffer.
type daypart struct {
	Hour          int
	BufferMinutes int
}

var dayparts = map[string]daypart{
	"morning":   {Hour: 10, BufferMinutes: 120},
	"afternoon": {Hour: 15, BufferMinutes: 180},
	"evening":   {Hour: 19, BufferMinutes: 120},
	"night":     {Hour: 22, BufferMinutes: 120},
	"tonight":   {Hour: 22, BufferMinutes: 120},
}

var (
	clockRe     = regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}\b|\b\d{1,2}\s*(?:am|pm)\b`)
	wordRangeRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\s*(?:to|until|till|through)\s*(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
	dashRangeRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\s*[-–]\s*(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
)

// NormalizeWindow applies the buffer-sizing tiers to a drafted lookup window,
// keyed off the literal time phrase it was extracted from:
//
//   - daypart word ("morning") with no explicit clock: center snaps to the
//     daypart's default hour, buffer to its default width
//   - explicit range ("10am to 12pm"): center at the midpoint, buffer half
//     the range width
//   - explicit clock time: buffer of ClockBufferMinutes
//   - bare day reference: the all-day center is kept and spans the whole day
//
// The returned note describes the adjustment for parsing_issues; it is empty
// when the draft already conformed.
func NormalizeWindow(w types.TimeWindow, ref types.Reference) (types.TimeWindow, string, error) {
	if err := w.Center.Validate(); err != nil {
		return types.TimeWindow{}, "", fmt.Errorf("window center: %w", err)
	}

	phrase := strings.ToLower(w.OriginalReference)

	if name, dp, ok := findDaypart(phrase); ok && !clockRe.MatchString(phrase) {
		out, err := snapToDaypart(w, dp, ref)
		if err != nil {
			return types.TimeWindow{}, "", err
		}
		note := ""
		if out != w {
			note = fmt.Sprintf("daypart %q mapped to %02d:00 with %d minute buffer", name, dp.Hour, dp.BufferMinutes)
		}
		return out, note, nil
	}

	if start, end, ok := parseRange(phrase, w, ref); ok {
		mid := start.Add(end.Sub(start) / 2)
		buffer := int(end.Sub(start) / (2 * time.Minute))
		zone := w.Center.TimeZone
		if zone == "" {
			zone = ref.Timezone
		}
		center, err := types.NewDateTimeSpec(mid, zone)
		if err != nil {
			return types.TimeWindow{}, "", err
		}
		out := types.TimeWindow{Center: center, BufferMinutes: buffer, OriginalReference: w.OriginalReference}
		note := ""
		if out != w {
			note = fmt.Sprintf("range %q centered at %s with %d minute buffer", w.OriginalReference, mid.Format("15:04"), buffer)
		}
		return out, note, nil
	}

	if clockRe.MatchString(phrase) && !w.Center.IsAllDay() {
		if w.BufferMinutes == ClockBufferMinutes {
			return w, "", nil
		}
		out := w
		out.BufferMinutes = ClockBufferMinutes
		return out, fmt.Sprintf("explicit time buffer tightened to %d minutes", ClockBufferMinutes), nil
	}

	// Bare day reference: all-day centers already span the day via Bounds.
	if w.Center.IsAllDay() {
		out := w
		out.BufferMinutes = 0
		return out, "", nil
	}

	// Timed center without a recognizable phrase: keep the drafted buffer
	// but never tighter than the explicit-clock tier.
	if w.BufferMinutes < ClockBufferMinutes {
		out := w
		out.BufferMinutes = ClockBufferMinutes
		return out, "", nil
	}
	return w, "", nil
}

func findDaypart(phrase string) (string, daypart, bool) {
	for _, name := range []string{"morning", "afternoon", "evening", "tonight", "night"} {
		if containsWord(phrase, name) {
			return name, dayparts[name], true
		}
	}
	return "", daypart{}, false
}

func containsWord(s, word string) bool {
	return wordIndex(s, word) >= 0
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// snapToDaypart moves the window center to the daypart's default hour on the
// center's calendar day and applies the daypart buffer.
func snapToDaypart(w types.TimeWindow, dp daypart, ref types.Reference) (types.TimeWindow, error) {
	zone := w.Center.TimeZone
	if zone == "" {
		zone = ref.Timezone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return types.TimeWindow{}, fmt.Errorf("invalid IANA timezone %q: %w", zone, err)
	}

	day, err := w.Center.Time(loc)
	if err != nil {
		return types.TimeWindow{}, err
	}
	day = day.In(loc)

	center, err := types.NewDateTimeSpec(
		time.Date(day.Year(), day.Month(), day.Day(), dp.Hour, 0, 0, 0, loc), zone)
	if err != nil {
		return types.TimeWindow{}, err
	}
	return types.TimeWindow{
		Center:            center,
		BufferMinutes:     dp.BufferMinutes,
		OriginalReference: w.OriginalReference,
	}, nil
}

// parseRange recognizes an explicit clock range in the phrase and resolves
// both endpoints on the window's calendar day. Dash-separated ranges are only
// accepted when a meridiem marker is present, so date strings never match.
func parseRange(phrase string, w types.TimeWindow, ref types.Reference) (time.Time, time.Time, bool) {
	m := wordRangeRe.FindStringSubmatch(phrase)
	if m == nil {
		m = dashRangeRe.FindStringSubmatch(phrase)
		if m == nil || (m[3] == "" && m[6] == "") {
			return time.Time{}, time.Time{}, false
		}
	}

	startClock, ok1 := parseClock(m[1], m[2], m[3], m[6])
	endClock, ok2 := parseClock(m[4], m[5], m[6], m[3])
	if !ok1 || !ok2 {
		return time.Time{}, time.Time{}, false
	}

	zone := w.Center.TimeZone
	if zone == "" {
		zone = ref.Timezone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	day, err := w.Center.Time(loc)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	day = day.In(loc)

	at := func(c clock) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), c.hour, c.minute, 0, 0, loc)
	}
	start, end := at(startClock), at(endClock)
	if !end.After(start) {
		// "10 to 12pm" style: the first endpoint inherited the wrong
		// meridiem, so try its opposite before giving up.
		flipped := startClock
		flipped.hour = (flipped.hour + 12) % 24
		start = at(flipped)
		if !end.After(start) {
			return time.Time{}, time.Time{}, false
		}
	}
	return start, end, true
}

type clock struct {
	hour, minute int
}

// parseClock resolves one range endpoint, inheriting the other endpoint's
// meridiem when its own is absent.
func parseClock(hourStr, minuteStr, meridiem, otherMeridiem string) (clock, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return clock{}, false
	}
	minute := 0
	if minuteStr != "" {
		if minute, err = strconv.Atoi(minuteStr); err != nil || minute > 59 {
			return clock{}, false
		}
	}

	m := strings.ToLower(meridiem)
	if m == "" {
		m = strings.ToLower(otherMeridiem)
	}
	switch m {
	case "am":
		if hour < 1 || hour > 12 {
			return clock{}, false
		}
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 1 || hour > 12 {
			return clock{}, false
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return clock{}, false
		}
	}
	return clock{hour: hour, minute: minute}, true
}
