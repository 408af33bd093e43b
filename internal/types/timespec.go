package types

import (
	"fmt"
	"time"
)

// DateOnly is the layout for the all-day variant of TimeSpec.
const DateOnly = "2006-01-02"

// TimeSpec is a point-in-time specification in one of two mutually exclusive
// variants: a timed instant (RFC3339 dateTime plus IANA timeZone) or a whole
// calendar day (date). All-day ranges use an exclusive end date.
type TimeSpec struct {
	DateTime string `json:"dateTime,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
	Date     string `json:"date,omitempty"`
}

// NewDateTimeSpec builds the timed variant from an instant and an IANA zone,
// rendering the instant in that zone with an explicit UTC offset.
func NewDateTimeSpec(t time.Time, zone string) (TimeSpec, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return TimeSpec{}, fmt.Errorf("invalid IANA timezone %q: %w", zone, err)
	}
	return TimeSpec{
		DateTime: t.In(loc).Format(time.RFC3339),
		TimeZone: zone,
	}, nil
}

// NewDateSpec builds the all-day variant for the calendar day containing t.
func NewDateSpec(t time.Time) TimeSpec {
	return TimeSpec{Date: t.Format(DateOnly)}
}

// IsAllDay reports whether the spec uses the date variant.
func (s TimeSpec) IsAllDay() bool {
	return s.Date != ""
}

// IsZero reports whether neither variant is populated.
func (s TimeSpec) IsZero() bool {
	return s.DateTime == "" && s.Date == ""
}

// Validate checks variant exclusivity, RFC3339/date syntax, the IANA zone,
// and that the dateTime's embedded offset matches the zone at that instant.
func (s TimeSpec) Validate() error {
	switch {
	case s.DateTime != "" && s.Date != "":
		return fmt.Errorf("time spec must not set both dateTime and date")
	case s.DateTime == "" && s.Date == "":
		return fmt.Errorf("time spec must set either dateTime or date")
	case s.Date != "":
		if s.TimeZone != "" {
			return fmt.Errorf("all-day time spec must not carry a timeZone")
		}
		if _, err := time.Parse(DateOnly, s.Date); err != nil {
			return fmt.Errorf("invalid date %q: must be YYYY-MM-DD", s.Date)
		}
		return nil
	}

	t, err := time.Parse(time.RFC3339, s.DateTime)
	if err != nil {
		return fmt.Errorf("invalid RFC3339 dateTime %q: %w", s.DateTime, err)
	}
	if s.TimeZone == "" {
		return fmt.Errorf("dateTime variant requires an IANA timeZone")
	}
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return fmt.Errorf("invalid IANA timezone %q: %w", s.TimeZone, err)
	}
	_, have := t.Zone()
	_, want := t.In(loc).Zone()
	if have != want {
		return fmt.Errorf("dateTime offset %s does not match timezone %s at %s",
			offsetString(have), s.TimeZone, s.DateTime)
	}
	return nil
}

// Time parses the spec into a time.Time. The timed variant resolves in its
// own zone; the all-day variant resolves to midnight in loc (UTC when nil).
func (s TimeSpec) Time(loc *time.Location) (time.Time, error) {
	if s.IsAllDay() {
		if loc == nil {
			loc = time.UTC
		}
		return time.ParseInLocation(DateOnly, s.Date, loc)
	}
	t, err := time.Parse(time.RFC3339, s.DateTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid RFC3339 dateTime %q: %w", s.DateTime, err)
	}
	if z, err := time.LoadLocation(s.TimeZone); err == nil {
		t = t.In(z)
	}
	return t, nil
}

func offsetString(seconds int) string {
	sign := "+"
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%02d:%02d", sign, seconds/3600, (seconds%3600)/60)
}

// TimeWindow is a symmetric search window around a center instant. The
// buffer is the half-width in minutes; original reference preserves the
// literal time phrase for audit output.
type TimeWindow struct {
	Center            TimeSpec `json:"center"`
	BufferMinutes     int      `json:"buffer_minutes"`
	OriginalReference string   `json:"original_reference"`
}

// Validate checks the center spec and the non-negative buffer.
func (w TimeWindow) Validate() error {
	if err := w.Center.Validate(); err != nil {
		return fmt.Errorf("window center: %w", err)
	}
	if w.BufferMinutes < 0 {
		return fmt.Errorf("buffer_minutes must be >= 0, got %d", w.BufferMinutes)
	}
	return nil
}

// Bounds returns the [center-buffer, center+buffer] interval. For an all-day
// center the window spans the whole day widened by the buffer on both sides,
// anchored at midnight in loc (UTC when nil). Timed centers resolve in their
// own zone regardless of loc.
func (w TimeWindow) Bounds(loc *time.Location) (time.Time, time.Time, error) {
	center, err := w.Center.Time(loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	buffer := time.Duration(w.BufferMinutes) * time.Minute
	if w.Center.IsAllDay() {
		return center.Add(-buffer), center.AddDate(0, 0, 1).Add(buffer), nil
	}
	return center.Add(-buffer), center.Add(buffer), nil
}

// Reference is the caller-supplied anchor for resolving relative time
// expressions: the current instant and the system IANA timezone.
type Reference struct {
	Instant  time.Time
	Timezone string
}

// Now builds a reference from the wall clock in the given zone, falling back
// to UTC when the zone does not resolve.
func Now(zone string) Reference {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Reference{Instant: time.Now().UTC(), Timezone: "UTC"}
	}
	return Reference{Instant: time.Now().In(loc).Truncate(time.Second), Timezone: zone}
}

// ReferenceAt builds a reference from an optional explicit instant and zone.
// An explicit instant wins; a zone alone anchors the current wall clock; with
// neither, the zero reference defers to the pipeline's configured default.
func ReferenceAt(instant *time.Time, zone string) Reference {
	if instant == nil {
		if zone != "" {
			return Now(zone)
		}
		return Reference{}
	}
	if zone == "" {
		zone = "UTC"
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Reference{Instant: instant.UTC(), Timezone: "UTC"}
	}
	return Reference{Instant: instant.In(loc), Timezone: zone}
}

// Spec renders the reference as a timed TimeSpec for prompt interpolation.
func (r Reference) Spec() TimeSpec {
	spec, err := NewDateTimeSpec(r.Instant, r.Timezone)
	if err != nil {
		return TimeSpec{DateTime: r.Instant.UTC().Format(time.RFC3339), TimeZone: "UTC"}
	}
	return spec
}
