package types

import (
	"fmt"
	"strings"
)

// Attendee is a single event participant with a resolved email address.
type Attendee struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// NormalizeAttendee turns a bare name or partial address into a full email
// under the given domain. Already-qualified addresses pass through lowered.
func NormalizeAttendee(raw, domain string) Attendee {
	name := strings.TrimSpace(raw)
	if name == "" {
		return Attendee{}
	}
	if strings.Contains(name, "@") {
		return Attendee{Email: strings.ToLower(name), DisplayName: ""}
	}
	local := strings.ToLower(strings.Join(strings.Fields(name), "."))
	return Attendee{
		Email:       local + "@" + domain,
		DisplayName: name,
	}
}

// CreateEventDetails is the extraction output for a create request: the
// complete field set needed to insert one calendar event.
type CreateEventDetails struct {
	Title           string     `json:"title"`
	Start           TimeSpec   `json:"start"`
	End             TimeSpec   `json:"end"`
	Description     string     `json:"description,omitempty"`
	Location        string     `json:"location,omitempty"`
	Attendees       []Attendee `json:"attendees,omitempty"`
	ConfidenceScore float64    `json:"confidence_score"`
	ParsingIssues   []string   `json:"parsing_issues,omitempty"`
	Reasoning       string     `json:"reasoning,omitempty"`
}

// Validate checks the structural invariants: a title, both endpoints in the
// same variant, end after start (timed) or end strictly past start (all-day,
// exclusive end).
func (d CreateEventDetails) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("event title must not be empty")
	}
	if err := d.Start.Validate(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if err := d.End.Validate(); err != nil {
		return fmt.Errorf("end: %w", err)
	}
	if d.Start.IsAllDay() != d.End.IsAllDay() {
		return fmt.Errorf("start and end must use the same variant (both timed or both all-day)")
	}
	start, err := d.Start.Time(nil)
	if err != nil {
		return err
	}
	end, err := d.End.Time(nil)
	if err != nil {
		return err
	}
	if !end.After(start) {
		return fmt.Errorf("event end %s must be after start %s", endLabel(d.End), endLabel(d.Start))
	}
	return nil
}

func endLabel(s TimeSpec) string {
	if s.IsAllDay() {
		return s.Date
	}
	return s.DateTime
}

// EventChanges is a sparse patch for an update request: only set fields are
// applied to the matched event. Zero-valued specs mean "leave unchanged".
type EventChanges struct {
	Title       *string    `json:"title,omitempty"`
	Start       *TimeSpec  `json:"start,omitempty"`
	End         *TimeSpec  `json:"end,omitempty"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Attendees   []Attendee `json:"attendees,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (c EventChanges) Empty() bool {
	return c.Title == nil && c.Start == nil && c.End == nil &&
		c.Description == nil && c.Location == nil && len(c.Attendees) == 0
}

// LookupCriteria is the extraction output for update, delete and lookup
// requests: how to find the target event(s). At least one of event_id or
// time_window must be present; context terms narrow window matches and are
// forced empty for bulk operations. Timezone is the zone resolved for the
// request and anchors all-day window boundaries.
type LookupCriteria struct {
	EventID         string        `json:"event_id,omitempty"`
	TimeWindow      *TimeWindow   `json:"time_window,omitempty"`
	ContextTerms    []string      `json:"context_terms,omitempty"`
	Changes         *EventChanges `json:"changes,omitempty"`
	Timezone        string        `json:"timezone,omitempty"`
	ConfidenceScore float64       `json:"confidence_score"`
	ParsingIssues   []string      `json:"parsing_issues,omitempty"`
	Reasoning       string        `json:"reasoning,omitempty"`
}

// Validate enforces the anchor invariant and window well-formedness.
func (c LookupCriteria) Validate() error {
	if c.EventID == "" && c.TimeWindow == nil {
		return fmt.Errorf("lookup criteria require an event_id or a time_window")
	}
	if c.TimeWindow != nil {
		if err := c.TimeWindow.Validate(); err != nil {
			return err
		}
	}
	return nil
}
