package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/calendar-agent/internal/llm"
	"github.com/jonathan/calendar-agent/internal/prompts"
	"github.com/jonathan/calendar-agent/internal/schemas"
	"github.com/jonathan/calendar-agent/internal/timeutil"
	"github.com/jonathan/calendar-agent/internal/types"
	"github.com/jonathan/calendar-agent/internal/validation"
)

// createDraft mirrors the create_details response schema. Post-processing
// turns it into a validated CreateEventDetails; the draft itself never leaves
// the extraction stage.
type createDraft struct {
	Title             string         `json:"title"`
	Start             types.TimeSpec `json:"start"`
	End               types.TimeSpec `json:"end"`
	Description       string         `json:"description"`
	Location          string         `json:"location"`
	Attendees         []string       `json:"attendees"`
	SpansMultipleDays bool           `json:"spans_multiple_days"`
	ConfidenceScore   float64        `json:"confidence_score"`
	ParsingIssues     []string       `json:"parsing_issues"`
	Reasoning         string         `json:"reasoning"`
}

// extractCreate drafts the full field set for a new event and repairs it
// deterministically: one timezone resolution applied to both endpoints, a
// default duration when no end was stated, the exclusive-end rule for all-day
// events, and attendee normalization. Every assumption lands in
// parsing_issues.
func (p *Pipeline) extractCreate(ctx context.Context, text string, ref types.Reference) (*types.CreateEventDetails, *rejection, error) {
	zone, zoneSource := timeutil.ResolveZone(text, p.opts.Timezone)
	if _, err := time.LoadLocation(zone); err != nil {
		return nil, &rejection{
			kind:   types.ErrKindTimezoneUnresolvable,
			reason: fmt.Sprintf("timezone %q does not resolve to an IANA zone", zone),
		}, nil
	}

	prompt, err := prompts.Render(promptFile, "extract-create", map[string]string{
		"CurrentDateTime": ref.Spec().DateTime,
		"Timezone":        zone,
		"Request":         validation.QuoteExternalContentWithLabel(text, "calendar request"),
	})
	if err != nil {
		return nil, nil, err
	}

	var draft createDraft
	if err := p.model.CompleteJSON(ctx, prompt, schemas.CreateDetails, llm.TierStandard, &draft); err != nil {
		return nil, nil, err
	}

	return p.finishCreateDraft(draft, zone, zoneSource)
}

func (p *Pipeline) finishCreateDraft(draft createDraft, zone string, zoneSource timeutil.ZoneSource) (*types.CreateEventDetails, *rejection, error) {
	issues := append([]string(nil), draft.ParsingIssues...)

	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return nil, &rejection{
			kind:   types.ErrKindMissingRequiredField,
			reason: "no event title could be determined from the request",
		}, nil
	}
	if draft.Start.IsZero() {
		return nil, &rejection{
			kind:   types.ErrKindMissingRequiredField,
			reason: "no start time could be determined from the request",
		}, nil
	}

	start, repaired, err := timeutil.EnsureZone(draft.Start, zone)
	if err != nil {
		return nil, nil, draftError("extract_create", "drafted start is not a valid timestamp", err)
	}
	if repaired {
		issues = append(issues, fmt.Sprintf("start re-anchored to %s", zone))
	}

	end := draft.End
	if end.IsZero() {
		end, err = timeutil.DefaultEnd(start, p.opts.DefaultDuration)
		if err != nil {
			return nil, nil, draftError("extract_create", "could not derive a default end", err)
		}
		if start.IsAllDay() {
			issues = append(issues, "no end stated; all-day event ends the next day")
		} else {
			issues = append(issues, fmt.Sprintf("no end stated; defaulted to %d minutes", int(p.opts.DefaultDuration.Minutes())))
		}
	} else {
		end, repaired, err = timeutil.EnsureZone(end, zone)
		if err != nil {
			return nil, nil, draftError("extract_create", "drafted end is not a valid timestamp", err)
		}
		if repaired {
			issues = append(issues, fmt.Sprintf("end re-anchored to %s", zone))
		}
	}

	if start.IsAllDay() && end.IsAllDay() {
		clamped, wasClamped, clampErr := timeutil.ClampAllDayEnd(start, end, draft.SpansMultipleDays)
		if clampErr != nil {
			return nil, nil, draftError("extract_create", "drafted all-day span is invalid", clampErr)
		}
		if wasClamped {
			issues = append(issues, "all-day end clamped to the day after start")
		}
		end = clamped
	}

	if zoneSource == timeutil.ZoneFromSystem && !start.IsAllDay() {
		issues = append(issues, fmt.Sprintf("timezone assumed from system default (%s)", zone))
	}

	details := &types.CreateEventDetails{
		Title:           title,
		Start:           start,
		End:             end,
		Description:     strings.TrimSpace(draft.Description),
		Location:        strings.TrimSpace(draft.Location),
		Attendees:       normalizeAttendees(draft.Attendees, p.opts.AttendeeDomain, &issues),
		ConfidenceScore: draft.ConfidenceScore,
		ParsingIssues:   issues,
		Reasoning:       draft.Reasoning,
	}
	if err := details.Validate(); err != nil {
		return nil, nil, draftError("extract_create", "drafted event is structurally invalid", err)
	}
	return details, nil, nil
}

// attendeeValidate guards model-drafted full addresses; synthesized locals
// always pass.
var attendeeValidate = validator.New()

// normalizeAttendees qualifies bare names under the configured domain, drops
// malformed addresses, and deduplicates by email with first mention winning.
func normalizeAttendees(raw []string, domain string, issues *[]string) []types.Attendee {
	var out []types.Attendee
	seen := make(map[string]bool)
	for _, r := range raw {
		att := types.NormalizeAttendee(r, domain)
		if att.Email == "" {
			continue
		}
		if err := attendeeValidate.Var(att.Email, "email"); err != nil {
			*issues = append(*issues, fmt.Sprintf("dropped malformed attendee %q", strings.TrimSpace(r)))
			continue
		}
		if seen[att.Email] {
			continue
		}
		seen[att.Email] = true
		if att.DisplayName != "" {
			*issues = append(*issues, fmt.Sprintf("inferred %s for attendee %q", att.Email, att.DisplayName))
		}
		out = append(out, att)
	}
	return out
}

// draftError types a structurally unusable model draft so the run fails as
// malformed_output rather than a generic provider error.
func draftError(op, msg string, cause error) error {
	return &llm.CapabilityError{
		Kind:    types.ErrKindMalformedOutput,
		Op:      op,
		Message: msg,
		Cause:   cause,
	}
}
