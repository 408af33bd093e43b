package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/calendar-agent/internal/llm"
	"github.com/jonathan/calendar-agent/internal/prompts"
	"github.com/jonathan/calendar-agent/internal/schemas"
	"github.com/jonathan/calendar-agent/internal/timeutil"
	"github.com/jonathan/calendar-agent/internal/types"
	"github.com/jonathan/calendar-agent/internal/validation"
)

// lookupDraft mirrors the lookup_criteria response schema.
type lookupDraft struct {
	EventID         string            `json:"event_id"`
	TimeWindow      *types.TimeWindow `json:"time_window"`
	ContextTerms    []string          `json:"context_terms"`
	Changes         *changesDraft     `json:"changes"`
	ConfidenceScore float64           `json:"confidence_score"`
	ParsingIssues   []string          `json:"parsing_issues"`
	Reasoning       string            `json:"reasoning"`
}

// changesDraft keeps update fields as pointers so absent and explicitly-empty
// values stay distinguishable.
type changesDraft struct {
	Title       *string         `json:"title"`
	Start       *types.TimeSpec `json:"start"`
	End         *types.TimeSpec `json:"end"`
	Description *string         `json:"description"`
	Location    *string         `json:"location"`
	Attendees   []string        `json:"attendees"`
}

// extractLookup drafts the criteria for finding existing events. Update,
// delete and lookup requests all pass through here; only updates carry a
// changes patch. Bulk operations get no context terms so the whole window is
// addressed.
func (p *Pipeline) extractLookup(ctx context.Context, text string, ref types.Reference, class *types.ClassificationResult) (*types.LookupCriteria, *rejection, error) {
	zone, _ := timeutil.ResolveZone(text, p.opts.Timezone)
	if _, err := time.LoadLocation(zone); err != nil {
		return nil, &rejection{
			kind:   types.ErrKindTimezoneUnresolvable,
			reason: fmt.Sprintf("timezone %q does not resolve to an IANA zone", zone),
		}, nil
	}

	termsKey := "context-terms-single"
	if class.IsBulkOperation {
		termsKey = "context-terms-bulk"
	}
	termsRule, err := prompts.Get(promptFile, termsKey)
	if err != nil {
		return nil, nil, err
	}

	prompt, err := prompts.Render(promptFile, "extract-lookup", map[string]string{
		"CurrentDateTime":  ref.Spec().DateTime,
		"Timezone":         zone,
		"ContextTermsRule": termsRule,
		"Request":          validation.QuoteExternalContentWithLabel(text, "calendar request"),
	})
	if err != nil {
		return nil, nil, err
	}

	var draft lookupDraft
	if err := p.model.CompleteJSON(ctx, prompt, schemas.LookupCriteria, llm.TierStandard, &draft); err != nil {
		return nil, nil, err
	}

	return p.finishLookupDraft(draft, zone, ref, class)
}

func (p *Pipeline) finishLookupDraft(draft lookupDraft, zone string, ref types.Reference, class *types.ClassificationResult) (*types.LookupCriteria, *rejection, error) {
	issues := append([]string(nil), draft.ParsingIssues...)

	eventID := strings.TrimSpace(draft.EventID)
	window := draft.TimeWindow
	if eventID == "" && window == nil {
		return nil, &rejection{
			kind:   types.ErrKindMissingRequiredField,
			reason: "no event identifier or time reference found in the request",
		}, nil
	}

	if window != nil {
		center, repaired, err := timeutil.EnsureZone(window.Center, zone)
		if err != nil {
			return nil, nil, draftError("extract_lookup", "drafted window center is not a valid timestamp", err)
		}
		if repaired {
			issues = append(issues, fmt.Sprintf("window center re-anchored to %s", zone))
		}

		w := *window
		w.Center = center
		normalized, note, err := timeutil.NormalizeWindow(w, types.Reference{Instant: ref.Instant, Timezone: zone})
		if err != nil {
			return nil, nil, draftError("extract_lookup", "drafted time window is invalid", err)
		}
		if note != "" {
			issues = append(issues, note)
		}
		window = &normalized
	}

	terms := normalizeContextTerms(draft.ContextTerms)
	if class.IsBulkOperation && len(terms) > 0 {
		issues = append(issues, "context terms dropped for bulk operation")
		terms = nil
	}

	var changes *types.EventChanges
	if class.RequestType == types.RequestTypeUpdate {
		ch, rej, err := p.finishChangesDraft(draft.Changes, zone, &issues)
		if err != nil {
			return nil, nil, err
		}
		if rej != nil {
			return nil, rej, nil
		}
		changes = ch
	} else if draft.Changes != nil {
		issues = append(issues, "drafted changes ignored for non-update request")
	}

	criteria := &types.LookupCriteria{
		EventID:         eventID,
		TimeWindow:      window,
		ContextTerms:    terms,
		Changes:         changes,
		Timezone:        zone,
		ConfidenceScore: draft.ConfidenceScore,
		ParsingIssues:   issues,
		Reasoning:       draft.Reasoning,
	}
	if err := criteria.Validate(); err != nil {
		return nil, nil, draftError("extract_lookup", "drafted lookup criteria are structurally invalid", err)
	}
	return criteria, nil, nil
}

// finishChangesDraft turns the drafted patch into a validated EventChanges.
// An update with nothing to apply is a rejection, not a failure: the request
// asked for a modification it never described.
func (p *Pipeline) finishChangesDraft(draft *changesDraft, zone string, issues *[]string) (*types.EventChanges, *rejection, error) {
	noChanges := &rejection{
		kind:   types.ErrKindMissingRequiredField,
		reason: "update request names no changes to apply",
	}
	if draft == nil {
		return nil, noChanges, nil
	}

	changes := &types.EventChanges{
		Title:       draft.Title,
		Description: draft.Description,
		Location:    draft.Location,
	}
	if draft.Start != nil {
		spec, repaired, err := timeutil.EnsureZone(*draft.Start, zone)
		if err != nil {
			return nil, nil, draftError("extract_lookup", "drafted new start is not a valid timestamp", err)
		}
		if repaired {
			*issues = append(*issues, fmt.Sprintf("new start re-anchored to %s", zone))
		}
		changes.Start = &spec
	}
	if draft.End != nil {
		spec, repaired, err := timeutil.EnsureZone(*draft.End, zone)
		if err != nil {
			return nil, nil, draftError("extract_lookup", "drafted new end is not a valid timestamp", err)
		}
		if repaired {
			*issues = append(*issues, fmt.Sprintf("new end re-anchored to %s", zone))
		}
		changes.End = &spec
	}
	if len(draft.Attendees) > 0 {
		changes.Attendees = normalizeAttendees(draft.Attendees, p.opts.AttendeeDomain, issues)
	}

	if changes.Empty() {
		return nil, noChanges, nil
	}
	return changes, nil, nil
}

// normalizeContextTerms lowercases, trims and dedupes drafted terms, keeping
// at most two.
func normalizeContextTerms(raw []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range raw {
		term := strings.ToLower(strings.TrimSpace(r))
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		out = append(out, term)
		if len(out) == 2 {
			break
		}
	}
	return out
}
