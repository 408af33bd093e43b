// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/calendar-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintValidation outputs the validation stage's safety and well-formedness
// judgment.
func (p *Printer) PrintValidation(res *types.ValidationResult) {
	if res == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Safe:        %s\n", yesNo(res.IsSafe)))
	sb.WriteString(fmt.Sprintf("Valid:       %s\n", yesNo(res.IsValid)))
	sb.WriteString(fmt.Sprintf("Confidence:  %.2f\n", res.ConfidenceScore))
	if res.InvalidReason != "" {
		sb.WriteString(fmt.Sprintf("Reason:      %s\n", res.InvalidReason))
	}

	if len(res.RiskFlags) > 0 {
		sb.WriteString("\nRisk Flags:\n")
		count := min(len(res.RiskFlags), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", res.RiskFlags[i]))
		}
		if len(res.RiskFlags) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(res.RiskFlags)-maxItemsToShow))
		}
	}

	p.printBox("VALIDATION JUDGMENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintClassification outputs the classified intent.
func (p *Printer) PrintClassification(res *types.ClassificationResult) {
	if res == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Intent:      %s\n", yesNo(res.HasIntent)))
	sb.WriteString(fmt.Sprintf("Type:        %s\n", res.RequestType))
	sb.WriteString(fmt.Sprintf("Bulk:        %s\n", yesNo(res.IsBulkOperation)))
	sb.WriteString(fmt.Sprintf("Confidence:  %.2f", res.ConfidenceScore))

	p.printBox("CLASSIFIED INTENT", sb.String())
}

// PrintCreateDetails outputs the extracted event field set before execution.
func (p *Printer) PrintCreateDetails(details *types.CreateEventDetails) {
	if details == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:     %s\n", details.Title))
	sb.WriteString(fmt.Sprintf("Start:     %s\n", timeLabel(details.Start)))
	sb.WriteString(fmt.Sprintf("End:       %s\n", timeLabel(details.End)))
	if details.Location != "" {
		sb.WriteString(fmt.Sprintf("Location:  %s\n", details.Location))
	}

	if len(details.Attendees) > 0 {
		sb.WriteString("\nAttendees:\n")
		count := min(len(details.Attendees), maxItemsToShow)
		for i := 0; i < count; i++ {
			att := details.Attendees[i]
			sb.WriteString(fmt.Sprintf("  • %s", att.Email))
			if att.DisplayName != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", att.DisplayName))
			}
			sb.WriteString("\n")
		}
		if len(details.Attendees) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(details.Attendees)-maxItemsToShow))
		}
	}

	appendIssues(&sb, details.ParsingIssues)

	p.printBox("EXTRACTED EVENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintLookupCriteria outputs how the target events will be found.
func (p *Printer) PrintLookupCriteria(criteria *types.LookupCriteria) {
	if criteria == nil {
		return
	}

	var sb strings.Builder
	if criteria.EventID != "" {
		sb.WriteString(fmt.Sprintf("Event ID:  %s\n", criteria.EventID))
	}
	if w := criteria.TimeWindow; w != nil {
		sb.WriteString(fmt.Sprintf("Center:    %s\n", timeLabel(w.Center)))
		sb.WriteString(fmt.Sprintf("Buffer:    ±%d min\n", w.BufferMinutes))
		if w.OriginalReference != "" {
			sb.WriteString(fmt.Sprintf("Phrase:    %q\n", w.OriginalReference))
		}
	}
	if len(criteria.ContextTerms) > 0 {
		sb.WriteString(fmt.Sprintf("Terms:     %s\n", strings.Join(criteria.ContextTerms, ", ")))
	}
	if criteria.Changes != nil {
		sb.WriteString(fmt.Sprintf("Changes:   %s\n", changedFields(criteria.Changes)))
	}

	appendIssues(&sb, criteria.ParsingIssues)

	p.printBox("LOOKUP CRITERIA", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintOutcome outputs the terminal state and per-action results.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintOutcome(outcome *types.PipelineOutcome) {
	if outcome == nil {
		return
	}

	if outcome.State == types.StateCompleted && outcome.ErrorKind == "" {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, fmt.Sprintf("✅ COMPLETED (%d action(s))", len(outcome.Results)))
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("State:   %s\n", outcome.State))
	sb.WriteString(fmt.Sprintf("Stage:   %s\n", outcome.StageReached))
	if outcome.ErrorKind != "" {
		sb.WriteString(fmt.Sprintf("Kind:    %s\n", outcome.ErrorKind))
	}
	if outcome.Reason != "" {
		sb.WriteString(fmt.Sprintf("Reason:  %s\n", outcome.Reason))
	}

	if len(outcome.Results) > 0 {
		sb.WriteString("\nResults:\n")
		count := min(len(outcome.Results), maxItemsToShow)
		for i := 0; i < count; i++ {
			r := outcome.Results[i]
			marker := "✓"
			if r.Status != types.ExecStatusSuccess {
				marker = "⚠"
			}
			sb.WriteString(fmt.Sprintf("  %s %s", marker, r.Status))
			if len(r.AffectedEventIDs) > 0 {
				ids := strings.Join(r.AffectedEventIDs, ", ")
				if len(ids) > 30 {
					ids = ids[:27] + "..."
				}
				sb.WriteString(fmt.Sprintf(" [%s]", ids))
			}
			sb.WriteString("\n")
			if r.ErrorDetail != "" {
				detail := r.ErrorDetail
				if len(detail) > 45 {
					detail = detail[:42] + "..."
				}
				sb.WriteString(fmt.Sprintf("    %s\n", detail))
			}
		}
		if len(outcome.Results) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(outcome.Results)-maxItemsToShow))
		}
	}

	p.printBox("PIPELINE OUTCOME", strings.TrimSuffix(sb.String(), "\n"))
}

func appendIssues(sb *strings.Builder, issues []string) {
	if len(issues) == 0 {
		return
	}
	sb.WriteString("\nParsing Issues:\n")
	count := min(len(issues), maxItemsToShow)
	for i := 0; i < count; i++ {
		issue := issues[i]
		if len(issue) > 50 {
			issue = issue[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("  ⚠ %s\n", issue))
	}
	if len(issues) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(issues)-maxItemsToShow))
	}
}

func changedFields(c *types.EventChanges) string {
	var fields []string
	if c.Title != nil {
		fields = append(fields, "title")
	}
	if c.Start != nil {
		fields = append(fields, "start")
	}
	if c.End != nil {
		fields = append(fields, "end")
	}
	if c.Description != nil {
		fields = append(fields, "description")
	}
	if c.Location != nil {
		fields = append(fields, "location")
	}
	if len(c.Attendees) > 0 {
		fields = append(fields, "attendees")
	}
	if len(fields) == 0 {
		return "(none)"
	}
	return strings.Join(fields, ", ")
}

func timeLabel(s types.TimeSpec) string {
	if s.IsAllDay() {
		return s.Date + " (all day)"
	}
	return s.DateTime
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
