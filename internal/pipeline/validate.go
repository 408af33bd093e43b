package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/calendar-agent/internal/llm"
	"github.com/jonathan/calendar-agent/internal/prompts"
	"github.com/jonathan/calendar-agent/internal/schemas"
	"github.com/jonathan/calendar-agent/internal/types"
	"github.com/jonathan/calendar-agent/internal/validation"
)

// validate asks the model for the safety and well-formedness judgment on the
// raw request text. The text enters the prompt quoted as data so embedded
// instructions get analyzed, not obeyed.
func (p *Pipeline) validate(ctx context.Context, raw string) (*types.ValidationResult, error) {
	prompt, err := prompts.Render(promptFile, "validate-request", map[string]string{
		"Request": validation.QuoteExternalContentWithLabel(raw, "calendar request"),
	})
	if err != nil {
		return nil, err
	}

	var res types.ValidationResult
	if err := p.model.CompleteJSON(ctx, prompt, schemas.ValidateResponse, llm.TierLite, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// mergeRiskFlags folds heuristic keyword hits into the model's risk flags so
// the audit record carries both signals. Heuristics never veto the model's
// safety judgment.
func mergeRiskFlags(res *types.ValidationResult, check *validation.InjectionCheckResult) {
	if check == nil || check.IsSafe {
		return
	}
	for _, kw := range check.DetectedKeywords {
		flag := "heuristic:" + kw
		if !containsString(res.RiskFlags, flag) {
			res.RiskFlags = append(res.RiskFlags, flag)
		}
	}
}

// validationRejection maps a gated-out validation result to its rejection, or
// nil when the request may proceed. Safety outranks well-formedness and both
// outrank confidence.
func validationRejection(res *types.ValidationResult, threshold float64) *rejection {
	if res.Accepted(threshold) {
		return nil
	}
	switch {
	case !res.IsSafe:
		reason := "request judged unsafe"
		if len(res.RiskFlags) > 0 {
			reason += ": " + strings.Join(res.RiskFlags, ", ")
		}
		return &rejection{kind: types.ErrKindUnsafe, reason: reason}
	case !res.IsValid:
		reason := res.InvalidReason
		if reason == "" {
			reason = "text is not a decipherable calendar request"
		}
		return &rejection{kind: types.ErrKindInvalid, reason: reason}
	default:
		return &rejection{
			kind:   types.ErrKindLowConfidence,
			reason: fmt.Sprintf("validation confidence %.2f below threshold %.2f", res.ConfidenceScore, threshold),
		}
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
