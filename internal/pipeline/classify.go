package pipeline

import (
	"context"
	"fmt"

	"github.com/jonathan/calendar-agent/internal/llm"
	"github.com/jonathan/calendar-agent/internal/prompts"
	"github.com/jonathan/calendar-agent/internal/schemas"
	"github.com/jonathan/calendar-agent/internal/types"
	"github.com/jonathan/calendar-agent/internal/validation"
)

// classify asks the model which calendar operation the text names and whether
// it addresses every event in a window rather than a single one. It receives
// the sanitized text, not the raw request.
func (p *Pipeline) classify(ctx context.Context, text string) (*types.ClassificationResult, error) {
	prompt, err := prompts.Render(promptFile, "classify-request", map[string]string{
		"Request": validation.QuoteExternalContentWithLabel(text, "calendar request"),
	})
	if err != nil {
		return nil, err
	}

	var res types.ClassificationResult
	if err := p.model.CompleteJSON(ctx, prompt, schemas.ClassifyResponse, llm.TierLite, &res); err != nil {
		return nil, err
	}
	res.RequestType = types.ParseRequestType(string(res.RequestType))
	return &res, nil
}

// classificationRejection maps a gated-out classification to its rejection,
// or nil when the intent is actionable and confident.
func classificationRejection(res *types.ClassificationResult, threshold float64) *rejection {
	if res.Accepted(threshold) {
		return nil
	}
	switch {
	case !res.HasIntent:
		return &rejection{kind: types.ErrKindAmbiguousIntent, reason: "no calendar intent detected"}
	case !res.RequestType.Actionable():
		return &rejection{
			kind:   types.ErrKindUnsupportedType,
			reason: fmt.Sprintf("request type %q is not a supported calendar operation", res.RequestType),
		}
	default:
		return &rejection{
			kind:   types.ErrKindAmbiguousIntent,
			reason: fmt.Sprintf("classification confidence %.2f below threshold %.2f", res.ConfidenceScore, threshold),
		}
	}
}
