package pipeline

import (
	"context"
	"strings"

	"github.com/jonathan/calendar-agent/internal/types"
	"github.com/jonathan/calendar-agent/internal/validation"
)

// Single-stage entry points for the per-stage CLI commands. Each applies the
// same pre-processing as Run so the artifact matches what a full run would
// produce, but no confidence gate is applied and nothing is executed.

// Rejection is a stage's negative judgment, surfaced as data when a stage
// runs standalone.
type Rejection struct {
	Kind   types.ErrorKind `json:"kind"`
	Reason string          `json:"reason"`
}

func (r *rejection) export() *Rejection {
	if r == nil {
		return nil
	}
	return &Rejection{Kind: r.kind, Reason: r.reason}
}

// Validate judges one request's safety and well-formedness, heuristic flags
// included.
func (p *Pipeline) Validate(ctx context.Context, text string) (*types.ValidationResult, error) {
	raw := strings.TrimSpace(text)
	res, err := p.validate(ctx, raw)
	if err != nil {
		return nil, err
	}
	mergeRiskFlags(res, validation.CheckBasicHeuristics(raw))
	return res, nil
}

// Classify names one request's intent.
func (p *Pipeline) Classify(ctx context.Context, text string) (*types.ClassificationResult, error) {
	return p.classify(ctx, sanitizeText(text))
}

// ExtractCreate drafts the normalized event field set a create request would
// execute with.
func (p *Pipeline) ExtractCreate(ctx context.Context, text string, ref types.Reference) (*types.CreateEventDetails, *Rejection, error) {
	if ref.Instant.IsZero() {
		ref = types.Now(p.opts.Timezone)
	}
	details, rej, err := p.extractCreate(ctx, sanitizeText(text), ref)
	return details, rej.export(), err
}

// ExtractLookup drafts the criteria for finding existing events, as a request
// of the given type would. Only updates draft a changes patch; bulk drops
// context terms.
func (p *Pipeline) ExtractLookup(ctx context.Context, text string, ref types.Reference, requestType types.RequestType, bulk bool) (*types.LookupCriteria, *Rejection, error) {
	if ref.Instant.IsZero() {
		ref = types.Now(p.opts.Timezone)
	}
	class := &types.ClassificationResult{
		HasIntent:       true,
		RequestType:     requestType,
		IsBulkOperation: bulk,
		ConfidenceScore: 1,
	}
	criteria, rej, err := p.extractLookup(ctx, sanitizeText(text), ref, class)
	return criteria, rej.export(), err
}

func sanitizeText(text string) string {
	return validation.StripInjectionAttempts(strings.TrimSpace(text))
}
