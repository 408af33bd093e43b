// Package pipeline turns a natural-language calendar request into a executed
// calendar action through a sequential, confidence-gated stage machine:
// Validate -> Classify -> Route -> Extract -> Execute. Every run terminates in
// exactly one of three states: Completed (the backend action ran), Rejected
// (a stage made a legitimate negative judgment about the input) or Failed
// (a capability malfunctioned). The caller always receives a well-formed
// PipelineOutcome; judged-bad input is never surfaced as an error.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/calendar-agent/internal/calendar"
	"github.com/jonathan/calendar-agent/internal/llm"
	"github.com/jonathan/calendar-agent/internal/observability"
	"github.com/jonathan/calendar-agent/internal/prompts"
	"github.com/jonathan/calendar-agent/internal/types"
	"github.com/jonathan/calendar-agent/internal/validation"
)

// promptFile holds the stage prompt templates.
const promptFile = "pipeline.json"

// Completer is the language-model capability the stages call. llm.Completer
// implements it; tests substitute a scripted fake.
type Completer interface {
	CompleteJSON(ctx context.Context, prompt, schemaName string, tier llm.ModelTier, out interface{}) error
}

// Options is the explicit, immutable configuration of a pipeline instance.
// Thresholds and defaults are passed in at construction so behavior is
// reproducible in tests; nothing is read from ambient state.
type Options struct {
	// ConfidenceThreshold gates validation and classification (default 0.7).
	ConfidenceThreshold float64
	// DefaultDuration is applied when a timed create names no end (default 60m).
	DefaultDuration time.Duration
	// Timezone is the system IANA zone, the last resort of zone resolution.
	Timezone string
	// AttendeeDomain qualifies synthesized attendee addresses.
	AttendeeDomain string
	// Deadline bounds one full run; zero disables the per-run timeout.
	Deadline time.Duration
	// MaxMatches caps how many events a lookup window may resolve to.
	MaxMatches int64
	// Verbose prints stage artifacts through Printer.
	Verbose bool
	Printer *observability.Printer
}

func (o Options) withDefaults() Options {
	if o.ConfidenceThreshold <= 0 {
		o.ConfidenceThreshold = 0.7
	}
	if o.DefaultDuration <= 0 {
		o.DefaultDuration = 60 * time.Minute
	}
	if o.Timezone == "" {
		o.Timezone = "UTC"
	}
	if o.AttendeeDomain == "" {
		o.AttendeeDomain = "example.com"
	}
	if o.MaxMatches <= 0 {
		o.MaxMatches = 50
	}
	return o
}

// Pipeline runs requests against a model capability and a calendar backend.
// One instance is safe for concurrent use; each Run is an independent,
// strictly sequential state machine.
type Pipeline struct {
	model   Completer
	backend calendar.Backend
	opts    Options
}

// New builds a pipeline with the given capabilities and options.
func New(model Completer, backend calendar.Backend, opts Options) *Pipeline {
	return &Pipeline{
		model:   model,
		backend: backend,
		opts:    opts.withDefaults(),
	}
}

// rejection is a stage's negative judgment about the input. It resolves into
// a Rejected outcome, never into a returned error.
type rejection struct {
	kind   types.ErrorKind
	reason string
}

// Run drives one request through the stage machine and always returns a
// terminal outcome. ref anchors relative time expressions; a zero ref is
// replaced with the current instant in the configured system timezone.
func (p *Pipeline) Run(ctx context.Context, rec types.RequestRecord, ref types.Reference) *types.PipelineOutcome {
	outcome := &types.PipelineOutcome{
		RequestID: rec.ID.String(),
		RawText:   rec.RawText,
		StartedAt: time.Now().UTC(),
	}
	defer func() {
		outcome.FinishedAt = time.Now().UTC()
	}()

	if p.opts.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Deadline)
		defer cancel()
	}
	if ref.Instant.IsZero() {
		ref = types.Now(p.opts.Timezone)
	}

	// Validation.
	outcome.StageReached = types.StageValidation
	raw := strings.TrimSpace(rec.RawText)
	if raw == "" {
		return p.reject(outcome, types.ErrKindInvalidInput, "request text is empty")
	}

	heuristics := validation.CheckBasicHeuristics(raw)
	validation.LogInjectionWarning(heuristics, "request "+rec.ID.String())

	vres, err := p.validate(ctx, raw)
	if err != nil {
		return p.fail(outcome, err)
	}
	mergeRiskFlags(vres, heuristics)
	outcome.Validation = vres
	p.printVerbose(func(pr *observability.Printer) { pr.PrintValidation(vres) })
	if rej := validationRejection(vres, p.opts.ConfidenceThreshold); rej != nil {
		return p.reject(outcome, rej.kind, rej.reason)
	}

	sanitized := validation.StripInjectionAttempts(raw)

	// Classification.
	outcome.StageReached = types.StageClassification
	cres, err := p.classify(ctx, sanitized)
	if err != nil {
		return p.fail(outcome, err)
	}
	outcome.Classification = cres
	p.printVerbose(func(pr *observability.Printer) { pr.PrintClassification(cres) })
	if rej := classificationRejection(cres, p.opts.ConfidenceThreshold); rej != nil {
		return p.reject(outcome, rej.kind, rej.reason)
	}

	// Routing. Unreachable intents are kept as an explicit transition so the
	// outcome names the stage if the gate invariant is ever broken.
	outcome.StageReached = types.StageRouting
	route, err := routeFor(cres.RequestType)
	if err != nil {
		return p.reject(outcome, types.ErrKindUnsupportedType, err.Error())
	}

	// Extraction.
	outcome.StageReached = types.StageExtraction
	switch route.extractor {
	case extractorCreate:
		details, rej, err := p.extractCreate(ctx, sanitized, ref)
		if err != nil {
			return p.fail(outcome, err)
		}
		outcome.CreateDetails = details
		p.printVerbose(func(pr *observability.Printer) { pr.PrintCreateDetails(details) })
		if rej != nil {
			return p.reject(outcome, rej.kind, rej.reason)
		}
	case extractorLookup:
		criteria, rej, err := p.extractLookup(ctx, sanitized, ref, cres)
		if err != nil {
			return p.fail(outcome, err)
		}
		outcome.Lookup = criteria
		p.printVerbose(func(pr *observability.Printer) { pr.PrintLookupCriteria(criteria) })
		if rej != nil {
			return p.reject(outcome, rej.kind, rej.reason)
		}
	}

	// Execution. Partial bulk results are preserved even when the stage
	// returns an error (deadline mid-batch, total backend failure).
	outcome.StageReached = types.StageExecution
	var results []types.ExecutionOutcome
	if route.extractor == extractorCreate {
		results, err = p.executeCreate(ctx, outcome.CreateDetails)
	} else {
		results, err = p.executeLookupAction(ctx, cres.RequestType, cres.IsBulkOperation, outcome.Lookup)
	}
	outcome.Results = results
	if err != nil {
		return p.fail(outcome, err)
	}

	return p.complete(outcome)
}

// reject resolves a stage's negative judgment into the Rejected terminal
// state. Later stages are never invoked.
func (p *Pipeline) reject(outcome *types.PipelineOutcome, kind types.ErrorKind, reason string) *types.PipelineOutcome {
	outcome.State = types.StateRejected
	outcome.ErrorKind = kind
	outcome.Reason = reason
	return outcome
}

// fail resolves a capability malfunction into the Failed terminal state,
// classifying the error into the outcome's error kind.
func (p *Pipeline) fail(outcome *types.PipelineOutcome, err error) *types.PipelineOutcome {
	outcome.State = types.StateFailed
	outcome.ErrorKind = kindOf(err)
	outcome.Reason = err.Error()
	return outcome
}

// complete folds the execution results into the terminal state.
func (p *Pipeline) complete(outcome *types.PipelineOutcome) *types.PipelineOutcome {
	switch types.AggregateStatus(outcome.Results) {
	case types.ExecStatusSuccess:
		outcome.State = types.StateCompleted
	case types.ExecStatusNotFound:
		outcome.State = types.StateCompleted
		outcome.ErrorKind = types.ErrKindNotFound
		outcome.Reason = "no events matched the request"
	case types.ExecStatusAmbiguousMatch:
		outcome.State = types.StateCompleted
		outcome.ErrorKind = types.ErrKindAmbiguousMatch
		outcome.Reason = "multiple events matched; refusing to act on an arbitrary one"
	case types.ExecStatusPartial:
		outcome.State = types.StateCompleted
		outcome.Reason = partialReason(outcome.Results)
	case types.ExecStatusBackendError:
		outcome.State = types.StateFailed
		outcome.ErrorKind = types.ErrKindBackendError
		outcome.Reason = "calendar backend rejected every action"
	}
	return outcome
}

func partialReason(results []types.ExecutionOutcome) string {
	failed := 0
	for _, r := range results {
		if r.Status != types.ExecStatusSuccess {
			failed++
		}
	}
	return fmt.Sprintf("%d of %d actions did not succeed", failed, len(results))
}

func (p *Pipeline) printVerbose(fn func(*observability.Printer)) {
	if p.opts.Verbose && p.opts.Printer != nil {
		fn(p.opts.Printer)
	}
}

// kindOf classifies a capability error into the outcome taxonomy. A deadline
// hit inside a backend call is still a timeout, so the context check runs
// before the backend classification.
func kindOf(err error) types.ErrorKind {
	var capErr *llm.CapabilityError
	if errors.As(err, &capErr) {
		return capErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return types.ErrKindTimeout
	}
	var missingVar *prompts.MissingVariableError
	if errors.As(err, &missingVar) {
		return types.ErrKindMissingVariable
	}
	var backendErr *calendar.BackendError
	if errors.As(err, &backendErr) {
		if backendErr.NotFound {
			return types.ErrKindNotFound
		}
		return types.ErrKindBackendError
	}
	return types.ErrKindProviderUnavail
}
