package types

import "time"

// Stage names the pipeline stage a request is in or stopped at.
type Stage string

const (
	StageValidation     Stage = "validation"
	StageClassification Stage = "classification"
	StageRouting        Stage = "routing"
	StageExtraction     Stage = "extraction"
	StageExecution      Stage = "execution"
)

// TerminalState is the final disposition of a pipeline run.
type TerminalState string

const (
	// StateCompleted means every stage ran and the backend action finished.
	StateCompleted TerminalState = "completed"
	// StateRejected means a stage made a legitimate negative judgment:
	// unsafe or malformed text, missing intent, or confidence below gate.
	StateRejected TerminalState = "rejected"
	// StateFailed means infrastructure malfunctioned: capability calls
	// exhausted retries, the backend was unreachable, or the deadline hit.
	StateFailed TerminalState = "failed"
)

// ErrorKind classifies why a run stopped short of Completed. Validation and
// classification kinds accompany Rejected; extraction, execution and system
// kinds accompany Rejected or Failed depending on whether the input or the
// infrastructure was at fault.
type ErrorKind string

const (
	// Validation
	ErrKindUnsafe        ErrorKind = "unsafe"
	ErrKindInvalid       ErrorKind = "invalid"
	ErrKindLowConfidence ErrorKind = "low_confidence"
	ErrKindInvalidInput  ErrorKind = "invalid_input"

	// Classification
	ErrKindAmbiguousIntent ErrorKind = "ambiguous_intent"
	ErrKindUnsupportedType ErrorKind = "unsupported_type"

	// Extraction
	ErrKindMissingRequiredField ErrorKind = "missing_required_field"
	ErrKindTimezoneUnresolvable ErrorKind = "timezone_unresolvable"
	ErrKindMalformedOutput      ErrorKind = "malformed_output"

	// Execution
	ErrKindNotFound       ErrorKind = "not_found"
	ErrKindAmbiguousMatch ErrorKind = "ambiguous_match"
	ErrKindBackendError   ErrorKind = "backend_error"

	// System
	ErrKindTimeout          ErrorKind = "timeout"
	ErrKindRateLimited      ErrorKind = "rate_limited"
	ErrKindSchemaValidation ErrorKind = "schema_validation_failed"
	ErrKindProviderUnavail  ErrorKind = "provider_unavailable"
	ErrKindMissingVariable  ErrorKind = "missing_variable"
)

// Transient reports whether a failure of this kind is worth retrying.
// Schema validation failures never are: re-submitting an identical prompt to
// a stateless capability reproduces the identical answer.
func (k ErrorKind) Transient() bool {
	switch k {
	case ErrKindTimeout, ErrKindRateLimited, ErrKindProviderUnavail, ErrKindBackendError:
		return true
	}
	return false
}

// ExecutionStatus is the per-action result of one backend operation.
type ExecutionStatus string

const (
	ExecStatusSuccess        ExecutionStatus = "success"
	ExecStatusPartial        ExecutionStatus = "partial"
	ExecStatusNotFound       ExecutionStatus = "not_found"
	ExecStatusAmbiguousMatch ExecutionStatus = "ambiguous_match"
	ExecStatusBackendError   ExecutionStatus = "backend_error"
)

// EventSummary is the compact read model of a backend event carried inside
// lookup and update outcomes.
type EventSummary struct {
	ID       string   `json:"id"`
	Title    string   `json:"title,omitempty"`
	Start    TimeSpec `json:"start"`
	End      TimeSpec `json:"end"`
	Location string   `json:"location,omitempty"`
	HTMLLink string   `json:"html_link,omitempty"`
}

// ExecutionOutcome records one backend action attempt. Bulk operations emit
// one outcome per matched event so partial failures stay visible.
type ExecutionOutcome struct {
	Status           ExecutionStatus `json:"status"`
	AffectedEventIDs []string        `json:"affected_event_ids,omitempty"`
	ErrorDetail      string          `json:"error_detail,omitempty"`
	HTMLLink         string          `json:"html_link,omitempty"`
	Events           []EventSummary  `json:"events,omitempty"`
}

// AggregateStatus folds an outcome list into a single status. A lone outcome
// keeps its own status; a bulk list is success when all succeeded,
// backend_error when none did, partial otherwise.
func AggregateStatus(outcomes []ExecutionOutcome) ExecutionStatus {
	if len(outcomes) == 0 {
		return ExecStatusNotFound
	}
	if len(outcomes) == 1 {
		return outcomes[0].Status
	}
	succeeded := 0
	for _, o := range outcomes {
		if o.Status == ExecStatusSuccess {
			succeeded++
		}
	}
	switch succeeded {
	case len(outcomes):
		return ExecStatusSuccess
	case 0:
		return ExecStatusBackendError
	default:
		return ExecStatusPartial
	}
}

// PipelineOutcome is the full audit record of one request's trip through the
// pipeline: terminal state, the stage that decided it, stage artifacts, and
// per-action execution outcomes.
type PipelineOutcome struct {
	RequestID      string                `json:"request_id"`
	RawText        string                `json:"raw_text"`
	State          TerminalState         `json:"state"`
	StageReached   Stage                 `json:"stage_reached"`
	Reason         string                `json:"reason,omitempty"`
	ErrorKind      ErrorKind             `json:"error_kind,omitempty"`
	Validation     *ValidationResult     `json:"validation,omitempty"`
	Classification *ClassificationResult `json:"classification,omitempty"`
	CreateDetails  *CreateEventDetails   `json:"create_details,omitempty"`
	Lookup         *LookupCriteria       `json:"lookup,omitempty"`
	Results        []ExecutionOutcome    `json:"results,omitempty"`
	StartedAt      time.Time             `json:"started_at"`
	FinishedAt     time.Time             `json:"finished_at"`
}

// Rejected reports whether the run ended in a legitimate negative judgment.
func (o PipelineOutcome) Rejected() bool { return o.State == StateRejected }

// Failed reports whether the run ended in an infrastructure failure.
func (o PipelineOutcome) Failed() bool { return o.State == StateFailed }
