package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind_Transient(t *testing.T) {
	assert.True(t, ErrKindTimeout.Transient())
	assert.True(t, ErrKindRateLimited.Transient())
	assert.True(t, ErrKindProviderUnavail.Transient())
	assert.True(t, ErrKindBackendError.Transient())

	assert.False(t, ErrKindSchemaValidation.Transient())
	assert.False(t, ErrKindInvalidInput.Transient())
	assert.False(t, ErrKindUnsafe.Transient())
	assert.False(t, ErrKindNotFound.Transient())
	assert.False(t, ErrKindAmbiguousMatch.Transient())
}

func TestAggregateStatus_AllSucceeded(t *testing.T) {
	outcomes := []ExecutionOutcome{
		{Status: ExecStatusSuccess, AffectedEventIDs: []string{"a"}},
		{Status: ExecStatusSuccess, AffectedEventIDs: []string{"b"}},
	}
	assert.Equal(t, ExecStatusSuccess, AggregateStatus(outcomes))
}

func TestAggregateStatus_Partial(t *testing.T) {
	outcomes := []ExecutionOutcome{
		{Status: ExecStatusSuccess, AffectedEventIDs: []string{"a"}},
		{Status: ExecStatusBackendError, AffectedEventIDs: []string{"b"}, ErrorDetail: "backend unavailable"},
		{Status: ExecStatusSuccess, AffectedEventIDs: []string{"c"}},
	}
	assert.Equal(t, ExecStatusPartial, AggregateStatus(outcomes))
}

func TestAggregateStatus_NoneSucceeded(t *testing.T) {
	outcomes := []ExecutionOutcome{
		{Status: ExecStatusBackendError, AffectedEventIDs: []string{"a"}},
	}
	assert.Equal(t, ExecStatusBackendError, AggregateStatus(outcomes))
}

func TestAggregateStatus_Empty(t *testing.T) {
	assert.Equal(t, ExecStatusNotFound, AggregateStatus(nil))
}

func TestAggregateStatus_LoneOutcomeKeepsItsStatus(t *testing.T) {
	ambiguous := []ExecutionOutcome{
		{Status: ExecStatusAmbiguousMatch, AffectedEventIDs: []string{"a", "b"}},
	}
	assert.Equal(t, ExecStatusAmbiguousMatch, AggregateStatus(ambiguous))

	missing := []ExecutionOutcome{{Status: ExecStatusNotFound}}
	assert.Equal(t, ExecStatusNotFound, AggregateStatus(missing))
}

func TestValidationResult_Accepted(t *testing.T) {
	ok := ValidationResult{IsSafe: true, IsValid: true, ConfidenceScore: 0.9}
	assert.True(t, ok.Accepted(0.7))

	lowConfidence := ValidationResult{IsSafe: true, IsValid: true, ConfidenceScore: 0.6}
	assert.False(t, lowConfidence.Accepted(0.7))

	unsafe := ValidationResult{IsSafe: false, IsValid: true, ConfidenceScore: 0.95}
	assert.False(t, unsafe.Accepted(0.7))

	atThreshold := ValidationResult{IsSafe: true, IsValid: true, ConfidenceScore: 0.7}
	assert.True(t, atThreshold.Accepted(0.7))
}

func TestClassificationResult_Accepted(t *testing.T) {
	ok := ClassificationResult{HasIntent: true, RequestType: RequestTypeCreate, ConfidenceScore: 0.85}
	assert.True(t, ok.Accepted(0.7))

	noIntent := ClassificationResult{HasIntent: false, RequestType: RequestTypeUnknown, ConfidenceScore: 0.9}
	assert.False(t, noIntent.Accepted(0.7))

	unknownType := ClassificationResult{HasIntent: true, RequestType: RequestTypeUnknown, ConfidenceScore: 0.9}
	assert.False(t, unknownType.Accepted(0.7))
}

func TestParseRequestType(t *testing.T) {
	assert.Equal(t, RequestTypeCreate, ParseRequestType("create"))
	assert.Equal(t, RequestTypeUpdate, ParseRequestType(" Update "))
	assert.Equal(t, RequestTypeDelete, ParseRequestType("DELETE"))
	assert.Equal(t, RequestTypeLookup, ParseRequestType("lookup"))
	assert.Equal(t, RequestTypeUnknown, ParseRequestType("reschedule"))
	assert.Equal(t, RequestTypeUnknown, ParseRequestType(""))
}
