// Package llm - errors.go provides the typed failure surface of the
// language-model capability.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"google.golang.org/api/googleapi"

	"github.com/jonathan/calendar-agent/internal/types"
)

// CapabilityError represents a typed failure of a model call. The Kind
// drives retry policy: transient kinds are retried with backoff, the rest
// escalate immediately.
type CapabilityError struct {
	Kind    types.ErrorKind
	Op      string
	Message string
	Cause   error
}

func (e *CapabilityError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("model call %s: %s (%s): %v", e.Op, e.Message, e.Kind, e.Cause)
	}
	return fmt.Sprintf("model call %s: %s (%s)", e.Op, e.Message, e.Kind)
}

func (e *CapabilityError) Unwrap() error {
	return e.Cause
}

// Transient reports whether retrying the call could change the outcome.
func (e *CapabilityError) Transient() bool {
	return e.Kind.Transient()
}

// classifyKind maps a raw provider error onto the capability error taxonomy.
func classifyKind(err error) types.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return types.ErrKindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return types.ErrKindTimeout
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			return types.ErrKindRateLimited
		case apiErr.Code >= 500:
			return types.ErrKindProviderUnavail
		case apiErr.Code == 408:
			return types.ErrKindTimeout
		}
	}
	return types.ErrKindProviderUnavail
}

// wrapCapability builds a CapabilityError around a raw provider error.
func wrapCapability(op string, err error) *CapabilityError {
	return &CapabilityError{
		Kind:    classifyKind(err),
		Op:      op,
		Message: "provider request failed",
		Cause:   err,
	}
}
