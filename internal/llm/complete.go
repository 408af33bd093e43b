// Package llm - complete.go layers retry and schema enforcement on top of a
// raw Client. Pipeline stages talk to the model exclusively through a
// Completer so transient provider failures and malformed output are handled
// in one place.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/calendar-agent/internal/schemas"
	"github.com/jonathan/calendar-agent/internal/types"
)

// Completer executes JSON capability calls with bounded retry.
//
// Transient failures (timeout, rate limit, provider outage) are retried with
// exponential backoff up to maxAttempts. Schema validation failures are never
// retried: the call already consumed a full model round trip and a repeat is
// as likely to produce the same shape.
type Completer struct {
	client         Client
	maxAttempts    int
	initialBackoff time.Duration
}

// NewCompleter wraps a client with retry policy. maxAttempts below 1 is
// treated as 1; a zero backoff disables the inter-attempt sleep.
func NewCompleter(client Client, maxAttempts int, initialBackoff time.Duration) *Completer {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Completer{
		client:         client,
		maxAttempts:    maxAttempts,
		initialBackoff: initialBackoff,
	}
}

// Complete runs a JSON generation call and validates the response against the
// named stage schema. An empty schemaName skips validation. The returned
// string is the cleaned JSON document produced by the model.
func (c *Completer) Complete(ctx context.Context, prompt, schemaName string, tier ModelTier) (string, error) {
	out, err := c.generateWithRetry(ctx, prompt, tier)
	if err != nil {
		return "", err
	}

	if schemaName != "" {
		if err := schemas.ValidateStage(schemaName, out); err != nil {
			return "", &CapabilityError{
				Kind:    types.ErrKindSchemaValidation,
				Op:      schemaName,
				Message: "response failed schema validation",
				Cause:   err,
			}
		}
	}

	return out, nil
}

// CompleteJSON runs Complete and unmarshals the response into out. A document
// that passes the schema but does not fit the Go type counts as malformed
// model output.
func (c *Completer) CompleteJSON(ctx context.Context, prompt, schemaName string, tier ModelTier, out interface{}) error {
	doc, err := c.Complete(ctx, prompt, schemaName, tier)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(doc), out); err != nil {
		return &CapabilityError{
			Kind:    types.ErrKindMalformedOutput,
			Op:      schemaName,
			Message: "response is not valid JSON for the expected type",
			Cause:   err,
		}
	}
	return nil
}

// generateWithRetry drives the attempt loop. Only errors carrying a transient
// capability kind are retried; everything else escalates immediately.
func (c *Completer) generateWithRetry(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	backoff := c.initialBackoff

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", deadlineError(err)
		}

		out, err := c.client.GenerateJSON(ctx, prompt, tier)
		if err == nil {
			return out, nil
		}
		lastErr = err

		var capErr *CapabilityError
		if !errors.As(err, &capErr) || !capErr.Transient() {
			return "", err
		}
		if attempt == c.maxAttempts {
			break
		}

		if backoff > 0 {
			select {
			case <-ctx.Done():
				return "", deadlineError(ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	return "", fmt.Errorf("model call failed after %d attempts: %w", c.maxAttempts, lastErr)
}

func deadlineError(cause error) error {
	return &CapabilityError{
		Kind:    types.ErrKindTimeout,
		Op:      "generate_json",
		Message: "deadline reached before the model call completed",
		Cause:   cause,
	}
}
