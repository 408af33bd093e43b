package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/calendar-agent/internal/calendar"
	"github.com/jonathan/calendar-agent/internal/types"
)

// executeCreate inserts the extracted event. A backend failure is returned as
// both a failed outcome entry and an error so the run terminates Failed with
// the attempt on record.
func (p *Pipeline) executeCreate(ctx context.Context, details *types.CreateEventDetails) ([]types.ExecutionOutcome, error) {
	ev, err := p.backend.Create(ctx, details)
	if err != nil {
		return []types.ExecutionOutcome{{
			Status:      types.ExecStatusBackendError,
			ErrorDetail: err.Error(),
		}}, err
	}
	return []types.ExecutionOutcome{{
		Status:           types.ExecStatusSuccess,
		AffectedEventIDs: []string{ev.ID},
		HTMLLink:         ev.HTMLLink,
		Events:           []types.EventSummary{summarize(ev)},
	}}, nil
}

// executeLookupAction resolves the criteria to concrete events and applies
// the operation. Non-bulk operations act only on an unambiguous single match;
// bulk operations act on every match with per-event failure isolation.
func (p *Pipeline) executeLookupAction(ctx context.Context, rtype types.RequestType, bulk bool, criteria *types.LookupCriteria) ([]types.ExecutionOutcome, error) {
	matches, err := p.resolveMatches(ctx, criteria)
	if err != nil {
		return []types.ExecutionOutcome{{
			Status:      types.ExecStatusBackendError,
			ErrorDetail: err.Error(),
		}}, err
	}

	if len(matches) == 0 {
		return []types.ExecutionOutcome{{
			Status:      types.ExecStatusNotFound,
			ErrorDetail: "no events matched the lookup criteria",
		}}, nil
	}

	if bulk {
		return p.actOnAll(ctx, rtype, criteria.Changes, matches)
	}

	if len(matches) > 1 {
		return []types.ExecutionOutcome{{
			Status:           types.ExecStatusAmbiguousMatch,
			AffectedEventIDs: eventIDs(matches),
			ErrorDetail:      fmt.Sprintf("%d events matched; a single target is required", len(matches)),
			Events:           summaries(matches),
		}}, nil
	}

	out, err := p.actOnOne(ctx, rtype, criteria.Changes, matches[0])
	return []types.ExecutionOutcome{out}, err
}

// resolveMatches finds the target events: a direct get when the request named
// an explicit id, otherwise a window list narrowed by context terms. A get on
// a missing id is an empty match set, not an error.
func (p *Pipeline) resolveMatches(ctx context.Context, criteria *types.LookupCriteria) ([]*calendar.Event, error) {
	if criteria.EventID != "" {
		ev, err := p.backend.Get(ctx, criteria.EventID)
		if err != nil {
			if calendar.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return []*calendar.Event{ev}, nil
	}

	zone := p.listZone(criteria)
	loc, err := time.LoadLocation(zone)
	if err != nil {
		loc = time.UTC
	}
	timeMin, timeMax, err := criteria.TimeWindow.Bounds(loc)
	if err != nil {
		return nil, draftError("execute", "lookup window bounds are invalid", err)
	}
	return p.backend.List(ctx, calendar.ListQuery{
		TimeMin:    timeMin,
		TimeMax:    timeMax,
		Timezone:   zone,
		Query:      strings.Join(criteria.ContextTerms, " "),
		MaxResults: p.opts.MaxMatches,
	})
}

// listZone picks the zone that anchors the search window: the zone resolved
// at extraction, else the window center's own zone, else the system default.
func (p *Pipeline) listZone(criteria *types.LookupCriteria) string {
	if criteria.Timezone != "" {
		return criteria.Timezone
	}
	if criteria.TimeWindow != nil && criteria.TimeWindow.Center.TimeZone != "" {
		return criteria.TimeWindow.Center.TimeZone
	}
	return p.opts.Timezone
}

// actOnOne applies a non-bulk operation to the single unambiguous match. An
// event vanishing between match and action is a not_found outcome, not a
// failure.
func (p *Pipeline) actOnOne(ctx context.Context, rtype types.RequestType, changes *types.EventChanges, ev *calendar.Event) (types.ExecutionOutcome, error) {
	switch rtype {
	case types.RequestTypeLookup:
		return types.ExecutionOutcome{
			Status:           types.ExecStatusSuccess,
			AffectedEventIDs: []string{ev.ID},
			HTMLLink:         ev.HTMLLink,
			Events:           []types.EventSummary{summarize(ev)},
		}, nil

	case types.RequestTypeUpdate:
		return p.applyUpdate(ctx, changes, ev)

	case types.RequestTypeDelete:
		if err := p.backend.Delete(ctx, ev.ID); err != nil {
			if calendar.IsNotFound(err) {
				return types.ExecutionOutcome{
					Status:           types.ExecStatusNotFound,
					AffectedEventIDs: []string{ev.ID},
					ErrorDetail:      "event disappeared before it could be deleted",
				}, nil
			}
			return types.ExecutionOutcome{
				Status:           types.ExecStatusBackendError,
				AffectedEventIDs: []string{ev.ID},
				ErrorDetail:      err.Error(),
			}, err
		}
		return types.ExecutionOutcome{
			Status:           types.ExecStatusSuccess,
			AffectedEventIDs: []string{ev.ID},
		}, nil
	}

	err := fmt.Errorf("request type %q cannot act on an existing event", rtype)
	return types.ExecutionOutcome{Status: types.ExecStatusBackendError, ErrorDetail: err.Error()}, err
}

// actOnAll applies a bulk operation to every match sequentially. Individual
// failures are recorded and the batch continues; a deadline stops the loop
// and returns the partial results; a batch with zero successes surfaces the
// last backend error so the run fails.
func (p *Pipeline) actOnAll(ctx context.Context, rtype types.RequestType, changes *types.EventChanges, matches []*calendar.Event) ([]types.ExecutionOutcome, error) {
	results := make([]types.ExecutionOutcome, 0, len(matches))
	var lastErr error
	for _, ev := range matches {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		out, err := p.bulkStep(ctx, rtype, changes, ev)
		results = append(results, out)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
		}
	}

	succeeded := 0
	for _, r := range results {
		if r.Status == types.ExecStatusSuccess {
			succeeded++
		}
	}
	if succeeded == 0 && lastErr != nil {
		return results, lastErr
	}
	return results, nil
}

// bulkStep handles one event of a bulk batch. Unlike the single-target path,
// deleting an event that already vanished counts as success: the point of a
// bulk delete is the window ending up clear.
func (p *Pipeline) bulkStep(ctx context.Context, rtype types.RequestType, changes *types.EventChanges, ev *calendar.Event) (types.ExecutionOutcome, error) {
	switch rtype {
	case types.RequestTypeLookup:
		return types.ExecutionOutcome{
			Status:           types.ExecStatusSuccess,
			AffectedEventIDs: []string{ev.ID},
			HTMLLink:         ev.HTMLLink,
			Events:           []types.EventSummary{summarize(ev)},
		}, nil

	case types.RequestTypeUpdate:
		return p.applyUpdate(ctx, changes, ev)

	case types.RequestTypeDelete:
		if err := p.backend.Delete(ctx, ev.ID); err != nil {
			if calendar.IsNotFound(err) {
				return types.ExecutionOutcome{
					Status:           types.ExecStatusSuccess,
					AffectedEventIDs: []string{ev.ID},
					ErrorDetail:      "event was already deleted",
				}, nil
			}
			return types.ExecutionOutcome{
				Status:           types.ExecStatusBackendError,
				AffectedEventIDs: []string{ev.ID},
				ErrorDetail:      err.Error(),
			}, err
		}
		return types.ExecutionOutcome{
			Status:           types.ExecStatusSuccess,
			AffectedEventIDs: []string{ev.ID},
		}, nil
	}

	err := fmt.Errorf("request type %q cannot act on an existing event", rtype)
	return types.ExecutionOutcome{Status: types.ExecStatusBackendError, ErrorDetail: err.Error()}, err
}

func (p *Pipeline) applyUpdate(ctx context.Context, changes *types.EventChanges, ev *calendar.Event) (types.ExecutionOutcome, error) {
	updated, err := p.backend.Update(ctx, ev.ID, changes)
	if err != nil {
		if calendar.IsNotFound(err) {
			return types.ExecutionOutcome{
				Status:           types.ExecStatusNotFound,
				AffectedEventIDs: []string{ev.ID},
				ErrorDetail:      "event disappeared before the update was applied",
			}, nil
		}
		return types.ExecutionOutcome{
			Status:           types.ExecStatusBackendError,
			AffectedEventIDs: []string{ev.ID},
			ErrorDetail:      err.Error(),
		}, err
	}
	return types.ExecutionOutcome{
		Status:           types.ExecStatusSuccess,
		AffectedEventIDs: []string{updated.ID},
		HTMLLink:         updated.HTMLLink,
		Events:           []types.EventSummary{summarize(updated)},
	}, nil
}

func summarize(ev *calendar.Event) types.EventSummary {
	return types.EventSummary{
		ID:       ev.ID,
		Title:    ev.Title,
		Start:    ev.Start,
		End:      ev.End,
		Location: ev.Location,
		HTMLLink: ev.HTMLLink,
	}
}

func summaries(events []*calendar.Event) []types.EventSummary {
	out := make([]types.EventSummary, len(events))
	for i, ev := range events {
		out[i] = summarize(ev)
	}
	return out
}

func eventIDs(events []*calendar.Event) []string {
	ids := make([]string, len(events))
	for i, ev := range events {
		ids[i] = ev.ID
	}
	return ids
}
