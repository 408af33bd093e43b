package pipeline

import (
	"fmt"

	"github.com/jonathan/calendar-agent/internal/types"
)

// extractorKind selects which extraction stage handles a classified request.
type extractorKind string

const (
	// extractorCreate drafts the complete field set for a new event.
	extractorCreate extractorKind = "create"
	// extractorLookup drafts criteria for finding existing events; update,
	// delete and lookup all share it since each must find its target first.
	extractorLookup extractorKind = "lookup"
)

// stageRoute is the routing decision for one request type.
type stageRoute struct {
	requestType types.RequestType
	extractor   extractorKind
}

// routeFor maps an actionable request type to its extractor. Classification
// gates out non-actionable types before routing, so the error path only fires
// if that invariant is broken upstream.
func routeFor(t types.RequestType) (stageRoute, error) {
	switch t {
	case types.RequestTypeCreate:
		return stageRoute{requestType: t, extractor: extractorCreate}, nil
	case types.RequestTypeUpdate, types.RequestTypeDelete, types.RequestTypeLookup:
		return stageRoute{requestType: t, extractor: extractorLookup}, nil
	default:
		return stageRoute{}, fmt.Errorf("no extractor handles request type %q", t)
	}
}
