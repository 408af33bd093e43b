package db

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/calendar-agent/internal/types"
)

func TestStoredRequest_Record(t *testing.T) {
	id := uuid.New()
	received := time.Date(2025, 5, 6, 10, 0, 0, 0, time.UTC)
	started := received.Add(time.Second)

	req := StoredRequest{
		ID:         id,
		RawText:    "Schedule a team meeting tomorrow at 2pm",
		Status:     types.RequestStatusProcessing,
		ReceivedAt: received,
		StartedAt:  &started,
		Attempts:   1,
	}

	rec := req.Record()
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, req.RawText, rec.RawText)
	assert.Equal(t, received, rec.ReceivedAt)
}

func TestStoredRequest_LifecycleFieldsStartNil(t *testing.T) {
	req := StoredRequest{
		ID:      uuid.New(),
		RawText: "Delete my 3pm standup",
		Status:  types.RequestStatusPending,
	}

	assert.Nil(t, req.StartedAt)
	assert.Nil(t, req.CompletedAt)
	assert.Zero(t, req.Attempts)
}
