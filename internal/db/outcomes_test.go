package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/calendar-agent/internal/types"
)

func TestSaveOutcome_RejectsBadRequestID(t *testing.T) {
	db := &DB{}
	err := db.SaveOutcome(context.Background(), &types.PipelineOutcome{RequestID: "not-a-uuid"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request id")
}
