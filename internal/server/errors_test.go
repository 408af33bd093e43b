package server

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestErrInvalidAPIKey(t *testing.T) {
	err := &ErrInvalidAPIKey{}
	assert.Equal(t, "invalid api key", err.Error())
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(err))
}

func TestErrRequestNotFound(t *testing.T) {
	id := uuid.New()
	err := &ErrRequestNotFound{ID: id}
	assert.Equal(t, "request not found: "+id.String(), err.Error())
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "text", Message: "must not be empty"}
	assert.Equal(t, "validation error: text - must not be empty", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "ErrInvalidAPIKey",
			err:      &ErrInvalidAPIKey{},
			expected: http.StatusUnauthorized,
		},
		{
			name:     "ErrRequestNotFound",
			err:      &ErrRequestNotFound{ID: uuid.New()},
			expected: http.StatusNotFound,
		},
		{
			name:     "ErrValidation",
			err:      &ErrValidation{Field: "reference_at", Message: "not RFC 3339"},
			expected: http.StatusBadRequest,
		},
		{
			name:     "Unknown error",
			err:      assert.AnError,
			expected: http.StatusInternalServerError,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}
