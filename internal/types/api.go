package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// SubmitRequest is the body of a request submission: the natural-language
// text plus an optional reference instant for relative-time resolution.
type SubmitRequest struct {
	Text        string `json:"text" validate:"required,min=1,max=2000"`
	ReferenceAt string `json:"reference_at,omitempty" validate:"omitempty,rfc3339"`
	Timezone    string `json:"timezone,omitempty"`
}

// TokenRequest exchanges the service API key for a short-lived JWT.
type TokenRequest struct {
	APIKey string `json:"api_key" validate:"required"`
}

// TokenResponse carries the issued JWT and its expiry.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SubmitResponse acknowledges an accepted asynchronous submission.
type SubmitResponse struct {
	ID     uuid.UUID     `json:"id"`
	Status RequestStatus `json:"status"`
}

// RequestDetail is the API view of a stored request and, once processed,
// its pipeline outcome.
type RequestDetail struct {
	ID         uuid.UUID        `json:"id"`
	RawText    string           `json:"raw_text"`
	Status     RequestStatus    `json:"status"`
	ReceivedAt time.Time        `json:"received_at"`
	Outcome    *PipelineOutcome `json:"outcome,omitempty"`
}

// Validate validates the SubmitRequest using the validator.
func (r *SubmitRequest) Validate() error {
	return newValidator().Struct(r)
}

// Validate validates the TokenRequest using the validator.
func (r *TokenRequest) Validate() error {
	return newValidator().Struct(r)
}

func newValidator() *validator.Validate {
	v := validator.New()
	// rfc3339 accepts an empty value only via omitempty on the field.
	_ = v.RegisterValidation("rfc3339", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.RFC3339, fl.Field().String())
		return err == nil
	})
	return v
}
