// Package server provides the HTTP REST API for the calendar agent.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/calendar-agent/internal/config"
	"github.com/jonathan/calendar-agent/internal/types"
)

// tokenSubject is the subject claim issued for callers that present a valid
// service API key. There are no per-user accounts.
const tokenSubject = "service"

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	apiKeys    *config.APIKeyConfig
	jwtService *JWTService
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(apiKeys *config.APIKeyConfig, jwtService *JWTService) *AuthHandler {
	return &AuthHandler{
		apiKeys:    apiKeys,
		jwtService: jwtService,
	}
}

// Token exchanges a service API key for a JWT.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req types.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, extractValidationErrors(err), http.StatusBadRequest)
		return
	}

	if !h.apiKeys.VerifyKey(req.APIKey) {
		err := &ErrInvalidAPIKey{}
		http.Error(w, err.Error(), HTTPStatus(err))
		return
	}

	token, expiresAt, err := h.jwtService.GenerateToken(tokenSubject)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	response := types.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		// Log error but response already sent
		return
	}
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrors) > 0 {
			// Return first validation error for simplicity
			ve := validationErrors[0]
			return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
		}
	}
	return "validation error: invalid request"
}
