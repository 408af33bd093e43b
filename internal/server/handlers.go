package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/calendar-agent/internal/db"
	"github.com/jonathan/calendar-agent/internal/types"
)

// handleToken issues a JWT in exchange for the service API key.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	s.authHandler.Token(w, r)
}

// decodeSubmission decodes and validates a submission body, resolving the
// optional reference instant. On failure the response has been written and
// ok is false.
func (s *Server) decodeSubmission(w http.ResponseWriter, r *http.Request) (req types.SubmitRequest, refAt *time.Time, ok bool) {
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return req, nil, false
	}

	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return req, nil, false
	}

	refAt, err := parseReference(req)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return req, nil, false
	}
	return req, refAt, true
}

// parseReference resolves the optional anchor fields of a submission. A zone
// the backend cannot load is a caller error, not a silent fallback.
func parseReference(req types.SubmitRequest) (*time.Time, error) {
	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			return nil, &ErrValidation{Field: "timezone", Message: "unknown timezone " + strconv.Quote(req.Timezone)}
		}
	}
	if req.ReferenceAt == "" {
		return nil, nil
	}
	at, err := time.Parse(time.RFC3339, req.ReferenceAt)
	if err != nil {
		return nil, &ErrValidation{Field: "reference_at", Message: "must be an RFC 3339 timestamp"}
	}
	return &at, nil
}

// handleSubmitRequest queues a request for asynchronous processing by the
// worker pool and acknowledges with 202.
func (s *Server) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	req, refAt, ok := s.decodeSubmission(w, r)
	if !ok {
		return
	}

	stored, err := s.store.CreateRequest(r.Context(), req.Text, refAt, req.Timezone)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusAccepted, types.SubmitResponse{
		ID:     stored.ID,
		Status: stored.Status,
	})
}

// handleRunSync runs a request through the pipeline inline and returns the
// full outcome. Nothing is persisted; the route exists for demos and for
// debugging against a live backend.
func (s *Server) handleRunSync(w http.ResponseWriter, r *http.Request) {
	req, refAt, ok := s.decodeSubmission(w, r)
	if !ok {
		return
	}

	rec := types.RequestRecord{
		ID:         uuid.New(),
		RawText:    req.Text,
		ReceivedAt: time.Now().UTC(),
	}

	outcome := s.runner.Run(r.Context(), rec, types.ReferenceAt(refAt, req.Timezone))
	s.jsonResponse(w, http.StatusOK, outcome)
}

// handleGetRequest returns a stored request and, once processed, its outcome.
func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request ID format")
		return
	}

	stored, err := s.store.GetRequest(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if stored == nil {
		notFound := &ErrRequestNotFound{ID: id}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	outcome, err := s.store.GetOutcome(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, types.RequestDetail{
		ID:         stored.ID,
		RawText:    stored.RawText,
		Status:     stored.Status,
		ReceivedAt: stored.ReceivedAt,
		Outcome:    outcome,
	})
}

// handleListRequests returns recent requests with optional filters
func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	filters := db.RequestFilters{
		Status: r.URL.Query().Get("status"),
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filters.Limit = limit
		}
	}

	requests, err := s.store.ListRequests(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	// Convert to response format
	type RequestItem struct {
		ID         string `json:"id"`
		RawText    string `json:"raw_text"`
		Status     string `json:"status"`
		ReceivedAt string `json:"received_at"`
	}
	response := make([]RequestItem, 0, len(requests))
	for _, req := range requests {
		response = append(response, RequestItem{
			ID:         req.ID.String(),
			RawText:    req.RawText,
			Status:     string(req.Status),
			ReceivedAt: req.ReceivedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"requests": response,
		"count":    len(response),
	})
}

// handleHealth reports server and database health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  "database unreachable",
		})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
