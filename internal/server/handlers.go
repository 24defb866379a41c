package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"blogforge/internal/authoring"
	"blogforge/internal/ideation"
	"blogforge/internal/llm"
	"blogforge/internal/persistence"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// errBadRequest marks malformed request bodies.
var errBadRequest = errors.New("bad request")

// Response is the envelope every API endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// HealthResponse is the body of the /health endpoint
type HealthResponse struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime"`
	Checks map[string]string `json:"checks"`
}

var serverStartTime = time.Now()

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	uptime := time.Since(serverStartTime).Round(time.Second).String()

	if err := s.store.Ping(r.Context()); err != nil {
		s.log.Error("Health check failed", "error", err)
		checks["database"] = "error"
		s.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy",
			Uptime: uptime,
			Checks: checks,
		})
		return
	}

	checks["database"] = "ok"
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: uptime,
		Checks: checks,
	})
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.respondError(w, http.StatusTooManyRequests, "Too many requests, slow down")
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}

// respondOK writes a successful envelope
func (s *Server) respondOK(w http.ResponseWriter, status int, message string, data any) {
	s.respondJSON(w, status, Response{Success: true, Message: message, Data: data})
}

// respondError writes a failed envelope
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, Response{Success: false, Message: message})
}

// respondFailure maps a domain error to its HTTP status and writes it.
// Server-side failures are logged and answered with a generic message.
func (s *Server) respondFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status < http.StatusInternalServerError {
		s.respondError(w, status, err.Error())
		return
	}

	s.log.Error("Request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"request_id", middleware.GetReqID(r.Context()),
		"error", err,
	)

	message := "Internal server error"
	switch status {
	case http.StatusBadGateway:
		message = "The AI provider could not complete the request"
	case http.StatusGatewayTimeout:
		message = "The request timed out"
	}
	s.respondError(w, status, message)
}

// statusFor maps errors from the domain packages onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, ideation.ErrInvalidInput),
		errors.Is(err, authoring.ErrInvalidInput),
		errors.Is(err, persistence.ErrInvalidIdea),
		errors.Is(err, persistence.ErrDuplicateTitle):
		return http.StatusBadRequest
	case errors.Is(err, ideation.ErrProjectNotFound),
		errors.Is(err, persistence.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case llm.IsGeneration(err), llm.IsSchemaValidation(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON request body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", errBadRequest)
		}
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}
