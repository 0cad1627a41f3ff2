// Package api provides HTTP handlers for the interview API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/intervu-ai/intervu/internal/interview"
	"github.com/intervu-ai/intervu/internal/resume"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// statusFor maps session errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, interview.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, interview.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, interview.ErrEmptyAnswer),
		errors.Is(err, interview.ErrMissingContext),
		errors.Is(err, resume.ErrUnsupportedFormat),
		errors.Is(err, resume.ErrEmptyDocument):
		return http.StatusBadRequest
	case errors.Is(err, interview.ErrContentServiceUnavailable),
		errors.Is(err, interview.ErrTranscriptionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
