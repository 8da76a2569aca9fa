package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vyomfadia/contract-me/internal/app"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		Code:      errorCode(status, msg),
		RequestID: strings.TrimSpace(w.Header().Get("X-Request-Id")),
	})
}

// writeAppError maps domain errors to HTTP statuses.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrJobNotFound):
		writeError(w, http.StatusNotFound, "job not found")
	case errors.Is(err, app.ErrAlreadyClaimed):
		writeError(w, http.StatusConflict, "job already claimed")
	case errors.Is(err, app.ErrIssueNotFound):
		writeError(w, http.StatusNotFound, "issue not found")
	case errors.Is(err, app.ErrContractorNotFound):
		writeError(w, http.StatusNotFound, "contractor not found")
	case errors.Is(err, app.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment not found")
	case errors.Is(err, app.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, app.ErrInvalidIssue):
		writeError(w, http.StatusBadRequest, "description is required")
	case errors.Is(err, app.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid status")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func notFound(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusNotFound, msg)
}

func errorCode(status int, msg string) string {
	message := strings.ToLower(strings.TrimSpace(msg))
	switch {
	case message == "auth not configured", message == "internal auth not configured":
		return "SYSTEM_INTERNAL_ERROR"
	case message == "unauthorized":
		return "AUTH_INVALID_TOKEN"
	case message == "contractor account required":
		return "AUTH_CONTRACTOR_REQUIRED"
	case message == "forbidden":
		return "AUTH_FORBIDDEN"
	case message == "job not found":
		return "JOB_NOT_FOUND"
	case message == "job already claimed":
		return "JOB_ALREADY_CLAIMED"
	case message == "issue not found":
		return "ISSUE_NOT_FOUND"
	case message == "contractor not found":
		return "CONTRACTOR_NOT_FOUND"
	case message == "appointment not found":
		return "APPOINTMENT_NOT_FOUND"
	case message == "description is required":
		return "ISSUE_INVALID_REQUEST"
	case message == "invalid status":
		return "APPOINTMENT_INVALID_STATUS"
	case message == "invalid json body":
		return "SYSTEM_INVALID_REQUEST"
	case message == "rate limit exceeded":
		return "SYSTEM_RATE_LIMITED"
	case message == "method not allowed":
		return "SYSTEM_METHOD_NOT_ALLOWED"
	case message == "not found":
		return "SYSTEM_NOT_FOUND"
	}

	switch status {
	case http.StatusBadRequest:
		return "SYSTEM_INVALID_REQUEST"
	case http.StatusUnauthorized:
		return "AUTH_INVALID_TOKEN"
	case http.StatusForbidden:
		return "AUTH_FORBIDDEN"
	case http.StatusNotFound:
		return "SYSTEM_NOT_FOUND"
	case http.StatusConflict:
		return "SYSTEM_CONFLICT"
	case http.StatusMethodNotAllowed:
		return "SYSTEM_METHOD_NOT_ALLOWED"
	case http.StatusTooManyRequests:
		return "SYSTEM_RATE_LIMITED"
	default:
		return "SYSTEM_INTERNAL_ERROR"
	}
}
