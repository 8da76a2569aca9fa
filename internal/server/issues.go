package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/vyomfadia/contract-me/pkg/domain"
)

type submitIssueRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    domain.Priority `json:"priority"`
}

func (s *Server) handleIssues(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodPost:
		s.handleSubmitIssue(w, r, user)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleSubmitIssue(w http.ResponseWriter, r *http.Request, user domain.User) {
	if !s.allowSubmit(r) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}
	var req submitIssueRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	issue, err := s.app.SubmitIssue(r.Context(), user.ID, req.Title, req.Description, req.Priority)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, issue)
}
