package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/vyomfadia/contract-me/pkg/domain"
)

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	jobs, err := s.app.ListOpenJobs()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": jobs,
		"count": len(jobs),
	})
}

// /jobs/{id}
func (s *Server) handleJobByID(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/jobs/")
	if id == "" || strings.Contains(id, "/") {
		notFound(w, "not found")
		return
	}
	listing, err := s.app.GetJob(id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

type claimRequest struct {
	EnrichedIssueID string `json:"enrichedIssueId"`
}

func (s *Server) handleClaimJob(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req claimRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.EnrichedIssueID) == "" {
		writeError(w, http.StatusBadRequest, "enrichedIssueId is required")
		return
	}
	res, err := s.app.ClaimJob(r.Context(), req.EnrichedIssueID, user.ID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"job":         res.Job,
		"issue":       res.Issue,
		"appointment": res.Appointment,
	})
}

func (s *Server) handleNextSlot(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	priority := domain.Priority(strings.TrimSpace(r.URL.Query().Get("priority")))
	at, found, err := s.app.FindNextSlot(user.ID, priority)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, map[string]any{"found": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"found": true,
		"start": at,
	})
}
