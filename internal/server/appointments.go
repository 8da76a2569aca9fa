package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/vyomfadia/contract-me/internal/app"
	"github.com/vyomfadia/contract-me/pkg/domain"
)

func (s *Server) handleAppointments(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	appts, err := s.app.ListAppointmentsFor(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": appts,
		"count": len(appts),
	})
}

type appointmentUpdateRequest struct {
	Status          *domain.AppointmentStatus `json:"status"`
	QuotedPrice     *float64                  `json:"quotedPrice"`
	FinalPrice      *float64                  `json:"finalPrice"`
	ContractorNotes *string                   `json:"contractorNotes"`
	CustomerNotes   *string                   `json:"customerNotes"`
}

// /appointments/{id}
func (s *Server) handleAppointmentByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	id := strings.TrimPrefix(r.URL.Path, "/appointments/")
	if id == "" || strings.Contains(id, "/") {
		notFound(w, "not found")
		return
	}
	switch r.Method {
	case http.MethodPut, http.MethodPatch:
		s.handleUpdateAppointment(w, r, user, id)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleUpdateAppointment(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	var req appointmentUpdateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	appt, err := s.app.UpdateAppointment(user, id, app.AppointmentUpdate{
		Status:          req.Status,
		QuotedPrice:     req.QuotedPrice,
		FinalPrice:      req.FinalPrice,
		ContractorNotes: req.ContractorNotes,
		CustomerNotes:   req.CustomerNotes,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}
