package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/vyomfadia/contract-me/pkg/domain"
)

type profileRequest struct {
	Skills               []string            `json:"skills"`
	Specialties          []string            `json:"specialties"`
	PreferredJobTypes    []domain.Difficulty `json:"preferredJobTypes"`
	ServiceZipCodes      []string            `json:"serviceZipCodes"`
	ServiceRadius        int                 `json:"serviceRadius"`
	MinimumJobValue      float64             `json:"minimumJobValue"`
	AcceptAutoAssignment bool                `json:"acceptAutoAssignment"`
	AutoCallEnabled      bool                `json:"autoCallEnabled"`
	YearsInBusiness      int                 `json:"yearsInBusiness"`
	BondedAndInsured     bool                `json:"bondedAndInsured"`
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetProfile(w, user)
	case http.MethodPut:
		s.handlePutProfile(w, r, user)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleGetProfile(w http.ResponseWriter, user domain.User) {
	profile, found, err := s.app.GetProfile(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !found {
		notFound(w, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req profileRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	profile, err := s.app.SaveProfile(user.ID, domain.ContractorProfile{
		Skills:               req.Skills,
		Specialties:          req.Specialties,
		PreferredJobTypes:    req.PreferredJobTypes,
		ServiceZipCodes:      req.ServiceZipCodes,
		ServiceRadius:        req.ServiceRadius,
		MinimumJobValue:      req.MinimumJobValue,
		AcceptAutoAssignment: req.AcceptAutoAssignment,
		AutoCallEnabled:      req.AutoCallEnabled,
		YearsInBusiness:      req.YearsInBusiness,
		BondedAndInsured:     req.BondedAndInsured,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
