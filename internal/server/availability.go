package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/vyomfadia/contract-me/pkg/domain"
)

type availabilitySlotRequest struct {
	DayOfWeek domain.DayOfWeek `json:"dayOfWeek"`
	StartTime string           `json:"startTime"`
	EndTime   string           `json:"endTime"`
	// pointer so an omitted field defaults to available
	IsAvailable *bool `json:"isAvailable"`
}

type availabilityRequest struct {
	Slots []availabilitySlotRequest `json:"slots"`
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetAvailability(w, user)
	case http.MethodPut:
		s.handlePutAvailability(w, r, user)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleGetAvailability(w http.ResponseWriter, user domain.User) {
	slots, err := s.app.ListAvailability(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": slots,
		"count": len(slots),
	})
}

func (s *Server) handlePutAvailability(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req availabilityRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	slots := make([]domain.AvailabilitySlot, 0, len(req.Slots))
	for _, in := range req.Slots {
		slot := domain.AvailabilitySlot{
			DayOfWeek:   in.DayOfWeek,
			StartTime:   in.StartTime,
			EndTime:     in.EndTime,
			IsAvailable: in.IsAvailable == nil || *in.IsAvailable,
		}
		slots = append(slots, slot)
	}
	saved, err := s.app.ReplaceAvailability(user.ID, slots)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"saved":     saved,
		"submitted": len(req.Slots),
	})
}
