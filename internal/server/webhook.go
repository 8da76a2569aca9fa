package server

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// offerWebhookRequest mirrors the voice provider's end-of-call report.
// The assistant extracts the contractor's decision into structuredData.
type offerWebhookRequest struct {
	Message struct {
		Type string `json:"type"`
		Call struct {
			Customer struct {
				Number string `json:"number"`
			} `json:"customer"`
		} `json:"call"`
		Analysis struct {
			StructuredData struct {
				JobAccepted        bool   `json:"jobAccepted"`
				EnrichedIssueID    string `json:"enrichedIssueId"`
				ContractorResponse string `json:"contractorResponse"`
				ReasonForDecline   string `json:"reasonForDecline"`
			} `json:"structuredData"`
		} `json:"analysis"`
	} `json:"message"`
}

func (s *Server) handleOfferWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowWebhook(r) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}
	if s.webhookSecret != "" {
		secret := strings.TrimSpace(r.Header.Get("X-Vapi-Secret"))
		if subtle.ConstantTimeCompare([]byte(secret), []byte(s.webhookSecret)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
	}

	var req offerWebhookRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	data := req.Message.Analysis.StructuredData
	phone := strings.TrimSpace(req.Message.Call.Customer.Number)
	if data.EnrichedIssueID == "" || phone == "" {
		writeError(w, http.StatusBadRequest, "enrichedIssueId and caller number are required")
		return
	}

	outcome, err := s.app.HandleOfferResponse(r.Context(), data.EnrichedIssueID, phone, data.JobAccepted, data.ReasonForDecline)
	if err != nil {
		writeAppError(w, err)
		return
	}

	switch {
	case outcome.Claimed:
		writeJSON(w, http.StatusOK, map[string]any{
			"result":      "claimed",
			"appointment": outcome.Appointment,
		})
	case outcome.AlreadyTaken:
		writeJSON(w, http.StatusOK, map[string]any{"result": "already_claimed"})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"result": "declined"})
	}
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	queued, err := s.app.SweepUnenriched(r.Context(), s.sweepBatchSize)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"queued": queued})
}
