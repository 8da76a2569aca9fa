package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/vyomfadia/contract-me/internal/app"
	"github.com/vyomfadia/contract-me/internal/authtoken"
	"github.com/vyomfadia/contract-me/internal/ratelimit"
	"github.com/vyomfadia/contract-me/internal/util"
	"github.com/vyomfadia/contract-me/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App            *app.App
	TokenVerifier  *authtoken.Verifier
	WebhookSecret  string
	InternalToken  string
	SubmitLimiter  *ratelimit.FixedWindowLimiter
	WebhookLimiter *ratelimit.FixedWindowLimiter
	TrustedProxies *util.TrustedProxies
	SweepBatchSize int
}

// Server exposes the scheduling and matching HTTP API.
type Server struct {
	app            *app.App
	tokenVerifier  *authtoken.Verifier
	webhookSecret  string
	internalToken  string
	submitLimiter  *ratelimit.FixedWindowLimiter
	webhookLimiter *ratelimit.FixedWindowLimiter
	trustedProxies *util.TrustedProxies
	sweepBatchSize int
	mux            *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	sweepBatch := cfg.SweepBatchSize
	if sweepBatch <= 0 {
		sweepBatch = 50
	}
	s := &Server{
		app:            cfg.App,
		tokenVerifier:  cfg.TokenVerifier,
		webhookSecret:  strings.TrimSpace(cfg.WebhookSecret),
		internalToken:  strings.TrimSpace(cfg.InternalToken),
		submitLimiter:  cfg.SubmitLimiter,
		webhookLimiter: cfg.WebhookLimiter,
		trustedProxies: cfg.TrustedProxies,
		sweepBatchSize: sweepBatch,
		mux:            http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog("contractme", util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// customers
	s.mux.Handle("/issues", s.withUser(s.handleIssues))

	// contractors
	s.mux.Handle("/jobs", s.withContractor(s.handleListJobs))
	s.mux.Handle("/jobs/", s.withContractor(s.handleJobByID))
	s.mux.Handle("/jobs/claim", s.withContractor(s.handleClaimJob))
	s.mux.Handle("/availability", s.withContractor(s.handleAvailability))
	s.mux.Handle("/contractors/profile", s.withContractor(s.handleProfile))
	s.mux.Handle("/contractors/next-slot", s.withContractor(s.handleNextSlot))

	// both parties
	s.mux.Handle("/appointments", s.withUser(s.handleAppointments))
	s.mux.Handle("/appointments/", s.withUser(s.handleAppointmentByID))

	// machine callers
	s.mux.HandleFunc("/webhooks/voice/offer", s.handleOfferWebhook)
	s.mux.Handle("/internal/enrich/sweep", s.withInternal(s.handleSweep))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type userHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) withUser(next userHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.tokenVerifier == nil {
			writeError(w, http.StatusInternalServerError, "auth not configured")
			return
		}
		token, ok := authtoken.BearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		claims, err := s.tokenVerifier.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		user, found, err := s.app.GetUser(claims.Subject)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !found {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, user)
	})
}

func (s *Server) withContractor(next userHandler) http.Handler {
	return s.withUser(func(w http.ResponseWriter, r *http.Request, user domain.User) {
		if !user.Role.IsContractor() {
			writeError(w, http.StatusForbidden, "contractor account required")
			return
		}
		next(w, r, user)
	})
}

func (s *Server) withInternal(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.internalToken == "" {
			writeError(w, http.StatusInternalServerError, "internal auth not configured")
			return
		}
		token, ok := authtoken.BearerToken(r)
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.internalToken)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	})
}

// allowSubmit applies the per-client submission quota. A nil limiter
// disables limiting.
func (s *Server) allowSubmit(r *http.Request) bool {
	if s.submitLimiter == nil {
		return true
	}
	return s.submitLimiter.Allow(util.ClientIP(r, s.trustedProxies))
}

// allowWebhook applies the per-client webhook quota. A nil limiter
// disables limiting.
func (s *Server) allowWebhook(r *http.Request) bool {
	if s.webhookLimiter == nil {
		return true
	}
	return s.webhookLimiter.Allow(util.ClientIP(r, s.trustedProxies))
}
