package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vyomfadia/contract-me/pkg/domain"
	"github.com/vyomfadia/contract-me/pkg/voice"
)

// DispatchOffers rings the best-matched contractors about a freshly
// enriched job. Calls are staggered so the top-ranked contractor gets a
// head start on claiming. Returns how many calls were placed; an
// individual failed call is recorded and skipped, it never cancels the
// remaining calls.
func (a *App) DispatchOffers(ctx context.Context, job domain.EnrichedIssue, issue domain.Issue) (int, error) {
	if a.voice == nil {
		return 0, nil
	}

	skills := ExtractSkills(issue.Description + " " + job.IdentifiedProblem)
	matches, err := a.FindMatchingContractors(MatchCriteria{
		Skills:         skills,
		Difficulty:     job.DifficultyLevel,
		Priority:       issue.Priority,
		EstimatedValue: job.TotalQuotedPrice,
	})
	if err != nil {
		return 0, err
	}

	targets := make([]ContractorMatch, 0, a.cfg.MaxOffers)
	for _, m := range matches {
		if !m.Profile.AutoCallEnabled || m.Contractor.PhoneNumber == "" {
			continue
		}
		targets = append(targets, m)
		if len(targets) == a.cfg.MaxOffers {
			break
		}
	}
	if len(targets) == 0 {
		slog.Info("no callable contractors for job", "enrichedIssueId", job.ID, "skills", skills)
		return 0, nil
	}

	var placed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	for i, m := range targets {
		m := m
		wait := time.Duration(i) * a.cfg.OfferStagger
		g.Go(func() error {
			if wait > 0 {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-time.After(wait):
				}
			}
			if err := a.placeOffer(gctx, job, issue, m); err != nil {
				slog.Warn("offer call failed",
					"enrichedIssueId", job.ID,
					"contractorId", m.Contractor.ID,
					"error", err)
				return nil
			}
			placed.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(placed.Load()), err
	}
	slog.Info("offers dispatched", "enrichedIssueId", job.ID, "placed", placed.Load(), "candidates", len(targets))
	return int(placed.Load()), nil
}

func (a *App) placeOffer(ctx context.Context, job domain.EnrichedIssue, issue domain.Issue, m ContractorMatch) error {
	now := a.now()
	offer := domain.OfferCall{
		ID:              uuid.NewString(),
		EnrichedIssueID: job.ID,
		ContractorID:    m.Contractor.ID,
		PhoneNumber:     m.Contractor.PhoneNumber,
		Status:          domain.OfferPlaced,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	call, err := a.voice.PlaceOfferCall(ctx, voice.OfferParams{
		PhoneNumber:       m.Contractor.PhoneNumber,
		ContractorName:    m.Contractor.Username,
		JobTitle:          issue.Title,
		JobDescription:    issue.Description,
		IdentifiedProblem: job.IdentifiedProblem,
		Difficulty:        string(job.DifficultyLevel),
		QuotedPrice:       job.TotalQuotedPrice,
		AppointmentWindow: offerWindow(issue.Priority),
		EnrichedIssueID:   job.ID,
	})
	if err != nil {
		offer.Status = domain.OfferFailed
		if saveErr := a.store.SaveOfferCall(offer); saveErr != nil {
			slog.Warn("record failed offer", "enrichedIssueId", job.ID, "error", saveErr)
		}
		return err
	}

	offer.CallID = call.ID
	if err := a.store.SaveOfferCall(offer); err != nil {
		return fmt.Errorf("record offer: %w", err)
	}
	return nil
}

// offerWindow phrases the expected scheduling urgency for the call script.
func offerWindow(p domain.Priority) string {
	switch p {
	case domain.PriorityEmergency:
		return "within 24 hours"
	case domain.PriorityUrgent:
		return "within 2 days"
	case domain.PriorityLow:
		return "within 2 weeks"
	default:
		return "within a week"
	}
}

// OfferOutcome reports how an offer response was resolved.
type OfferOutcome struct {
	Claimed      bool
	AlreadyTaken bool
	Declined     bool
	Appointment  *domain.Appointment
}

// HandleOfferResponse processes a contractor's answer relayed by the voice
// provider. Acceptance runs the regular claim path, so a race with another
// acceptance still produces exactly one assignee.
func (a *App) HandleOfferResponse(ctx context.Context, enrichedIssueID, phoneNumber string, accepted bool, declineReason string) (OfferOutcome, error) {
	if _, ok, err := a.store.GetEnrichedIssue(enrichedIssueID); err != nil {
		return OfferOutcome{}, fmt.Errorf("load job: %w", err)
	} else if !ok {
		return OfferOutcome{}, ErrJobNotFound
	}

	contractor, ok, err := a.store.FindContractorByPhone(phoneNumber)
	if err != nil {
		return OfferOutcome{}, fmt.Errorf("find contractor: %w", err)
	}
	if !ok {
		return OfferOutcome{}, ErrContractorNotFound
	}

	if !accepted {
		a.recordOfferStatus(enrichedIssueID, contractor, domain.OfferDeclined, declineReason)
		return OfferOutcome{Declined: true}, nil
	}

	res, err := a.ClaimJob(ctx, enrichedIssueID, contractor.ID)
	if errors.Is(err, ErrAlreadyClaimed) {
		return OfferOutcome{AlreadyTaken: true}, nil
	}
	if err != nil {
		return OfferOutcome{}, err
	}
	a.recordOfferStatus(enrichedIssueID, contractor, domain.OfferAccepted, "")
	return OfferOutcome{Claimed: true, Appointment: res.Appointment}, nil
}

// recordOfferStatus updates the contractor's offer record, creating one if
// the response arrived without a tracked call. Best effort.
func (a *App) recordOfferStatus(enrichedIssueID string, contractor domain.User, status domain.OfferStatus, declineReason string) {
	now := a.now()
	offer, ok, err := a.store.GetOfferCall(enrichedIssueID, contractor.ID)
	if err != nil {
		slog.Warn("load offer record", "enrichedIssueId", enrichedIssueID, "error", err)
		return
	}
	if !ok {
		offer = domain.OfferCall{
			ID:              uuid.NewString(),
			EnrichedIssueID: enrichedIssueID,
			ContractorID:    contractor.ID,
			PhoneNumber:     contractor.PhoneNumber,
			CreatedAt:       now,
		}
	}
	offer.Status = status
	offer.DeclineReason = declineReason
	offer.UpdatedAt = now
	if err := a.store.SaveOfferCall(offer); err != nil {
		slog.Warn("save offer record", "enrichedIssueId", enrichedIssueID, "error", err)
	}
}
