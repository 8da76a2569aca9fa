package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vyomfadia/contract-me/internal/notify"
	"github.com/vyomfadia/contract-me/internal/store"
	"github.com/vyomfadia/contract-me/pkg/domain"
)

// ClaimResult is what a successful claim produced. Appointment is nil when
// the contractor had no bookable slot within the priority's horizon; the
// claim still stands and scheduling happens out of band.
type ClaimResult struct {
	Job         domain.EnrichedIssue
	Issue       domain.Issue
	Appointment *domain.Appointment
}

// ClaimJob atomically assigns an open job to a contractor. Exactly one
// caller wins a concurrent race; the rest get ErrAlreadyClaimed. The
// winning claim, the issue status flip and the appointment insert commit
// together or not at all.
func (a *App) ClaimJob(ctx context.Context, enrichedIssueID, contractorID string) (ClaimResult, error) {
	var res ClaimResult
	err := a.store.Transaction(func(tx store.Store) error {
		job, ok, err := tx.GetEnrichedIssueForUpdate(enrichedIssueID)
		if err != nil {
			return fmt.Errorf("lock job: %w", err)
		}
		if !ok {
			return ErrJobNotFound
		}
		if job.Claimed() {
			return ErrAlreadyClaimed
		}

		now := a.now()
		job.ClaimedByContractorID = contractorID
		job.ClaimedAt = &now
		if err := tx.SaveEnrichedIssue(job); err != nil {
			return fmt.Errorf("save claim: %w", err)
		}
		if err := tx.SetIssueStatus(job.IssueID, domain.IssueAssigned); err != nil {
			return fmt.Errorf("set issue status: %w", err)
		}

		issue, ok, err := tx.GetIssue(job.IssueID)
		if err != nil {
			return fmt.Errorf("load issue: %w", err)
		}
		if !ok {
			return ErrIssueNotFound
		}

		appt, err := a.bookAppointment(tx, job, issue, contractorID, now)
		if err != nil {
			return err
		}

		res = ClaimResult{Job: job, Issue: issue, Appointment: appt}
		return nil
	})
	if err != nil {
		return ClaimResult{}, err
	}

	a.notifyCustomerClaimed(ctx, res)
	return res, nil
}

// bookAppointment schedules the claimed job into the contractor's next
// open slot. Returning (nil, nil) means no slot was found, which is not
// an error.
func (a *App) bookAppointment(tx store.Store, job domain.EnrichedIssue, issue domain.Issue, contractorID string, now time.Time) (*domain.Appointment, error) {
	start, found, err := a.findNextSlot(tx, contractorID, issue.Priority, now)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	// The finder already checked the candidate window, but re-check
	// against the bookings visible inside this transaction before the
	// insert. A conflict here means another booking landed first; the
	// claim proceeds unscheduled.
	booked, err := tx.ListBlockingAppointments(contractorID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	if overlapsAny(start, start.Add(a.cfg.CandidateSlotDuration), booked) {
		return nil, nil
	}

	appt := domain.Appointment{
		ID:                uuid.NewString(),
		IssueID:           issue.ID,
		ContractorID:      contractorID,
		CustomerID:        issue.CustomerID,
		ScheduledDate:     start,
		EstimatedDuration: a.clampDurationMinutes(job.EstimatedTimeHours),
		Status:            domain.AppointmentScheduled,
		QuotedPrice:       job.TotalQuotedPrice,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := tx.SaveAppointment(appt); err != nil {
		return nil, fmt.Errorf("save appointment: %w", err)
	}
	return &appt, nil
}

// clampDurationMinutes converts the enrichment's hour estimate into
// appointment minutes, bounded to a workable visit length.
func (a *App) clampDurationMinutes(estimatedHours float64) int {
	if estimatedHours <= 0 {
		return a.cfg.DefaultAppointmentMinutes
	}
	minutes := int(estimatedHours * 60)
	if minutes < a.cfg.MinAppointmentMinutes {
		return a.cfg.MinAppointmentMinutes
	}
	if minutes > a.cfg.MaxAppointmentMinutes {
		return a.cfg.MaxAppointmentMinutes
	}
	return minutes
}

// notifyCustomerClaimed enqueues a best-effort customer notification after
// the claim committed. Delivery failures never undo the claim.
func (a *App) notifyCustomerClaimed(ctx context.Context, res ClaimResult) {
	if a.notifier == nil {
		return
	}
	customer, ok, err := a.store.GetUserByID(res.Issue.CustomerID)
	if err != nil || !ok || customer.PhoneNumber == "" {
		if err != nil {
			slog.Warn("load customer for claim notification", "issueId", res.Issue.ID, "error", err)
		}
		return
	}
	contractorName := ""
	if contractor, ok, err := a.store.GetUserByID(res.Job.ClaimedByContractorID); err == nil && ok {
		contractorName = contractor.Username
	}
	n := notify.Notification{
		Kind:            notify.KindJobClaimed,
		PhoneNumber:     customer.PhoneNumber,
		CustomerName:    customer.Username,
		ContractorName:  contractorName,
		IssueTitle:      res.Issue.Title,
		EnrichedIssueID: res.Job.ID,
		QuotedPrice:     res.Job.TotalQuotedPrice,
	}
	if res.Appointment != nil {
		t := res.Appointment.ScheduledDate
		n.AppointmentAt = &t
	}
	if _, err := a.notifier.Enqueue(ctx, n); err != nil {
		slog.Warn("enqueue claim notification", "issueId", res.Issue.ID, "error", err)
	}
}
