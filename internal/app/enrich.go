package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/vyomfadia/contract-me/pkg/domain"
)

// SubmitIssue records a customer's repair request and queues it for
// analysis. The issue is durable before the queue publish, so a publish
// failure only delays enrichment until the next sweep.
func (a *App) SubmitIssue(ctx context.Context, customerID, title, description string, priority domain.Priority) (domain.Issue, error) {
	if strings.TrimSpace(description) == "" {
		return domain.Issue{}, ErrInvalidIssue
	}
	switch priority {
	case domain.PriorityEmergency, domain.PriorityUrgent, domain.PriorityNormal, domain.PriorityLow:
	default:
		priority = a.cfg.DefaultPriority
	}

	now := a.now()
	issue := domain.Issue{
		ID:          uuid.NewString(),
		CustomerID:  customerID,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Priority:    priority,
		Status:      domain.IssueSubmitted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.store.SaveIssue(issue); err != nil {
		return domain.Issue{}, fmt.Errorf("save issue: %w", err)
	}

	if a.enrichQueue != nil {
		if err := a.enrichQueue.PublishEnrichment(ctx, issue.ID); err != nil {
			slog.Warn("publish enrichment", "issueId", issue.ID, "error", err)
		}
	}
	return issue, nil
}

// ProcessEnrichment analyzes one submitted issue, stores the result and
// dispatches contractor offers. Issues already past SUBMITTED are skipped,
// which makes redelivery harmless. On analysis failure the issue reverts
// to SUBMITTED so a later attempt can pick it up.
func (a *App) ProcessEnrichment(ctx context.Context, issueID string) error {
	issue, ok, err := a.store.GetIssue(issueID)
	if err != nil {
		return fmt.Errorf("load issue: %w", err)
	}
	if !ok {
		return ErrIssueNotFound
	}
	if issue.Status != domain.IssueSubmitted {
		slog.Info("skip enrichment, issue not pending", "issueId", issueID, "status", issue.Status)
		return nil
	}
	if a.enricher == nil {
		return fmt.Errorf("enrichment disabled")
	}

	if err := a.store.SetIssueStatus(issueID, domain.IssueAnalyzing); err != nil {
		return fmt.Errorf("set analyzing: %w", err)
	}

	result, err := a.enricher.Enrich(ctx, issue.Title, issue.Description)
	if err != nil {
		if revertErr := a.store.SetIssueStatus(issueID, domain.IssueSubmitted); revertErr != nil {
			slog.Error("revert issue status", "issueId", issueID, "error", revertErr)
		}
		return fmt.Errorf("enrich issue %s: %w", issueID, err)
	}

	enriched := domain.EnrichedIssue{
		ID:                  uuid.NewString(),
		IssueID:             issue.ID,
		IdentifiedProblem:   result.IdentifiedProblem,
		RepairSolution:      result.RepairSolution,
		EstimatedTimeHours:  result.EstimatedTimeHours,
		DifficultyLevel:     result.DifficultyLevel,
		RequiredItems:       result.RequiredItems,
		TotalQuotedPrice:    result.TotalQuotedPrice,
		QuestionsForUser:    result.QuestionsForUser,
		ContractorChecklist: result.ContractorChecklist,
		CreatedAt:           a.now(),
	}
	if err := a.store.SaveEnrichedIssue(enriched); err != nil {
		return fmt.Errorf("save enriched issue: %w", err)
	}
	if err := a.store.SetIssueStatus(issueID, domain.IssuePendingContractor); err != nil {
		return fmt.Errorf("set pending contractor: %w", err)
	}

	// Offers ride on the enrichment result but their failure does not
	// invalidate it; the job stays listed for manual claiming. The calls
	// are staggered over minutes, so they run detached rather than hold
	// up the queue delivery.
	issue.Status = domain.IssuePendingContractor
	dispatchCtx := context.WithoutCancel(ctx)
	go func() {
		if _, err := a.DispatchOffers(dispatchCtx, enriched, issue); err != nil {
			slog.Warn("dispatch offers", "issueId", issueID, "error", err)
		}
	}()
	return nil
}

// SweepUnenriched re-queues issues that were submitted but never analyzed,
// typically because the original publish was lost. Returns how many were
// queued.
func (a *App) SweepUnenriched(ctx context.Context, limit int) (int, error) {
	if a.enrichQueue == nil {
		return 0, nil
	}
	issues, err := a.store.ListUnenrichedIssues(limit)
	if err != nil {
		return 0, fmt.Errorf("list unenriched: %w", err)
	}
	queued := 0
	for _, issue := range issues {
		if issue.Status != domain.IssueSubmitted {
			continue
		}
		if err := a.enrichQueue.PublishEnrichment(ctx, issue.ID); err != nil {
			return queued, fmt.Errorf("publish issue %s: %w", issue.ID, err)
		}
		queued++
	}
	return queued, nil
}
