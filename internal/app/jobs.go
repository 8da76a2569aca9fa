package app

import (
	"fmt"

	"github.com/vyomfadia/contract-me/pkg/domain"
)

// JobListing pairs an open enriched job with its originating issue.
type JobListing struct {
	Job   domain.EnrichedIssue `json:"job"`
	Issue domain.Issue         `json:"issue"`
}

// ListOpenJobs returns every enriched, unclaimed job for the contractor
// job board, newest first per the store's ordering.
func (a *App) ListOpenJobs() ([]JobListing, error) {
	open, err := a.store.ListOpenEnrichedIssues()
	if err != nil {
		return nil, fmt.Errorf("list open jobs: %w", err)
	}
	listings := make([]JobListing, 0, len(open))
	for _, job := range open {
		issue, ok, err := a.store.GetIssue(job.IssueID)
		if err != nil {
			return nil, fmt.Errorf("load issue %s: %w", job.IssueID, err)
		}
		if !ok {
			continue
		}
		listings = append(listings, JobListing{Job: job, Issue: issue})
	}
	return listings, nil
}

// GetJob fetches one enriched job with its issue.
func (a *App) GetJob(enrichedIssueID string) (JobListing, error) {
	job, ok, err := a.store.GetEnrichedIssue(enrichedIssueID)
	if err != nil {
		return JobListing{}, fmt.Errorf("load job: %w", err)
	}
	if !ok {
		return JobListing{}, ErrJobNotFound
	}
	issue, ok, err := a.store.GetIssue(job.IssueID)
	if err != nil {
		return JobListing{}, fmt.Errorf("load issue: %w", err)
	}
	if !ok {
		return JobListing{}, ErrIssueNotFound
	}
	return JobListing{Job: job, Issue: issue}, nil
}
