package app

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vyomfadia/contract-me/internal/notify"
	"github.com/vyomfadia/contract-me/internal/store"
	"github.com/vyomfadia/contract-me/pkg/ai"
	"github.com/vyomfadia/contract-me/pkg/domain"
	"github.com/vyomfadia/contract-me/pkg/voice"
)

func newTestApp(t *testing.T, st store.Store) *App {
	t.Helper()
	return New(Deps{
		Store: st,
		Now:   func() time.Time { return testNow },
	}, Config{OfferStagger: time.Millisecond})
}

func saveContractor(t *testing.T, st store.Store, id, phone string, profile domain.ContractorProfile) {
	t.Helper()
	if err := st.SaveUser(domain.User{
		ID:          id,
		Username:    id,
		Email:       id + "@example.com",
		PhoneNumber: phone,
		Role:        domain.RoleContractor,
		CreatedAt:   testNow,
	}); err != nil {
		t.Fatalf("save user %s: %v", id, err)
	}
	profile.ContractorID = id
	profile.CreatedAt = testNow
	profile.UpdatedAt = testNow
	if err := st.SaveContractorProfile(profile); err != nil {
		t.Fatalf("save profile %s: %v", id, err)
	}
}

func saveCustomer(t *testing.T, st store.Store, id, phone string) {
	t.Helper()
	if err := st.SaveUser(domain.User{
		ID:          id,
		Username:    id,
		Email:       id + "@example.com",
		PhoneNumber: phone,
		Role:        domain.RoleCustomer,
		CreatedAt:   testNow,
	}); err != nil {
		t.Fatalf("save user %s: %v", id, err)
	}
}

// saveOpenJob stores an issue plus its enriched row ready for claiming.
func saveOpenJob(t *testing.T, st store.Store, issueID, jobID, customerID string, priority domain.Priority) {
	t.Helper()
	if err := st.SaveIssue(domain.Issue{
		ID:          issueID,
		CustomerID:  customerID,
		Title:       "Leaky faucet",
		Description: "kitchen faucet dripping",
		Priority:    priority,
		Status:      domain.IssuePendingContractor,
		CreatedAt:   testNow,
		UpdatedAt:   testNow,
	}); err != nil {
		t.Fatalf("save issue: %v", err)
	}
	if err := st.SaveEnrichedIssue(domain.EnrichedIssue{
		ID:                 jobID,
		IssueID:            issueID,
		IdentifiedProblem:  "worn faucet cartridge",
		RepairSolution:     "replace the cartridge",
		EstimatedTimeHours: 1.5,
		DifficultyLevel:    domain.DifficultyEasy,
		TotalQuotedPrice:   180,
		CreatedAt:          testNow,
	}); err != nil {
		t.Fatalf("save enriched issue: %v", err)
	}
}

type fakeVoice struct {
	mu    sync.Mutex
	calls []voice.OfferParams
	fail  bool
}

func (f *fakeVoice) PlaceOfferCall(_ context.Context, p voice.OfferParams) (voice.Call, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return voice.Call{}, fmt.Errorf("provider down")
	}
	f.calls = append(f.calls, p)
	return voice.Call{ID: fmt.Sprintf("call-%d", len(f.calls)), Status: "queued"}, nil
}

func (f *fakeVoice) PlaceNotificationCall(_ context.Context, _ voice.NotificationParams) (voice.Call, error) {
	return voice.Call{ID: "notify-1"}, nil
}

func (f *fakeVoice) offerCalls() []voice.OfferParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]voice.OfferParams, len(f.calls))
	copy(out, f.calls)
	return out
}

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []notify.Notification
	fail  bool
}

func (f *fakeNotifier) Enqueue(_ context.Context, n notify.Notification) (notify.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return notify.Notification{}, fmt.Errorf("redis down")
	}
	f.sent = append(f.sent, n)
	return n, nil
}

type fakeEnricher struct {
	result ai.Enrichment
	err    error
}

func (f *fakeEnricher) Enrich(_ context.Context, _, _ string) (ai.Enrichment, error) {
	return f.result, f.err
}

type fakePublisher struct {
	mu       sync.Mutex
	issueIDs []string
	err      error
}

func (f *fakePublisher) PublishEnrichment(_ context.Context, issueID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.issueIDs = append(f.issueIDs, issueID)
	return nil
}
