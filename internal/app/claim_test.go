package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vyomfadia/contract-me/internal/store"
	"github.com/vyomfadia/contract-me/pkg/domain"
)

func TestClaimJobAssignsAndSchedules(t *testing.T) {
	st := store.NewMemoryStore()
	a := newTestApp(t, st)

	saveCustomer(t, st, "cust1", "5550001111")
	saveContractor(t, st, "con1", "5550002222", domain.ContractorProfile{Skills: []string{"plumbing"}})
	saveOpenJob(t, st, "issue1", "job1", "cust1", domain.PriorityNormal)
	if _, err := a.ReplaceAvailability("con1", []domain.AvailabilitySlot{
		{DayOfWeek: domain.Thursday, StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
	}); err != nil {
		t.Fatalf("replace availability: %v", err)
	}

	res, err := a.ClaimJob(context.Background(), "job1", "con1")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if res.Job.ClaimedByContractorID != "con1" {
		t.Fatalf("expected claim by con1, got %q", res.Job.ClaimedByContractorID)
	}
	if res.Job.ClaimedAt == nil {
		t.Fatalf("expected claimedAt to be set")
	}

	issue, _, err := st.GetIssue("issue1")
	if err != nil {
		t.Fatalf("get issue: %v", err)
	}
	if issue.Status != domain.IssueAssigned {
		t.Fatalf("expected issue ASSIGNED, got %s", issue.Status)
	}

	if res.Appointment == nil {
		t.Fatalf("expected an appointment")
	}
	wantStart := time.Date(2025, 3, 6, 9, 0, 0, 0, time.UTC)
	if !res.Appointment.ScheduledDate.Equal(wantStart) {
		t.Fatalf("expected appointment at %v, got %v", wantStart, res.Appointment.ScheduledDate)
	}
	// 1.5h estimate stays above the minimum
	if res.Appointment.EstimatedDuration != 90 {
		t.Fatalf("expected 90 minute appointment, got %d", res.Appointment.EstimatedDuration)
	}
	if res.Appointment.Status != domain.AppointmentScheduled {
		t.Fatalf("expected SCHEDULED, got %s", res.Appointment.Status)
	}
	if res.Appointment.QuotedPrice != 180 {
		t.Fatalf("expected quoted price 180, got %v", res.Appointment.QuotedPrice)
	}
}

func TestClaimJobWithoutAvailabilityStillClaims(t *testing.T) {
	st := store.NewMemoryStore()
	a := newTestApp(t, st)

	saveCustomer(t, st, "cust1", "")
	saveContractor(t, st, "con1", "5550002222", domain.ContractorProfile{})
	saveOpenJob(t, st, "issue1", "job1", "cust1", domain.PriorityNormal)

	res, err := a.ClaimJob(context.Background(), "job1", "con1")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if res.Appointment != nil {
		t.Fatalf("expected no appointment without availability")
	}
	if !res.Job.Claimed() {
		t.Fatalf("expected the job to be claimed regardless")
	}
}

func TestClaimJobDurationClamp(t *testing.T) {
	st := store.NewMemoryStore()
	a := newTestApp(t, st)

	saveCustomer(t, st, "cust1", "")

	tests := []struct {
		hours float64
		want  int
	}{
		{10, 480},  // clamped to the max visit
		{0.25, 60}, // clamped to the minimum
		{0, 120},   // missing estimate falls back to the default
		{3, 180},
	}
	for i, tt := range tests {
		suffix := string(rune('a' + i))
		contractorID := "con" + suffix
		issueID := "issue" + suffix
		jobID := "job" + suffix

		saveContractor(t, st, contractorID, "555000"+suffix, domain.ContractorProfile{})
		if _, err := a.ReplaceAvailability(contractorID, []domain.AvailabilitySlot{
			{DayOfWeek: domain.Thursday, StartTime: "08:00", EndTime: "18:00", IsAvailable: true},
		}); err != nil {
			t.Fatalf("replace availability: %v", err)
		}
		saveOpenJob(t, st, issueID, jobID, "cust1", domain.PriorityNormal)
		job, _, _ := st.GetEnrichedIssue(jobID)
		job.EstimatedTimeHours = tt.hours
		if err := st.SaveEnrichedIssue(job); err != nil {
			t.Fatalf("save job: %v", err)
		}

		res, err := a.ClaimJob(context.Background(), jobID, contractorID)
		if err != nil {
			t.Fatalf("claim %s: %v", jobID, err)
		}
		if res.Appointment == nil {
			t.Fatalf("claim %s: expected an appointment", jobID)
		}
		if res.Appointment.EstimatedDuration != tt.want {
			t.Fatalf("hours %v: expected %d minutes, got %d", tt.hours, tt.want, res.Appointment.EstimatedDuration)
		}
	}
}

func TestClaimJobAlreadyClaimed(t *testing.T) {
	st := store.NewMemoryStore()
	a := newTestApp(t, st)

	saveCustomer(t, st, "cust1", "")
	saveContractor(t, st, "con1", "5550002222", domain.ContractorProfile{})
	saveContractor(t, st, "con2", "5550003333", domain.ContractorProfile{})
	saveOpenJob(t, st, "issue1", "job1", "cust1", domain.PriorityNormal)

	if _, err := a.ClaimJob(context.Background(), "job1", "con1"); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	_, err := a.ClaimJob(context.Background(), "job1", "con2")
	if !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}

	job, _, err := st.GetEnrichedIssue("job1")
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.ClaimedByContractorID != "con1" {
		t.Fatalf("expected con1 to keep the claim, got %q", job.ClaimedByContractorID)
	}
}

func TestClaimJobNotFound(t *testing.T) {
	st := store.NewMemoryStore()
	a := newTestApp(t, st)
	saveContractor(t, st, "con1", "5550002222", domain.ContractorProfile{})

	if _, err := a.ClaimJob(context.Background(), "missing", "con1"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestClaimJobConcurrentSingleWinner(t *testing.T) {
	st := store.NewMemoryStore()
	a := newTestApp(t, st)

	saveCustomer(t, st, "cust1", "")
	const contractors = 8
	ids := make([]string, 0, contractors)
	for i := 0; i < contractors; i++ {
		id := "con" + string(rune('a'+i))
		saveContractor(t, st, id, "555000"+string(rune('a'+i)), domain.ContractorProfile{})
		ids = append(ids, id)
	}
	saveOpenJob(t, st, "issue1", "job1", "cust1", domain.PriorityUrgent)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []string
		losses  int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(contractorID string) {
			defer wg.Done()
			_, err := a.ClaimJob(context.Background(), "job1", contractorID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, contractorID)
			case errors.Is(err, ErrAlreadyClaimed):
				losses++
			default:
				t.Errorf("unexpected error for %s: %v", contractorID, err)
			}
		}(id)
	}
	wg.Wait()

	if len(winners) != 1 {
		t.Fatalf("expected exactly one winner, got %v", winners)
	}
	if losses != contractors-1 {
		t.Fatalf("expected %d losers, got %d", contractors-1, losses)
	}

	job, _, err := st.GetEnrichedIssue("job1")
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.ClaimedByContractorID != winners[0] {
		t.Fatalf("stored claim %q does not match winner %q", job.ClaimedByContractorID, winners[0])
	}
}

func TestClaimJobNotifiesCustomer(t *testing.T) {
	st := store.NewMemoryStore()
	notifier := &fakeNotifier{}
	a := New(Deps{
		Store:    st,
		Notifier: notifier,
		Now:      func() time.Time { return testNow },
	}, Config{})

	saveCustomer(t, st, "cust1", "5559998888")
	saveContractor(t, st, "con1", "5550002222", domain.ContractorProfile{})
	saveOpenJob(t, st, "issue1", "job1", "cust1", domain.PriorityNormal)

	if _, err := a.ClaimJob(context.Background(), "job1", "con1"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.sent))
	}
	n := notifier.sent[0]
	if n.PhoneNumber != "5559998888" || n.ContractorName != "con1" || n.EnrichedIssueID != "job1" {
		t.Fatalf("unexpected notification %+v", n)
	}
}

func TestClaimJobNotifierFailureDoesNotUndoClaim(t *testing.T) {
	st := store.NewMemoryStore()
	notifier := &fakeNotifier{fail: true}
	a := New(Deps{
		Store:    st,
		Notifier: notifier,
		Now:      func() time.Time { return testNow },
	}, Config{})

	saveCustomer(t, st, "cust1", "5559998888")
	saveContractor(t, st, "con1", "5550002222", domain.ContractorProfile{})
	saveOpenJob(t, st, "issue1", "job1", "cust1", domain.PriorityNormal)

	if _, err := a.ClaimJob(context.Background(), "job1", "con1"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	job, _, err := st.GetEnrichedIssue("job1")
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if !job.Claimed() {
		t.Fatalf("claim must survive a notification failure")
	}
}
