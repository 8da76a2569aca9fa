package app

import (
	"errors"
	"testing"
	"time"

	"github.com/vyomfadia/contract-me/internal/store"
	"github.com/vyomfadia/contract-me/pkg/domain"
)

func seedAppointment(t *testing.T, st store.Store) domain.Appointment {
	t.Helper()
	appt := domain.Appointment{
		ID:                "appt1",
		IssueID:           "issue1",
		ContractorID:      "con1",
		CustomerID:        "cust1",
		ScheduledDate:     time.Date(2025, 3, 6, 9, 0, 0, 0, time.UTC),
		EstimatedDuration: 120,
		Status:            domain.AppointmentScheduled,
		CreatedAt:         testNow,
		UpdatedAt:         testNow,
	}
	if err := st.SaveAppointment(appt); err != nil {
		t.Fatalf("save appointment: %v", err)
	}
	return appt
}

func TestUpdateAppointmentByParties(t *testing.T) {
	st := store.NewMemoryStore()
	a := newTestApp(t, st)
	seedAppointment(t, st)

	contractor := domain.User{ID: "con1", Role: domain.RoleContractor}
	status := domain.AppointmentConfirmed
	notes := "bringing replacement cartridge"
	updated, err := a.UpdateAppointment(contractor, "appt1", AppointmentUpdate{
		Status:          &status,
		ContractorNotes: &notes,
	})
	if err != nil {
		t.Fatalf("contractor update: %v", err)
	}
	if updated.Status != domain.AppointmentConfirmed || updated.ContractorNotes != notes {
		t.Fatalf("unexpected update %+v", updated)
	}

	customer := domain.User{ID: "cust1", Role: domain.RoleCustomer}
	custNotes := "gate code 4411"
	updated, err = a.UpdateAppointment(customer, "appt1", AppointmentUpdate{CustomerNotes: &custNotes})
	if err != nil {
		t.Fatalf("customer update: %v", err)
	}
	if updated.CustomerNotes != custNotes {
		t.Fatalf("expected customer notes persisted, got %+v", updated)
	}
	// earlier change must survive
	if updated.Status != domain.AppointmentConfirmed {
		t.Fatalf("expected CONFIRMED to persist, got %s", updated.Status)
	}

	rescheduled := domain.AppointmentRescheduled
	updated, err = a.UpdateAppointment(customer, "appt1", AppointmentUpdate{Status: &rescheduled})
	if err != nil {
		t.Fatalf("reschedule update: %v", err)
	}
	if updated.Status != domain.AppointmentRescheduled {
		t.Fatalf("expected RESCHEDULED, got %s", updated.Status)
	}
}

func TestUpdateAppointmentRejectsStrangers(t *testing.T) {
	st := store.NewMemoryStore()
	a := newTestApp(t, st)
	seedAppointment(t, st)

	stranger := domain.User{ID: "other", Role: domain.RoleContractor}
	status := domain.AppointmentCancelled
	if _, err := a.UpdateAppointment(stranger, "appt1", AppointmentUpdate{Status: &status}); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestUpdateAppointmentInvalidStatus(t *testing.T) {
	st := store.NewMemoryStore()
	a := newTestApp(t, st)
	seedAppointment(t, st)

	bad := domain.AppointmentStatus("POSTPONED")
	contractor := domain.User{ID: "con1", Role: domain.RoleContractor}
	if _, err := a.UpdateAppointment(contractor, "appt1", AppointmentUpdate{Status: &bad}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestUpdateAppointmentNotFound(t *testing.T) {
	st := store.NewMemoryStore()
	a := newTestApp(t, st)

	user := domain.User{ID: "con1", Role: domain.RoleContractor}
	if _, err := a.UpdateAppointment(user, "missing", AppointmentUpdate{}); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestListAppointmentsForRole(t *testing.T) {
	st := store.NewMemoryStore()
	a := newTestApp(t, st)
	seedAppointment(t, st)

	contractor := domain.User{ID: "con1", Role: domain.RoleContractor}
	got, err := a.ListAppointmentsFor(contractor)
	if err != nil || len(got) != 1 {
		t.Fatalf("contractor view: %v %v", got, err)
	}

	customer := domain.User{ID: "cust1", Role: domain.RoleCustomer}
	got, err = a.ListAppointmentsFor(customer)
	if err != nil || len(got) != 1 {
		t.Fatalf("customer view: %v %v", got, err)
	}

	unrelated := domain.User{ID: "nobody", Role: domain.RoleCustomer}
	got, err = a.ListAppointmentsFor(unrelated)
	if err != nil || len(got) != 0 {
		t.Fatalf("unrelated view: %v %v", got, err)
	}
}
