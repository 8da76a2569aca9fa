package app

import (
	"fmt"

	"github.com/vyomfadia/contract-me/pkg/domain"
)

// AppointmentUpdate carries the mutable appointment fields. Nil means
// leave unchanged.
type AppointmentUpdate struct {
	Status          *domain.AppointmentStatus
	QuotedPrice     *float64
	FinalPrice      *float64
	ContractorNotes *string
	CustomerNotes   *string
}

// ListAppointmentsFor returns the user's appointments: a contractor sees
// their work calendar, everyone else sees the visits booked for them.
func (a *App) ListAppointmentsFor(user domain.User) ([]domain.Appointment, error) {
	if user.Role == domain.RoleContractor {
		return a.store.ListAppointmentsByContractor(user.ID)
	}
	return a.store.ListAppointmentsByCustomer(user.ID)
}

// UpdateAppointment applies the given changes. Only the contractor or
// customer on the appointment may modify it.
func (a *App) UpdateAppointment(user domain.User, appointmentID string, upd AppointmentUpdate) (domain.Appointment, error) {
	appt, ok, err := a.store.GetAppointment(appointmentID)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("load appointment: %w", err)
	}
	if !ok {
		return domain.Appointment{}, ErrAppointmentNotFound
	}
	if appt.ContractorID != user.ID && appt.CustomerID != user.ID {
		return domain.Appointment{}, ErrNotAuthorized
	}

	if upd.Status != nil {
		if !validAppointmentStatus(*upd.Status) {
			return domain.Appointment{}, ErrInvalidStatus
		}
		appt.Status = *upd.Status
	}
	if upd.QuotedPrice != nil {
		appt.QuotedPrice = *upd.QuotedPrice
	}
	if upd.FinalPrice != nil {
		appt.FinalPrice = *upd.FinalPrice
	}
	if upd.ContractorNotes != nil {
		appt.ContractorNotes = *upd.ContractorNotes
	}
	if upd.CustomerNotes != nil {
		appt.CustomerNotes = *upd.CustomerNotes
	}
	appt.UpdatedAt = a.now()

	if err := a.store.SaveAppointment(appt); err != nil {
		return domain.Appointment{}, fmt.Errorf("save appointment: %w", err)
	}
	return appt, nil
}

func validAppointmentStatus(s domain.AppointmentStatus) bool {
	switch s {
	case domain.AppointmentScheduled, domain.AppointmentConfirmed,
		domain.AppointmentInProgress, domain.AppointmentCompleted,
		domain.AppointmentCancelled, domain.AppointmentRescheduled:
		return true
	}
	return false
}
