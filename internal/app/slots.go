package app

import (
	"fmt"
	"time"

	"github.com/vyomfadia/contract-me/internal/store"
	"github.com/vyomfadia/contract-me/pkg/domain"
)

// Search horizons per priority. Higher urgency narrows the window so an
// emergency job is never booked a week out.
const (
	horizonEmergency = 24 * time.Hour
	horizonUrgent    = 48 * time.Hour
	horizonNormal    = 7 * 24 * time.Hour
	horizonLow       = 14 * 24 * time.Hour
)

// SlotSearchConfig tunes the pure slot finder.
type SlotSearchConfig struct {
	// CandidateDuration is the fixed window a candidate start is checked
	// with, regardless of the job's own estimate.
	CandidateDuration time.Duration
	// DefaultPriority applies when the priority value is not recognized.
	DefaultPriority domain.Priority
}

func horizonForPriority(p, fallback domain.Priority) time.Duration {
	switch p {
	case domain.PriorityEmergency:
		return horizonEmergency
	case domain.PriorityUrgent:
		return horizonUrgent
	case domain.PriorityNormal:
		return horizonNormal
	case domain.PriorityLow:
		return horizonLow
	}
	if fallback != "" && fallback != p {
		return horizonForPriority(fallback, "")
	}
	return horizonNormal
}

// NextAvailableSlot finds the earliest bookable start for a contractor:
// the first weekly availability slot, scanning day by day from now, whose
// candidate window does not overlap any blocking appointment. The second
// return is false when no slot exists within the priority's horizon.
//
// Candidate starts are wall-clock times in now's location. Same-day
// slots are tried in the order given, so callers should pass
// availability sorted by day and start time.
func NextAvailableSlot(now time.Time, priority domain.Priority, slots []domain.AvailabilitySlot, booked []domain.Appointment, cfg SlotSearchConfig) (time.Time, bool) {
	if cfg.CandidateDuration <= 0 {
		cfg.CandidateDuration = defaultCandidateSlotDuration
	}

	avail := make([]domain.AvailabilitySlot, 0, len(slots))
	for _, s := range slots {
		if s.IsAvailable {
			avail = append(avail, s)
		}
	}
	if len(avail) == 0 {
		return time.Time{}, false
	}

	blocking := make([]domain.Appointment, 0, len(booked))
	for _, appt := range booked {
		if appt.Status.Blocks() {
			blocking = append(blocking, appt)
		}
	}

	deadline := now.Add(horizonForPriority(priority, cfg.DefaultPriority))
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for ; !day.After(deadline); day = day.AddDate(0, 0, 1) {
		dow := domain.DayOfWeekFor(day.Weekday())
		for _, slot := range avail {
			if slot.DayOfWeek != dow {
				continue
			}
			hh, mm, err := parseClock(slot.StartTime)
			if err != nil {
				continue
			}
			cand := time.Date(day.Year(), day.Month(), day.Day(), hh, mm, 0, 0, now.Location())
			if !cand.After(now) || cand.After(deadline) {
				continue
			}
			if overlapsAny(cand, cand.Add(cfg.CandidateDuration), blocking) {
				continue
			}
			return cand, true
		}
	}
	return time.Time{}, false
}

// overlapsAny reports whether [start, end) intersects any appointment's
// scheduled window.
func overlapsAny(start, end time.Time, appts []domain.Appointment) bool {
	for _, appt := range appts {
		if start.Before(appt.End()) && end.After(appt.ScheduledDate) {
			return true
		}
	}
	return false
}

// parseClock parses an "HH:MM" wall-clock string.
func parseClock(s string) (hour, minute int, err error) {
	if len(s) > 5 {
		s = s[:5]
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

func (a *App) slotConfig() SlotSearchConfig {
	return SlotSearchConfig{
		CandidateDuration: a.cfg.CandidateSlotDuration,
		DefaultPriority:   a.cfg.DefaultPriority,
	}
}

// FindNextSlot runs the slot finder against the contractor's stored
// availability and current bookings.
func (a *App) FindNextSlot(contractorID string, priority domain.Priority) (time.Time, bool, error) {
	return a.findNextSlot(a.store, contractorID, priority, a.now())
}

func (a *App) findNextSlot(s store.Store, contractorID string, priority domain.Priority, now time.Time) (time.Time, bool, error) {
	slots, err := s.ListAvailability(contractorID)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("list availability: %w", err)
	}
	booked, err := s.ListBlockingAppointments(contractorID)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("list appointments: %w", err)
	}
	at, ok := NextAvailableSlot(now, priority, slots, booked, a.slotConfig())
	return at, ok, nil
}
