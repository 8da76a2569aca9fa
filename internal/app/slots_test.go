package app

import (
	"testing"
	"time"

	"github.com/vyomfadia/contract-me/pkg/domain"
)

// Wednesday March 5 2025, 08:00 UTC.
var testNow = time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC)

func weeklySlot(day domain.DayOfWeek, start, end string) domain.AvailabilitySlot {
	return domain.AvailabilitySlot{
		ContractorID: "c1",
		DayOfWeek:    day,
		StartTime:    start,
		EndTime:      end,
		IsAvailable:  true,
	}
}

func bookedAppt(start time.Time, minutes int, status domain.AppointmentStatus) domain.Appointment {
	return domain.Appointment{
		ID:                "a1",
		ContractorID:      "c1",
		ScheduledDate:     start,
		EstimatedDuration: minutes,
		Status:            status,
	}
}

// Candidates are checked against bookings with this fixed two-hour window,
// not the job's own duration estimate. A job estimated longer than two
// hours can therefore be offered a start that runs into the next booking.
func testSlotConfig() SlotSearchConfig {
	return SlotSearchConfig{
		CandidateDuration: 120 * time.Minute,
		DefaultPriority:   domain.PriorityNormal,
	}
}

func TestNextAvailableSlotFindsUpcomingDay(t *testing.T) {
	slots := []domain.AvailabilitySlot{weeklySlot(domain.Monday, "09:00", "17:00")}

	got, ok := NextAvailableSlot(testNow, domain.PriorityNormal, slots, nil, testSlotConfig())
	if !ok {
		t.Fatalf("expected a slot, got none")
	}
	want := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNextAvailableSlotSameDayLaterStart(t *testing.T) {
	slots := []domain.AvailabilitySlot{weeklySlot(domain.Wednesday, "09:00", "17:00")}

	got, ok := NextAvailableSlot(testNow, domain.PriorityNormal, slots, nil, testSlotConfig())
	if !ok {
		t.Fatalf("expected a slot, got none")
	}
	want := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected same-day %v, got %v", want, got)
	}
}

func TestNextAvailableSlotSkipsPastStartToday(t *testing.T) {
	// 08:00 slot already started; next Wednesday is within the NORMAL horizon.
	slots := []domain.AvailabilitySlot{weeklySlot(domain.Wednesday, "07:00", "12:00")}

	got, ok := NextAvailableSlot(testNow, domain.PriorityNormal, slots, nil, testSlotConfig())
	if !ok {
		t.Fatalf("expected a slot, got none")
	}
	want := time.Date(2025, 3, 12, 7, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected next week's %v, got %v", want, got)
	}
}

func TestNextAvailableSlotConflictMovesToNextDay(t *testing.T) {
	slots := []domain.AvailabilitySlot{
		weeklySlot(domain.Wednesday, "09:00", "17:00"),
		weeklySlot(domain.Thursday, "09:00", "17:00"),
	}
	booked := []domain.Appointment{
		bookedAppt(time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC), 120, domain.AppointmentScheduled),
	}

	got, ok := NextAvailableSlot(testNow, domain.PriorityNormal, slots, booked, testSlotConfig())
	if !ok {
		t.Fatalf("expected a slot, got none")
	}
	want := time.Date(2025, 3, 6, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNextAvailableSlotPartialOverlapBlocks(t *testing.T) {
	slots := []domain.AvailabilitySlot{
		weeklySlot(domain.Wednesday, "09:00", "17:00"),
		weeklySlot(domain.Thursday, "09:00", "17:00"),
	}
	// 10:00-12:00 booking intersects the tail of a 09:00-11:00 candidate.
	booked := []domain.Appointment{
		bookedAppt(time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC), 120, domain.AppointmentConfirmed),
	}

	got, ok := NextAvailableSlot(testNow, domain.PriorityNormal, slots, booked, testSlotConfig())
	if !ok {
		t.Fatalf("expected a slot, got none")
	}
	want := time.Date(2025, 3, 6, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNextAvailableSlotCancelledBookingDoesNotBlock(t *testing.T) {
	slots := []domain.AvailabilitySlot{weeklySlot(domain.Wednesday, "09:00", "17:00")}
	booked := []domain.Appointment{
		bookedAppt(time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC), 120, domain.AppointmentCancelled),
		bookedAppt(time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC), 120, domain.AppointmentCompleted),
	}

	got, ok := NextAvailableSlot(testNow, domain.PriorityNormal, slots, booked, testSlotConfig())
	if !ok {
		t.Fatalf("expected a slot, got none")
	}
	want := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNextAvailableSlotEmergencyHorizon(t *testing.T) {
	// Monday is five days out, far beyond the 24 hour emergency window.
	slots := []domain.AvailabilitySlot{weeklySlot(domain.Monday, "09:00", "17:00")}

	if _, ok := NextAvailableSlot(testNow, domain.PriorityEmergency, slots, nil, testSlotConfig()); ok {
		t.Fatalf("expected no slot within the emergency horizon")
	}

	// The same schedule is reachable for a normal job.
	if _, ok := NextAvailableSlot(testNow, domain.PriorityNormal, slots, nil, testSlotConfig()); !ok {
		t.Fatalf("expected a slot within the normal horizon")
	}
}

func TestNextAvailableSlotHorizonProperty(t *testing.T) {
	slots := []domain.AvailabilitySlot{
		weeklySlot(domain.Monday, "09:00", "17:00"),
		weeklySlot(domain.Wednesday, "09:00", "17:00"),
		weeklySlot(domain.Friday, "13:30", "17:00"),
	}
	for _, p := range []domain.Priority{
		domain.PriorityEmergency,
		domain.PriorityUrgent,
		domain.PriorityNormal,
		domain.PriorityLow,
	} {
		got, ok := NextAvailableSlot(testNow, p, slots, nil, testSlotConfig())
		if !ok {
			continue
		}
		deadline := testNow.Add(horizonForPriority(p, domain.PriorityNormal))
		if got.After(deadline) {
			t.Fatalf("priority %s: slot %v exceeds horizon %v", p, got, deadline)
		}
		if !got.After(testNow) {
			t.Fatalf("priority %s: slot %v not in the future", p, got)
		}
	}
}

func TestNextAvailableSlotUnknownPriorityUsesDefault(t *testing.T) {
	slots := []domain.AvailabilitySlot{weeklySlot(domain.Monday, "09:00", "17:00")}

	got, ok := NextAvailableSlot(testNow, "WHENEVER", slots, nil, testSlotConfig())
	if !ok {
		t.Fatalf("expected a slot under the default horizon")
	}
	want := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNextAvailableSlotNoAvailability(t *testing.T) {
	if _, ok := NextAvailableSlot(testNow, domain.PriorityNormal, nil, nil, testSlotConfig()); ok {
		t.Fatalf("expected no slot without availability")
	}

	off := weeklySlot(domain.Wednesday, "09:00", "17:00")
	off.IsAvailable = false
	if _, ok := NextAvailableSlot(testNow, domain.PriorityNormal, []domain.AvailabilitySlot{off}, nil, testSlotConfig()); ok {
		t.Fatalf("expected unavailable slots to be ignored")
	}
}

func TestNextAvailableSlotSameDayOrderPreserved(t *testing.T) {
	slots := []domain.AvailabilitySlot{
		weeklySlot(domain.Wednesday, "09:00", "12:00"),
		weeklySlot(domain.Wednesday, "13:00", "17:00"),
	}

	got, ok := NextAvailableSlot(testNow, domain.PriorityNormal, slots, nil, testSlotConfig())
	if !ok {
		t.Fatalf("expected a slot, got none")
	}
	want := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected earliest same-day slot %v, got %v", want, got)
	}
}

func TestNextAvailableSlotIsIdempotent(t *testing.T) {
	slots := []domain.AvailabilitySlot{weeklySlot(domain.Wednesday, "09:00", "17:00")}

	first, ok1 := NextAvailableSlot(testNow, domain.PriorityNormal, slots, nil, testSlotConfig())
	second, ok2 := NextAvailableSlot(testNow, domain.PriorityNormal, slots, nil, testSlotConfig())
	if !ok1 || !ok2 || !first.Equal(second) {
		t.Fatalf("expected identical results, got %v/%v and %v/%v", first, ok1, second, ok2)
	}
}

func TestNextAvailableSlotMalformedClockSkipped(t *testing.T) {
	slots := []domain.AvailabilitySlot{
		weeklySlot(domain.Wednesday, "9am", "17:00"),
		weeklySlot(domain.Wednesday, "10:30", "17:00"),
	}

	got, ok := NextAvailableSlot(testNow, domain.PriorityNormal, slots, nil, testSlotConfig())
	if !ok {
		t.Fatalf("expected the parseable slot to be used")
	}
	want := time.Date(2025, 3, 5, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
