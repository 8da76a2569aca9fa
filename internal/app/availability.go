package app

import "github.com/vyomfadia/contract-me/pkg/domain"

// ReplaceAvailability swaps the contractor's weekly schedule for the given
// slots. Slots missing a day or time, with an unparseable clock, or whose
// start is not before their end are dropped without error. Returns how
// many slots were kept.
func (a *App) ReplaceAvailability(contractorID string, slots []domain.AvailabilitySlot) (int, error) {
	valid := make([]domain.AvailabilitySlot, 0, len(slots))
	for _, s := range slots {
		if s.DayOfWeek == "" || s.StartTime == "" || s.EndTime == "" {
			continue
		}
		if !validDayOfWeek(s.DayOfWeek) {
			continue
		}
		sh, sm, err := parseClock(s.StartTime)
		if err != nil {
			continue
		}
		eh, em, err := parseClock(s.EndTime)
		if err != nil {
			continue
		}
		if sh*60+sm >= eh*60+em {
			continue
		}
		s.ContractorID = contractorID
		valid = append(valid, s)
	}
	if err := a.store.ReplaceAvailability(contractorID, valid); err != nil {
		return 0, err
	}
	return len(valid), nil
}

// ListAvailability returns the contractor's schedule sorted by day, then
// start time.
func (a *App) ListAvailability(contractorID string) ([]domain.AvailabilitySlot, error) {
	return a.store.ListAvailability(contractorID)
}

func validDayOfWeek(d domain.DayOfWeek) bool {
	switch d {
	case domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday,
		domain.Friday, domain.Saturday, domain.Sunday:
		return true
	}
	return false
}
