package store

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vyomfadia/contract-me/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(
		&UserModel{},
		&IssueModel{},
		&EnrichedIssueModel{},
		&ContractorProfileModel{},
		&AvailabilitySlotModel{},
		&AppointmentModel{},
		&OfferCallModel{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Transaction runs fn inside a database transaction. The Store passed to fn
// issues all its queries against that transaction, so reads made through it
// (including FOR UPDATE locks) stay consistent with the writes until commit.
func (s *GormStore) Transaction(fn func(tx Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// SaveUser creates or updates a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "email", "phone_number", "role", "zip_code"}),
	}).Create(&model).Error
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// FindContractorByPhone resolves a contractor identity from a phone number,
// the correlation key delivered by voice webhooks.
func (s *GormStore) FindContractorByPhone(phone string) (domain.User, bool, error) {
	var model UserModel
	err := s.db.
		Where("phone_number = ?", phone).
		Where("role IN ?", []string{string(domain.RoleContractor), string(domain.RoleBoth)}).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// SaveIssue creates or updates an issue.
func (s *GormStore) SaveIssue(i domain.Issue) error {
	model := issueToModel(i)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "description", "priority", "status", "updated_at"}),
	}).Create(&model).Error
}

// GetIssue retrieves an issue.
func (s *GormStore) GetIssue(id string) (domain.Issue, bool, error) {
	var model IssueModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Issue{}, false, nil
		}
		return domain.Issue{}, false, err
	}
	return issueFromModel(model), true, nil
}

// SetIssueStatus updates issue status.
func (s *GormStore) SetIssueStatus(id string, status domain.IssueStatus) error {
	return s.db.Model(&IssueModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		}).Error
}

// ListUnenrichedIssues returns submitted issues that have no enrichment yet,
// oldest first.
func (s *GormStore) ListUnenrichedIssues(limit int) ([]domain.Issue, error) {
	var models []IssueModel
	q := s.db.
		Where("status = ?", string(domain.IssueSubmitted)).
		Where("id NOT IN (?)", s.db.Model(&EnrichedIssueModel{}).Select("issue_id")).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Issue, 0, len(models))
	for _, m := range models {
		res = append(res, issueFromModel(m))
	}
	return res, nil
}

// SaveEnrichedIssue creates or updates an enrichment.
func (s *GormStore) SaveEnrichedIssue(e domain.EnrichedIssue) error {
	model := enrichedToModel(e)
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"identified_problem", "repair_solution", "estimated_time_hours",
			"difficulty_level", "required_items", "total_quoted_price",
			"questions_for_user", "contractor_checklist",
			"claimed_by_contractor_id", "claimed_at",
		}),
	}).Create(&model).Error
}

// GetEnrichedIssue retrieves an enrichment by ID.
func (s *GormStore) GetEnrichedIssue(id string) (domain.EnrichedIssue, bool, error) {
	return s.getEnriched(s.db, id)
}

// GetEnrichedIssueForUpdate retrieves an enrichment with a row-level
// exclusive lock. Only meaningful inside Transaction; a concurrent claimer
// blocks here until the first transaction commits, then sees its write.
func (s *GormStore) GetEnrichedIssueForUpdate(id string) (domain.EnrichedIssue, bool, error) {
	return s.getEnriched(s.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (s *GormStore) getEnriched(db *gorm.DB, id string) (domain.EnrichedIssue, bool, error) {
	var model EnrichedIssueModel
	if err := db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.EnrichedIssue{}, false, nil
		}
		return domain.EnrichedIssue{}, false, err
	}
	return enrichedFromModel(model), true, nil
}

// GetEnrichedIssueByIssue returns the enrichment attached to an issue.
func (s *GormStore) GetEnrichedIssueByIssue(issueID string) (domain.EnrichedIssue, bool, error) {
	var model EnrichedIssueModel
	if err := s.db.First(&model, "issue_id = ?", issueID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.EnrichedIssue{}, false, nil
		}
		return domain.EnrichedIssue{}, false, err
	}
	return enrichedFromModel(model), true, nil
}

// ListOpenEnrichedIssues returns unclaimed enrichments, oldest first.
func (s *GormStore) ListOpenEnrichedIssues() ([]domain.EnrichedIssue, error) {
	var models []EnrichedIssueModel
	err := s.db.
		Where("claimed_by_contractor_id = '' OR claimed_by_contractor_id IS NULL").
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	res := make([]domain.EnrichedIssue, 0, len(models))
	for _, m := range models {
		res = append(res, enrichedFromModel(m))
	}
	return res, nil
}

// SaveContractorProfile creates or updates a profile.
func (s *GormStore) SaveContractorProfile(p domain.ContractorProfile) error {
	model := profileToModel(p)
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "contractor_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"skills", "specialties", "preferred_job_types", "service_zip_codes",
			"service_radius", "minimum_job_value", "accept_auto_assignment",
			"auto_call_enabled", "years_in_business", "bonded_and_insured",
			"updated_at",
		}),
	}).Create(&model).Error
}

// GetContractorProfile retrieves a profile.
func (s *GormStore) GetContractorProfile(contractorID string) (domain.ContractorProfile, bool, error) {
	var model ContractorProfileModel
	if err := s.db.First(&model, "contractor_id = ?", contractorID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.ContractorProfile{}, false, nil
		}
		return domain.ContractorProfile{}, false, err
	}
	return profileFromModel(model), true, nil
}

// ListAutoAssignableCandidates returns contractors eligible for automatic
// matching: profile opted in, contractor role, phone on file. The filter is
// part of the query, not applied after the fact.
func (s *GormStore) ListAutoAssignableCandidates() ([]Candidate, error) {
	var models []ContractorProfileModel
	err := s.db.
		Select("contractor_profiles.*").
		Joins("JOIN users ON users.id = contractor_profiles.contractor_id").
		Where("contractor_profiles.accept_auto_assignment = ?", true).
		Where("users.role IN ?", []string{string(domain.RoleContractor), string(domain.RoleBoth)}).
		Where("users.phone_number <> ''").
		Order("contractor_profiles.created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	res := make([]Candidate, 0, len(models))
	for _, m := range models {
		user, ok, err := s.GetUserByID(m.ContractorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		res = append(res, Candidate{Contractor: user, Profile: profileFromModel(m)})
	}
	return res, nil
}

// ReplaceAvailability swaps a contractor's full weekly schedule in one
// transaction: delete everything, insert the provided slots.
func (s *GormStore) ReplaceAvailability(contractorID string, slots []domain.AvailabilitySlot) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&AvailabilitySlotModel{}, "contractor_id = ?", contractorID).Error; err != nil {
			return err
		}
		for _, slot := range slots {
			model := slotToModel(slot)
			model.ContractorID = contractorID
			if err := tx.Create(&model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListAvailability returns a contractor's slots sorted by day then start.
func (s *GormStore) ListAvailability(contractorID string) ([]domain.AvailabilitySlot, error) {
	var models []AvailabilitySlotModel
	if err := s.db.Where("contractor_id = ?", contractorID).Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.AvailabilitySlot, 0, len(models))
	for _, m := range models {
		res = append(res, slotFromModel(m))
	}
	sortSlots(res)
	return res, nil
}

// SaveAppointment creates or updates an appointment.
func (s *GormStore) SaveAppointment(a domain.Appointment) error {
	model := appointmentToModel(a)
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"scheduled_date", "estimated_duration", "status", "quoted_price",
			"final_price", "contractor_notes", "customer_notes", "updated_at",
		}),
	}).Create(&model).Error
}

// GetAppointment retrieves an appointment.
func (s *GormStore) GetAppointment(id string) (domain.Appointment, bool, error) {
	var model AppointmentModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Appointment{}, false, nil
		}
		return domain.Appointment{}, false, err
	}
	return appointmentFromModel(model), true, nil
}

// ListAppointmentsByContractor returns a contractor's appointments ascending
// by scheduled date.
func (s *GormStore) ListAppointmentsByContractor(contractorID string) ([]domain.Appointment, error) {
	return s.listAppointments("contractor_id = ?", contractorID)
}

// ListAppointmentsByCustomer returns a customer's appointments ascending by
// scheduled date.
func (s *GormStore) ListAppointmentsByCustomer(customerID string) ([]domain.Appointment, error) {
	return s.listAppointments("customer_id = ?", customerID)
}

// ListBlockingAppointments returns the appointments that occupy a
// contractor's calendar: SCHEDULED, CONFIRMED or IN_PROGRESS. Cancelled and
// completed appointments never block new bookings.
func (s *GormStore) ListBlockingAppointments(contractorID string) ([]domain.Appointment, error) {
	var models []AppointmentModel
	err := s.db.
		Where("contractor_id = ?", contractorID).
		Where("status IN ?", []string{
			string(domain.AppointmentScheduled),
			string(domain.AppointmentConfirmed),
			string(domain.AppointmentInProgress),
		}).
		Order("scheduled_date ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	res := make([]domain.Appointment, 0, len(models))
	for _, m := range models {
		res = append(res, appointmentFromModel(m))
	}
	return res, nil
}

func (s *GormStore) listAppointments(cond string, arg any) ([]domain.Appointment, error) {
	var models []AppointmentModel
	if err := s.db.Where(cond, arg).Order("scheduled_date ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Appointment, 0, len(models))
	for _, m := range models {
		res = append(res, appointmentFromModel(m))
	}
	return res, nil
}

// SaveOfferCall creates or updates an offer record.
func (s *GormStore) SaveOfferCall(o domain.OfferCall) error {
	model := offerToModel(o)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"call_id", "status", "decline_reason", "updated_at"}),
	}).Create(&model).Error
}

// GetOfferCall returns the most recent offer for a job/contractor pair.
func (s *GormStore) GetOfferCall(enrichedIssueID, contractorID string) (domain.OfferCall, bool, error) {
	var model OfferCallModel
	err := s.db.
		Where("enriched_issue_id = ? AND contractor_id = ?", enrichedIssueID, contractorID).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.OfferCall{}, false, nil
		}
		return domain.OfferCall{}, false, err
	}
	return offerFromModel(model), true, nil
}

// ListOfferCallsByJob returns all offers placed for a job, oldest first.
func (s *GormStore) ListOfferCallsByJob(enrichedIssueID string) ([]domain.OfferCall, error) {
	var models []OfferCallModel
	err := s.db.
		Where("enriched_issue_id = ?", enrichedIssueID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	res := make([]domain.OfferCall, 0, len(models))
	for _, m := range models {
		res = append(res, offerFromModel(m))
	}
	return res, nil
}

// sortSlots orders availability by day of week then start time so that slot
// searches always see same-day windows earliest first.
func sortSlots(slots []domain.AvailabilitySlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].DayOfWeek != slots[j].DayOfWeek {
			return slots[i].DayOfWeek.Index() < slots[j].DayOfWeek.Index()
		}
		return slots[i].StartTime < slots[j].StartTime
	})
}

func sortAppointments(appts []domain.Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		return appts[i].ScheduledDate.Before(appts[j].ScheduledDate)
	})
}
