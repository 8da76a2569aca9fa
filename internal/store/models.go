package store

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/vyomfadia/contract-me/pkg/domain"
)

// GORM models used for persistence.
type UserModel struct {
	ID          string `gorm:"primaryKey"`
	Username    string `gorm:"not null"`
	Email       string `gorm:"uniqueIndex;not null"`
	PhoneNumber string `gorm:"index"`
	Role        string `gorm:"not null"`
	ZipCode     string
	CreatedAt   time.Time `gorm:"not null"`
}

func (UserModel) TableName() string { return "users" }

type IssueModel struct {
	ID          string `gorm:"primaryKey"`
	CustomerID  string `gorm:"not null;index"`
	Title       string
	Description string    `gorm:"type:text;not null"`
	Priority    string    `gorm:"not null"`
	Status      string    `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"not null;index"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (IssueModel) TableName() string { return "issues" }

type EnrichedIssueModel struct {
	ID                    string `gorm:"primaryKey"`
	IssueID               string `gorm:"uniqueIndex;not null"`
	IdentifiedProblem     string `gorm:"type:text;not null"`
	RepairSolution        string `gorm:"type:text;not null"`
	EstimatedTimeHours    float64
	DifficultyLevel       string         `gorm:"not null"`
	RequiredItems         datatypes.JSON `gorm:"type:jsonb"`
	TotalQuotedPrice      float64
	QuestionsForUser      datatypes.JSON `gorm:"type:jsonb"`
	ContractorChecklist   datatypes.JSON `gorm:"type:jsonb"`
	ClaimedByContractorID string         `gorm:"index"`
	ClaimedAt             *time.Time
	CreatedAt             time.Time `gorm:"not null;index"`
}

func (EnrichedIssueModel) TableName() string { return "enriched_issues" }

type ContractorProfileModel struct {
	ContractorID         string         `gorm:"primaryKey"`
	Skills               datatypes.JSON `gorm:"type:jsonb"`
	Specialties          datatypes.JSON `gorm:"type:jsonb"`
	PreferredJobTypes    datatypes.JSON `gorm:"type:jsonb"`
	ServiceZipCodes      datatypes.JSON `gorm:"type:jsonb"`
	ServiceRadius        int
	MinimumJobValue      float64
	AcceptAutoAssignment bool `gorm:"index"`
	AutoCallEnabled      bool
	YearsInBusiness      int
	BondedAndInsured     bool
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`
}

func (ContractorProfileModel) TableName() string { return "contractor_profiles" }

type AvailabilitySlotModel struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	ContractorID string `gorm:"not null;index"`
	DayOfWeek    string `gorm:"not null"`
	StartTime    string `gorm:"not null"`
	EndTime      string `gorm:"not null"`
	IsAvailable  bool   `gorm:"not null"`
}

func (AvailabilitySlotModel) TableName() string { return "availability_slots" }

type AppointmentModel struct {
	ID                string    `gorm:"primaryKey"`
	IssueID           string    `gorm:"not null;index"`
	ContractorID      string    `gorm:"not null;index"`
	CustomerID        string    `gorm:"not null;index"`
	ScheduledDate     time.Time `gorm:"not null"`
	EstimatedDuration int       `gorm:"not null"`
	Status            string    `gorm:"not null;index"`
	QuotedPrice       float64
	FinalPrice        float64
	ContractorNotes   string    `gorm:"type:text"`
	CustomerNotes     string    `gorm:"type:text"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

func (AppointmentModel) TableName() string { return "appointments" }

type OfferCallModel struct {
	ID              string `gorm:"primaryKey"`
	EnrichedIssueID string `gorm:"not null;index"`
	ContractorID    string `gorm:"not null;index"`
	PhoneNumber     string
	CallID          string `gorm:"index"`
	Status          string `gorm:"not null"`
	DeclineReason   string
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

func (OfferCallModel) TableName() string { return "offer_calls" }

func toJSON(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}

func fromJSONStrings(data datatypes.JSON) []string {
	if len(data) == 0 {
		return nil
	}
	var out []string
	_ = json.Unmarshal(data, &out)
	return out
}

func fromJSONDifficulties(data datatypes.JSON) []domain.Difficulty {
	if len(data) == 0 {
		return nil
	}
	var out []domain.Difficulty
	_ = json.Unmarshal(data, &out)
	return out
}

func fromJSONItems(data datatypes.JSON) []domain.RequiredItem {
	if len(data) == 0 {
		return nil
	}
	var out []domain.RequiredItem
	_ = json.Unmarshal(data, &out)
	return out
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        string(u.Role),
		ZipCode:     u.ZipCode,
		CreatedAt:   u.CreatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:          m.ID,
		Username:    m.Username,
		Email:       m.Email,
		PhoneNumber: m.PhoneNumber,
		Role:        domain.Role(m.Role),
		ZipCode:     m.ZipCode,
		CreatedAt:   m.CreatedAt,
	}
}

func issueToModel(i domain.Issue) IssueModel {
	return IssueModel{
		ID:          i.ID,
		CustomerID:  i.CustomerID,
		Title:       i.Title,
		Description: i.Description,
		Priority:    string(i.Priority),
		Status:      string(i.Status),
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func issueFromModel(m IssueModel) domain.Issue {
	return domain.Issue{
		ID:          m.ID,
		CustomerID:  m.CustomerID,
		Title:       m.Title,
		Description: m.Description,
		Priority:    domain.Priority(m.Priority),
		Status:      domain.IssueStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func enrichedToModel(e domain.EnrichedIssue) EnrichedIssueModel {
	return EnrichedIssueModel{
		ID:                    e.ID,
		IssueID:               e.IssueID,
		IdentifiedProblem:     e.IdentifiedProblem,
		RepairSolution:        e.RepairSolution,
		EstimatedTimeHours:    e.EstimatedTimeHours,
		DifficultyLevel:       string(e.DifficultyLevel),
		RequiredItems:         toJSON(e.RequiredItems),
		TotalQuotedPrice:      e.TotalQuotedPrice,
		QuestionsForUser:      toJSON(e.QuestionsForUser),
		ContractorChecklist:   toJSON(e.ContractorChecklist),
		ClaimedByContractorID: e.ClaimedByContractorID,
		ClaimedAt:             e.ClaimedAt,
		CreatedAt:             e.CreatedAt,
	}
}

func enrichedFromModel(m EnrichedIssueModel) domain.EnrichedIssue {
	return domain.EnrichedIssue{
		ID:                    m.ID,
		IssueID:               m.IssueID,
		IdentifiedProblem:     m.IdentifiedProblem,
		RepairSolution:        m.RepairSolution,
		EstimatedTimeHours:    m.EstimatedTimeHours,
		DifficultyLevel:       domain.Difficulty(m.DifficultyLevel),
		RequiredItems:         fromJSONItems(m.RequiredItems),
		TotalQuotedPrice:      m.TotalQuotedPrice,
		QuestionsForUser:      fromJSONStrings(m.QuestionsForUser),
		ContractorChecklist:   fromJSONStrings(m.ContractorChecklist),
		ClaimedByContractorID: m.ClaimedByContractorID,
		ClaimedAt:             m.ClaimedAt,
		CreatedAt:             m.CreatedAt,
	}
}

func profileToModel(p domain.ContractorProfile) ContractorProfileModel {
	return ContractorProfileModel{
		ContractorID:         p.ContractorID,
		Skills:               toJSON(p.Skills),
		Specialties:          toJSON(p.Specialties),
		PreferredJobTypes:    toJSON(p.PreferredJobTypes),
		ServiceZipCodes:      toJSON(p.ServiceZipCodes),
		ServiceRadius:        p.ServiceRadius,
		MinimumJobValue:      p.MinimumJobValue,
		AcceptAutoAssignment: p.AcceptAutoAssignment,
		AutoCallEnabled:      p.AutoCallEnabled,
		YearsInBusiness:      p.YearsInBusiness,
		BondedAndInsured:     p.BondedAndInsured,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

func profileFromModel(m ContractorProfileModel) domain.ContractorProfile {
	return domain.ContractorProfile{
		ContractorID:         m.ContractorID,
		Skills:               fromJSONStrings(m.Skills),
		Specialties:          fromJSONStrings(m.Specialties),
		PreferredJobTypes:    fromJSONDifficulties(m.PreferredJobTypes),
		ServiceZipCodes:      fromJSONStrings(m.ServiceZipCodes),
		ServiceRadius:        m.ServiceRadius,
		MinimumJobValue:      m.MinimumJobValue,
		AcceptAutoAssignment: m.AcceptAutoAssignment,
		AutoCallEnabled:      m.AutoCallEnabled,
		YearsInBusiness:      m.YearsInBusiness,
		BondedAndInsured:     m.BondedAndInsured,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func slotToModel(s domain.AvailabilitySlot) AvailabilitySlotModel {
	return AvailabilitySlotModel{
		ContractorID: s.ContractorID,
		DayOfWeek:    string(s.DayOfWeek),
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		IsAvailable:  s.IsAvailable,
	}
}

func slotFromModel(m AvailabilitySlotModel) domain.AvailabilitySlot {
	return domain.AvailabilitySlot{
		ContractorID: m.ContractorID,
		DayOfWeek:    domain.DayOfWeek(m.DayOfWeek),
		StartTime:    m.StartTime,
		EndTime:      m.EndTime,
		IsAvailable:  m.IsAvailable,
	}
}

func appointmentToModel(a domain.Appointment) AppointmentModel {
	return AppointmentModel{
		ID:                a.ID,
		IssueID:           a.IssueID,
		ContractorID:      a.ContractorID,
		CustomerID:        a.CustomerID,
		ScheduledDate:     a.ScheduledDate,
		EstimatedDuration: a.EstimatedDuration,
		Status:            string(a.Status),
		QuotedPrice:       a.QuotedPrice,
		FinalPrice:        a.FinalPrice,
		ContractorNotes:   a.ContractorNotes,
		CustomerNotes:     a.CustomerNotes,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func appointmentFromModel(m AppointmentModel) domain.Appointment {
	return domain.Appointment{
		ID:                m.ID,
		IssueID:           m.IssueID,
		ContractorID:      m.ContractorID,
		CustomerID:        m.CustomerID,
		ScheduledDate:     m.ScheduledDate,
		EstimatedDuration: m.EstimatedDuration,
		Status:            domain.AppointmentStatus(m.Status),
		QuotedPrice:       m.QuotedPrice,
		FinalPrice:        m.FinalPrice,
		ContractorNotes:   m.ContractorNotes,
		CustomerNotes:     m.CustomerNotes,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func offerToModel(o domain.OfferCall) OfferCallModel {
	return OfferCallModel{
		ID:              o.ID,
		EnrichedIssueID: o.EnrichedIssueID,
		ContractorID:    o.ContractorID,
		PhoneNumber:     o.PhoneNumber,
		CallID:          o.CallID,
		Status:          string(o.Status),
		DeclineReason:   o.DeclineReason,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func offerFromModel(m OfferCallModel) domain.OfferCall {
	return domain.OfferCall{
		ID:              m.ID,
		EnrichedIssueID: m.EnrichedIssueID,
		ContractorID:    m.ContractorID,
		PhoneNumber:     m.PhoneNumber,
		CallID:          m.CallID,
		Status:          domain.OfferStatus(m.Status),
		DeclineReason:   m.DeclineReason,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
