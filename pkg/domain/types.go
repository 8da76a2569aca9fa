package domain

import "time"

type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleContractor Role = "CONTRACTOR"
	RoleBoth       Role = "BOTH"
)

// IsContractor reports whether the role may claim jobs.
func (r Role) IsContractor() bool {
	return r == RoleContractor || r == RoleBoth
}

type IssueStatus string

const (
	IssueSubmitted         IssueStatus = "SUBMITTED"
	IssueAnalyzing         IssueStatus = "ANALYZING"
	IssuePendingContractor IssueStatus = "PENDING_CONTRACTOR"
	IssueAssigned          IssueStatus = "ASSIGNED"
)

type Priority string

const (
	PriorityEmergency Priority = "EMERGENCY"
	PriorityUrgent    Priority = "URGENT"
	PriorityNormal    Priority = "NORMAL"
	PriorityLow       Priority = "LOW"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
	DifficultyExpert Difficulty = "Expert"
)

type AppointmentStatus string

const (
	AppointmentScheduled   AppointmentStatus = "SCHEDULED"
	AppointmentConfirmed   AppointmentStatus = "CONFIRMED"
	AppointmentInProgress  AppointmentStatus = "IN_PROGRESS"
	AppointmentCompleted   AppointmentStatus = "COMPLETED"
	AppointmentCancelled   AppointmentStatus = "CANCELLED"
	AppointmentRescheduled AppointmentStatus = "RESCHEDULED"
)

// Blocks reports whether an appointment with this status occupies the
// contractor's calendar for slot searches.
func (s AppointmentStatus) Blocks() bool {
	switch s {
	case AppointmentScheduled, AppointmentConfirmed, AppointmentInProgress:
		return true
	default:
		return false
	}
}

type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

// DayOfWeekFor maps a time.Weekday onto the symbolic day used by
// availability slots.
func DayOfWeekFor(wd time.Weekday) DayOfWeek {
	switch wd {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// Index returns a sort key with Monday first. Unknown days sort last.
func (d DayOfWeek) Index() int {
	switch d {
	case Monday:
		return 0
	case Tuesday:
		return 1
	case Wednesday:
		return 2
	case Thursday:
		return 3
	case Friday:
		return 4
	case Saturday:
		return 5
	case Sunday:
		return 6
	default:
		return 7
	}
}

type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Role        Role      `json:"role"`
	ZipCode     string    `json:"zipCode,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Issue struct {
	ID          string      `json:"id"`
	CustomerID  string      `json:"customerId"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Priority    Priority    `json:"priority"`
	Status      IssueStatus `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// RequiredItem is one line of the AI cost breakdown.
type RequiredItem struct {
	Name          string  `json:"name"`
	EstimatedCost float64 `json:"estimatedCost"`
	Quantity      int     `json:"quantity,omitempty"`
	Unit          string  `json:"unit,omitempty"`
}

// EnrichedIssue is the AI-produced diagnosis attached 1:1 to an issue.
// Once ClaimedByContractorID is set it never changes.
type EnrichedIssue struct {
	ID                    string         `json:"id"`
	IssueID               string         `json:"issueId"`
	IdentifiedProblem     string         `json:"identifiedProblem"`
	RepairSolution        string         `json:"repairSolution"`
	EstimatedTimeHours    float64        `json:"estimatedTimeHours,omitempty"`
	DifficultyLevel       Difficulty     `json:"difficultyLevel"`
	RequiredItems         []RequiredItem `json:"requiredItems,omitempty"`
	TotalQuotedPrice      float64        `json:"totalQuotedPrice,omitempty"`
	QuestionsForUser      []string       `json:"questionsForUser,omitempty"`
	ContractorChecklist   []string       `json:"contractorChecklist,omitempty"`
	ClaimedByContractorID string         `json:"claimedByContractorId,omitempty"`
	ClaimedAt             *time.Time     `json:"claimedAt,omitempty"`
	CreatedAt             time.Time      `json:"createdAt"`
}

// Claimed reports whether the job has been taken by a contractor.
func (e EnrichedIssue) Claimed() bool {
	return e.ClaimedByContractorID != ""
}

type ContractorProfile struct {
	ContractorID         string       `json:"contractorId"`
	Skills               []string     `json:"skills"`
	Specialties          []string     `json:"specialties,omitempty"`
	PreferredJobTypes    []Difficulty `json:"preferredJobTypes,omitempty"`
	ServiceZipCodes      []string     `json:"serviceZipCodes,omitempty"`
	ServiceRadius        int          `json:"serviceRadius,omitempty"`
	MinimumJobValue      float64      `json:"minimumJobValue,omitempty"`
	AcceptAutoAssignment bool         `json:"acceptAutoAssignment"`
	AutoCallEnabled      bool         `json:"autoCallEnabled"`
	YearsInBusiness      int          `json:"yearsInBusiness,omitempty"`
	BondedAndInsured     bool         `json:"bondedAndInsured"`
	CreatedAt            time.Time    `json:"createdAt"`
	UpdatedAt            time.Time    `json:"updatedAt"`
}

// AvailabilitySlot is one recurring weekly window. Times are wall-clock
// "HH:MM" strings with minute precision and no date component.
type AvailabilitySlot struct {
	ContractorID string    `json:"contractorId"`
	DayOfWeek    DayOfWeek `json:"dayOfWeek"`
	StartTime    string    `json:"startTime"`
	EndTime      string    `json:"endTime"`
	IsAvailable  bool      `json:"isAvailable"`
}

type Appointment struct {
	ID                string            `json:"id"`
	IssueID           string            `json:"issueId"`
	ContractorID      string            `json:"contractorId"`
	CustomerID        string            `json:"customerId"`
	ScheduledDate     time.Time         `json:"scheduledDate"`
	EstimatedDuration int               `json:"estimatedDuration"` // minutes
	Status            AppointmentStatus `json:"status"`
	QuotedPrice       float64           `json:"quotedPrice,omitempty"`
	FinalPrice        float64           `json:"finalPrice,omitempty"`
	ContractorNotes   string            `json:"contractorNotes,omitempty"`
	CustomerNotes     string            `json:"customerNotes,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// End returns the exclusive end of the appointment interval.
func (a Appointment) End() time.Time {
	return a.ScheduledDate.Add(time.Duration(a.EstimatedDuration) * time.Minute)
}

type OfferStatus string

const (
	OfferPlaced   OfferStatus = "OFFERED"
	OfferAccepted OfferStatus = "ACCEPTED"
	OfferDeclined OfferStatus = "DECLINED"
	OfferFailed   OfferStatus = "FAILED"
)

// OfferCall records one outbound job offer to a contractor.
type OfferCall struct {
	ID              string      `json:"id"`
	EnrichedIssueID string      `json:"enrichedIssueId"`
	ContractorID    string      `json:"contractorId"`
	PhoneNumber     string      `json:"phoneNumber"`
	CallID          string      `json:"callId,omitempty"`
	Status          OfferStatus `json:"status"`
	DeclineReason   string      `json:"declineReason,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}
