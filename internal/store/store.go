package store

import "github.com/vyomfadia/contract-me/pkg/domain"

// Candidate pairs a contractor with their matching profile. Produced by
// ListAutoAssignableCandidates in the query order of the underlying store.
type Candidate struct {
	Contractor domain.User
	Profile    domain.ContractorProfile
}

// Store defines persistence operations for the scheduling and matching core.
//
// Transaction runs fn against a transactional view of the store: all writes
// commit together or not at all, and GetEnrichedIssueForUpdate takes an
// exclusive lock on the row for the duration of the transaction. This is the
// serialization point that keeps concurrent claims of the same job from both
// succeeding.
type Store interface {
	Transaction(fn func(tx Store) error) error

	// users
	SaveUser(domain.User) error
	GetUserByID(id string) (domain.User, bool, error)
	FindContractorByPhone(phone string) (domain.User, bool, error)

	// issues
	SaveIssue(domain.Issue) error
	GetIssue(id string) (domain.Issue, bool, error)
	SetIssueStatus(id string, status domain.IssueStatus) error
	ListUnenrichedIssues(limit int) ([]domain.Issue, error)

	// enriched issues
	SaveEnrichedIssue(domain.EnrichedIssue) error
	GetEnrichedIssue(id string) (domain.EnrichedIssue, bool, error)
	GetEnrichedIssueForUpdate(id string) (domain.EnrichedIssue, bool, error)
	GetEnrichedIssueByIssue(issueID string) (domain.EnrichedIssue, bool, error)
	ListOpenEnrichedIssues() ([]domain.EnrichedIssue, error)

	// contractor profiles
	SaveContractorProfile(domain.ContractorProfile) error
	GetContractorProfile(contractorID string) (domain.ContractorProfile, bool, error)
	ListAutoAssignableCandidates() ([]Candidate, error)

	// availability
	ReplaceAvailability(contractorID string, slots []domain.AvailabilitySlot) error
	ListAvailability(contractorID string) ([]domain.AvailabilitySlot, error)

	// appointments
	SaveAppointment(domain.Appointment) error
	GetAppointment(id string) (domain.Appointment, bool, error)
	ListAppointmentsByContractor(contractorID string) ([]domain.Appointment, error)
	ListAppointmentsByCustomer(customerID string) ([]domain.Appointment, error)
	ListBlockingAppointments(contractorID string) ([]domain.Appointment, error)

	// offer calls
	SaveOfferCall(domain.OfferCall) error
	GetOfferCall(enrichedIssueID, contractorID string) (domain.OfferCall, bool, error)
	ListOfferCallsByJob(enrichedIssueID string) ([]domain.OfferCall, error)
}
