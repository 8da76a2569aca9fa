package store

import (
	"sync"
	"time"

	"github.com/vyomfadia/contract-me/pkg/domain"
)

// MemoryStore keeps everything in-process. It backs tests and local runs
// without Postgres. A single mutex serializes all operations including whole
// transactions, which gives concurrent claims the same one-winner outcome as
// the row-locked Postgres path. Writes inside a failed transaction are not
// rolled back.
type MemoryStore struct {
	mu   sync.Mutex
	view memoryView
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		view: memoryView{
			users:        make(map[string]domain.User),
			issues:       make(map[string]domain.Issue),
			enriched:     make(map[string]domain.EnrichedIssue),
			profiles:     make(map[string]domain.ContractorProfile),
			availability: make(map[string][]domain.AvailabilitySlot),
			appointments: make(map[string]domain.Appointment),
			offers:       make(map[string]domain.OfferCall),
		},
	}
}

func (m *MemoryStore) Transaction(fn func(tx Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&m.view)
}

func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.SaveUser(u)
}

func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.GetUserByID(id)
}

func (m *MemoryStore) FindContractorByPhone(phone string) (domain.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.FindContractorByPhone(phone)
}

func (m *MemoryStore) SaveIssue(i domain.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.SaveIssue(i)
}

func (m *MemoryStore) GetIssue(id string) (domain.Issue, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.GetIssue(id)
}

func (m *MemoryStore) SetIssueStatus(id string, status domain.IssueStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.SetIssueStatus(id, status)
}

func (m *MemoryStore) ListUnenrichedIssues(limit int) ([]domain.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.ListUnenrichedIssues(limit)
}

func (m *MemoryStore) SaveEnrichedIssue(e domain.EnrichedIssue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.SaveEnrichedIssue(e)
}

func (m *MemoryStore) GetEnrichedIssue(id string) (domain.EnrichedIssue, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.GetEnrichedIssue(id)
}

func (m *MemoryStore) GetEnrichedIssueForUpdate(id string) (domain.EnrichedIssue, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.GetEnrichedIssueForUpdate(id)
}

func (m *MemoryStore) GetEnrichedIssueByIssue(issueID string) (domain.EnrichedIssue, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.GetEnrichedIssueByIssue(issueID)
}

func (m *MemoryStore) ListOpenEnrichedIssues() ([]domain.EnrichedIssue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.ListOpenEnrichedIssues()
}

func (m *MemoryStore) SaveContractorProfile(p domain.ContractorProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.SaveContractorProfile(p)
}

func (m *MemoryStore) GetContractorProfile(contractorID string) (domain.ContractorProfile, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.GetContractorProfile(contractorID)
}

func (m *MemoryStore) ListAutoAssignableCandidates() ([]Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.ListAutoAssignableCandidates()
}

func (m *MemoryStore) ReplaceAvailability(contractorID string, slots []domain.AvailabilitySlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.ReplaceAvailability(contractorID, slots)
}

func (m *MemoryStore) ListAvailability(contractorID string) ([]domain.AvailabilitySlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.ListAvailability(contractorID)
}

func (m *MemoryStore) SaveAppointment(a domain.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.SaveAppointment(a)
}

func (m *MemoryStore) GetAppointment(id string) (domain.Appointment, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.GetAppointment(id)
}

func (m *MemoryStore) ListAppointmentsByContractor(contractorID string) ([]domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.ListAppointmentsByContractor(contractorID)
}

func (m *MemoryStore) ListAppointmentsByCustomer(customerID string) ([]domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.ListAppointmentsByCustomer(customerID)
}

func (m *MemoryStore) ListBlockingAppointments(contractorID string) ([]domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.ListBlockingAppointments(contractorID)
}

func (m *MemoryStore) SaveOfferCall(o domain.OfferCall) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.SaveOfferCall(o)
}

func (m *MemoryStore) GetOfferCall(enrichedIssueID, contractorID string) (domain.OfferCall, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.GetOfferCall(enrichedIssueID, contractorID)
}

func (m *MemoryStore) ListOfferCallsByJob(enrichedIssueID string) ([]domain.OfferCall, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.ListOfferCallsByJob(enrichedIssueID)
}

// memoryView holds the actual data and implements Store without locking.
// MemoryStore hands it to transaction callbacks while holding the mutex.
type memoryView struct {
	users        map[string]domain.User
	issues       map[string]domain.Issue
	enriched     map[string]domain.EnrichedIssue
	profiles     map[string]domain.ContractorProfile
	availability map[string][]domain.AvailabilitySlot
	appointments map[string]domain.Appointment
	offers       map[string]domain.OfferCall

	issueOrder    []string
	enrichedOrder []string
	profileOrder  []string
	apptOrder     []string
	offerOrder    []string
}

func (v *memoryView) Transaction(fn func(tx Store) error) error {
	// already inside the store-wide lock
	return fn(v)
}

func (v *memoryView) SaveUser(u domain.User) error {
	v.users[u.ID] = u
	return nil
}

func (v *memoryView) GetUserByID(id string) (domain.User, bool, error) {
	u, ok := v.users[id]
	return u, ok, nil
}

func (v *memoryView) FindContractorByPhone(phone string) (domain.User, bool, error) {
	for _, u := range v.users {
		if u.PhoneNumber == phone && u.Role.IsContractor() {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

func (v *memoryView) SaveIssue(i domain.Issue) error {
	if _, exists := v.issues[i.ID]; !exists {
		v.issueOrder = append(v.issueOrder, i.ID)
	}
	v.issues[i.ID] = i
	return nil
}

func (v *memoryView) GetIssue(id string) (domain.Issue, bool, error) {
	i, ok := v.issues[id]
	return i, ok, nil
}

func (v *memoryView) SetIssueStatus(id string, status domain.IssueStatus) error {
	issue, ok := v.issues[id]
	if !ok {
		return nil
	}
	issue.Status = status
	issue.UpdatedAt = time.Now().UTC()
	v.issues[id] = issue
	return nil
}

func (v *memoryView) ListUnenrichedIssues(limit int) ([]domain.Issue, error) {
	enrichedByIssue := make(map[string]struct{}, len(v.enriched))
	for _, e := range v.enriched {
		enrichedByIssue[e.IssueID] = struct{}{}
	}
	var res []domain.Issue
	for _, id := range v.issueOrder {
		issue, ok := v.issues[id]
		if !ok || issue.Status != domain.IssueSubmitted {
			continue
		}
		if _, done := enrichedByIssue[id]; done {
			continue
		}
		res = append(res, issue)
		if limit > 0 && len(res) >= limit {
			break
		}
	}
	return res, nil
}

func (v *memoryView) SaveEnrichedIssue(e domain.EnrichedIssue) error {
	if _, exists := v.enriched[e.ID]; !exists {
		v.enrichedOrder = append(v.enrichedOrder, e.ID)
	}
	v.enriched[e.ID] = e
	return nil
}

func (v *memoryView) GetEnrichedIssue(id string) (domain.EnrichedIssue, bool, error) {
	e, ok := v.enriched[id]
	return e, ok, nil
}

func (v *memoryView) GetEnrichedIssueForUpdate(id string) (domain.EnrichedIssue, bool, error) {
	return v.GetEnrichedIssue(id)
}

func (v *memoryView) GetEnrichedIssueByIssue(issueID string) (domain.EnrichedIssue, bool, error) {
	for _, id := range v.enrichedOrder {
		if e, ok := v.enriched[id]; ok && e.IssueID == issueID {
			return e, true, nil
		}
	}
	return domain.EnrichedIssue{}, false, nil
}

func (v *memoryView) ListOpenEnrichedIssues() ([]domain.EnrichedIssue, error) {
	res := make([]domain.EnrichedIssue, 0, len(v.enrichedOrder))
	for _, id := range v.enrichedOrder {
		if e, ok := v.enriched[id]; ok && !e.Claimed() {
			res = append(res, e)
		}
	}
	return res, nil
}

func (v *memoryView) SaveContractorProfile(p domain.ContractorProfile) error {
	if _, exists := v.profiles[p.ContractorID]; !exists {
		v.profileOrder = append(v.profileOrder, p.ContractorID)
	}
	v.profiles[p.ContractorID] = p
	return nil
}

func (v *memoryView) GetContractorProfile(contractorID string) (domain.ContractorProfile, bool, error) {
	p, ok := v.profiles[contractorID]
	return p, ok, nil
}

func (v *memoryView) ListAutoAssignableCandidates() ([]Candidate, error) {
	res := make([]Candidate, 0, len(v.profileOrder))
	for _, id := range v.profileOrder {
		profile, ok := v.profiles[id]
		if !ok || !profile.AcceptAutoAssignment {
			continue
		}
		user, ok := v.users[id]
		if !ok || !user.Role.IsContractor() || user.PhoneNumber == "" {
			continue
		}
		res = append(res, Candidate{Contractor: user, Profile: profile})
	}
	return res, nil
}

func (v *memoryView) ReplaceAvailability(contractorID string, slots []domain.AvailabilitySlot) error {
	copied := make([]domain.AvailabilitySlot, len(slots))
	copy(copied, slots)
	for i := range copied {
		copied[i].ContractorID = contractorID
	}
	v.availability[contractorID] = copied
	return nil
}

func (v *memoryView) ListAvailability(contractorID string) ([]domain.AvailabilitySlot, error) {
	slots := v.availability[contractorID]
	res := make([]domain.AvailabilitySlot, len(slots))
	copy(res, slots)
	sortSlots(res)
	return res, nil
}

func (v *memoryView) SaveAppointment(a domain.Appointment) error {
	if _, exists := v.appointments[a.ID]; !exists {
		v.apptOrder = append(v.apptOrder, a.ID)
	}
	v.appointments[a.ID] = a
	return nil
}

func (v *memoryView) GetAppointment(id string) (domain.Appointment, bool, error) {
	a, ok := v.appointments[id]
	return a, ok, nil
}

func (v *memoryView) ListAppointmentsByContractor(contractorID string) ([]domain.Appointment, error) {
	return v.listAppointments(func(a domain.Appointment) bool {
		return a.ContractorID == contractorID
	}), nil
}

func (v *memoryView) ListAppointmentsByCustomer(customerID string) ([]domain.Appointment, error) {
	return v.listAppointments(func(a domain.Appointment) bool {
		return a.CustomerID == customerID
	}), nil
}

func (v *memoryView) ListBlockingAppointments(contractorID string) ([]domain.Appointment, error) {
	return v.listAppointments(func(a domain.Appointment) bool {
		return a.ContractorID == contractorID && a.Status.Blocks()
	}), nil
}

func (v *memoryView) listAppointments(keep func(domain.Appointment) bool) []domain.Appointment {
	var res []domain.Appointment
	for _, id := range v.apptOrder {
		if a, ok := v.appointments[id]; ok && keep(a) {
			res = append(res, a)
		}
	}
	sortAppointments(res)
	return res
}

func (v *memoryView) SaveOfferCall(o domain.OfferCall) error {
	if _, exists := v.offers[o.ID]; !exists {
		v.offerOrder = append(v.offerOrder, o.ID)
	}
	v.offers[o.ID] = o
	return nil
}

func (v *memoryView) GetOfferCall(enrichedIssueID, contractorID string) (domain.OfferCall, bool, error) {
	for i := len(v.offerOrder) - 1; i >= 0; i-- {
		o, ok := v.offers[v.offerOrder[i]]
		if ok && o.EnrichedIssueID == enrichedIssueID && o.ContractorID == contractorID {
			return o, true, nil
		}
	}
	return domain.OfferCall{}, false, nil
}

func (v *memoryView) ListOfferCallsByJob(enrichedIssueID string) ([]domain.OfferCall, error) {
	var res []domain.OfferCall
	for _, id := range v.offerOrder {
		if o, ok := v.offers[id]; ok && o.EnrichedIssueID == enrichedIssueID {
			res = append(res, o)
		}
	}
	return res, nil
}
