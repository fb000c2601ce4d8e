// Package memory is an in-process store implementing the same repository
// contracts as the PostgreSQL store. It enforces the same no-overlap rule as
// the database exclusion constraints and supports transactional rollback
// through an undo journal carried in the context.
package memory

import (
	"sync"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Store holds all data of the in-memory backend.
type Store struct {
	mu sync.RWMutex

	locations    map[int64]*domain.Location
	services     map[int64]*domain.Service
	employees    map[int64]*domain.Employee
	resources    map[int64]*domain.Resource
	appointments map[int64]*domain.Appointment
	policies     map[int64]*domain.SchedulingPolicy

	nextAppointmentID int64
	nextPolicyID      int64

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		locations:    make(map[int64]*domain.Location),
		services:     make(map[int64]*domain.Service),
		employees:    make(map[int64]*domain.Employee),
		resources:    make(map[int64]*domain.Resource),
		appointments: make(map[int64]*domain.Appointment),
		policies:     make(map[int64]*domain.SchedulingPolicy),
		now:          time.Now,
	}
}

// Locations returns the catalog repository view.
func (s *Store) Locations() *LocationRepository {
	return &LocationRepository{store: s}
}

// Appointments returns the appointment repository view.
func (s *Store) Appointments() *AppointmentRepository {
	return &AppointmentRepository{store: s}
}

// Policies returns the scheduling policy repository view.
func (s *Store) Policies() *PolicyRepository {
	return &PolicyRepository{store: s}
}

// TxManager returns a transaction manager bound to this store.
func (s *Store) TxManager() *TxManager {
	return &TxManager{store: s}
}

// AddLocation stores a copy of l.
func (s *Store) AddLocation(l domain.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[l.ID] = cloneLocation(&l)
}

func (s *Store) AddService(svc domain.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[svc.ID] = &svc
}

func (s *Store) AddEmployee(e domain.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = &e
}

func (s *Store) AddResource(r domain.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[r.ID] = &r
}

func cloneLocation(l *domain.Location) *domain.Location {
	c := *l
	c.BusinessHours = make(domain.WeeklyHours, len(l.BusinessHours))
	for wd, ranges := range l.BusinessHours {
		c.BusinessHours[wd] = append([]domain.TimeRange(nil), ranges...)
	}
	return &c
}

func cloneAppointment(a *domain.Appointment) *domain.Appointment {
	c := *a
	c.EmployeeID = cloneInt64(a.EmployeeID)
	c.ResourceID = cloneInt64(a.ResourceID)
	c.RescheduledFromID = cloneInt64(a.RescheduledFromID)
	c.Notes = cloneString(a.Notes)
	c.CancellationReason = cloneString(a.CancellationReason)
	if a.CancelledAt != nil {
		t := *a.CancelledAt
		c.CancelledAt = &t
	}
	return &c
}

func clonePolicy(p *domain.SchedulingPolicy) *domain.SchedulingPolicy {
	c := *p
	c.ServiceID = cloneInt64(p.ServiceID)
	return &c
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}
