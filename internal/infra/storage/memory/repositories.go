package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling"
)

// LocationRepository reads the catalog.
type LocationRepository struct {
	store *Store
}

func (r *LocationRepository) GetLocation(ctx context.Context, id int64) (*domain.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetLocation: %v", storage.ErrExecQuery, err)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	l, ok := r.store.locations[id]
	if !ok {
		return nil, storage.ErrLocationNotFound
	}
	return cloneLocation(l), nil
}

func (r *LocationRepository) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetService: %v", storage.ErrExecQuery, err)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	s, ok := r.store.services[id]
	if !ok {
		return nil, storage.ErrServiceNotFound
	}
	c := *s
	return &c, nil
}

func (r *LocationRepository) GetEmployee(ctx context.Context, id int64) (*domain.Employee, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetEmployee: %v", storage.ErrExecQuery, err)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.store.employees[id]
	if !ok {
		return nil, storage.ErrEmployeeNotFound
	}
	c := *e
	return &c, nil
}

func (r *LocationRepository) GetResource(ctx context.Context, id int64) (*domain.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetResource: %v", storage.ErrExecQuery, err)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	res, ok := r.store.resources[id]
	if !ok {
		return nil, storage.ErrResourceNotFound
	}
	c := *res
	return &c, nil
}

// AppointmentRepository stores appointments.
type AppointmentRepository struct {
	store *Store
}

// Create inserts an appointment. An occupying appointment overlapping another
// in the same scope is rejected with *storage.OverlapError, mirroring the
// database exclusion constraints.
func (r *AppointmentRepository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: Create: %v", storage.ErrExecQuery, err)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.checkOverlap(a); err != nil {
		return nil, err
	}

	r.store.nextAppointmentID++
	now := r.store.now()
	a.ID = r.store.nextAppointmentID
	a.CreatedAt = now
	a.UpdatedAt = now

	id := a.ID
	r.store.appointments[id] = cloneAppointment(a)
	if j := journalFromContext(ctx); j != nil {
		j.record(func() { delete(r.store.appointments, id) })
	}

	return a, nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByID: %v", storage.ErrExecQuery, err)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	a, ok := r.store.appointments[id]
	if !ok {
		return nil, storage.ErrAppointmentNotFound
	}
	return cloneAppointment(a), nil
}

// List returns matching appointments ordered by start time.
func (r *AppointmentRepository) List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: List: %v", storage.ErrExecQuery, err)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*domain.Appointment, 0)
	for _, a := range r.store.appointments {
		if filter.Matches(a) {
			result = append(result, cloneAppointment(a))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].StartAt.Equal(result[j].StartAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].StartAt.Before(result[j].StartAt)
	})

	return result, nil
}

// Update persists status and cancellation fields.
func (r *AppointmentRepository) Update(ctx context.Context, a *domain.Appointment) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: Update: %v", storage.ErrExecQuery, err)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.appointments[a.ID]
	if !ok {
		return storage.ErrAppointmentNotFound
	}

	updated := cloneAppointment(current)
	updated.Status = a.Status
	updated.CancellationReason = cloneString(a.CancellationReason)
	if a.CancelledAt != nil {
		t := *a.CancelledAt
		updated.CancelledAt = &t
	} else {
		updated.CancelledAt = nil
	}
	updated.UpdatedAt = r.store.now()

	if updated.IsOccupying() && !current.IsOccupying() {
		if err := r.checkOverlap(updated); err != nil {
			return err
		}
	}

	r.store.appointments[a.ID] = updated
	if j := journalFromContext(ctx); j != nil {
		previous := current
		j.record(func() { r.store.appointments[previous.ID] = previous })
	}

	return nil
}

// checkOverlap must be called with the write lock held.
func (r *AppointmentRepository) checkOverlap(a *domain.Appointment) error {
	if !a.IsOccupying() {
		return nil
	}

	existing := make([]*domain.Appointment, 0)
	for _, other := range r.store.appointments {
		if other.LocationID == a.LocationID {
			existing = append(existing, other)
		}
	}

	reasons := scheduling.ResolveConflicts(a.Interval(), a.Assignment(), existing, a.ID)
	if len(reasons) > 0 {
		return &storage.OverlapError{Reasons: reasons}
	}
	return nil
}

// PolicyRepository stores scheduling policies.
type PolicyRepository struct {
	store *Store
}

func (r *PolicyRepository) Create(ctx context.Context, p *domain.SchedulingPolicy) (*domain.SchedulingPolicy, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: Create: %v", storage.ErrExecQuery, err)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.findExact(p.LocationID, p.ServiceID); ok {
		return nil, fmt.Errorf("%w: Create: policy for location %d already exists", storage.ErrExecQuery, p.LocationID)
	}

	r.store.nextPolicyID++
	now := r.store.now()
	p.ID = r.store.nextPolicyID
	p.CreatedAt = now
	p.UpdatedAt = now

	id := p.ID
	r.store.policies[id] = clonePolicy(p)
	if j := journalFromContext(ctx); j != nil {
		j.record(func() { delete(r.store.policies, id) })
	}

	return p, nil
}

func (r *PolicyRepository) Update(ctx context.Context, p *domain.SchedulingPolicy) (*domain.SchedulingPolicy, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: Update: %v", storage.ErrExecQuery, err)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.policies[p.ID]
	if !ok {
		return nil, storage.ErrPolicyNotFound
	}

	updated := clonePolicy(current)
	updated.GranularityMinutes = p.GranularityMinutes
	updated.MinLeadMinutes = p.MinLeadMinutes
	updated.AdvanceBookingDays = p.AdvanceBookingDays
	updated.MaxSuggestions = p.MaxSuggestions
	updated.UpdatedAt = r.store.now()

	r.store.policies[p.ID] = updated
	if j := journalFromContext(ctx); j != nil {
		previous := current
		j.record(func() { r.store.policies[previous.ID] = previous })
	}

	return clonePolicy(updated), nil
}

func (r *PolicyRepository) GetByLocationAndService(ctx context.Context, locationID int64, serviceID *int64) (*domain.SchedulingPolicy, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByLocationAndService: %v", storage.ErrExecQuery, err)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.findExact(locationID, serviceID)
	if !ok {
		return nil, storage.ErrPolicyNotFound
	}
	return clonePolicy(p), nil
}

func (r *PolicyRepository) GetWithHierarchy(ctx context.Context, locationID int64, serviceID *int64) (*domain.SchedulingPolicy, error) {
	if serviceID != nil {
		p, err := r.GetByLocationAndService(ctx, locationID, serviceID)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, storage.ErrPolicyNotFound) {
			return nil, err
		}
	}
	return r.GetByLocationAndService(ctx, locationID, nil)
}

func (r *PolicyRepository) ListByLocation(ctx context.Context, locationID int64) ([]*domain.SchedulingPolicy, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByLocation: %v", storage.ErrExecQuery, err)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*domain.SchedulingPolicy, 0)
	for _, p := range r.store.policies {
		if p.LocationID == locationID {
			result = append(result, clonePolicy(p))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].ServiceID == nil || result[j].ServiceID == nil {
			return result[i].ServiceID == nil && result[j].ServiceID != nil
		}
		return *result[i].ServiceID < *result[j].ServiceID
	})

	return result, nil
}

// findExact must be called with a lock held.
func (r *PolicyRepository) findExact(locationID int64, serviceID *int64) (*domain.SchedulingPolicy, bool) {
	for _, p := range r.store.policies {
		if p.LocationID != locationID {
			continue
		}
		if serviceID == nil && p.ServiceID == nil {
			return p, true
		}
		if serviceID != nil && p.ServiceID != nil && *serviceID == *p.ServiceID {
			return p, true
		}
	}
	return nil, false
}
