package domain

import (
	"fmt"
	"time"
)

// CustomerInfo is opaque contact data carried along with an appointment.
type CustomerInfo struct {
	Name  string
	Email string
	Phone string
}

// Appointment is a booked occupancy of [StartAt, EndAt) at a location.
type Appointment struct {
	ID         int64
	LocationID int64
	ServiceID  int64
	StartAt    time.Time
	EndAt      time.Time
	Status     Status

	EmployeeID *int64
	ResourceID *int64

	Customer CustomerInfo
	Notes    *string

	// Set on the replacement appointment created by a reschedule.
	RescheduledFromID *int64

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Appointment) Interval() Interval {
	return Interval{Start: a.StartAt, End: a.EndAt}
}

func (a *Appointment) Assignment() Assignment {
	return Assignment{EmployeeID: a.EmployeeID, ResourceID: a.ResourceID}
}

// IsOccupying reports whether the appointment blocks its interval.
func (a *Appointment) IsOccupying() bool {
	return a.Status.IsOccupying()
}

// Transition moves the appointment to the target status. Cancelling an
// already cancelled appointment succeeds without changes and reports false.
func (a *Appointment) Transition(to Status, now time.Time) (bool, error) {
	if !to.IsValid() {
		return false, fmt.Errorf("%w: unknown status %q", ErrValidation, to)
	}
	if a.Status == StatusCancelled && to == StatusCancelled {
		return false, nil
	}
	if !a.Status.CanTransitionTo(to) {
		return false, &TransitionError{From: a.Status, To: to}
	}

	a.Status = to
	a.UpdatedAt = now
	if to == StatusCancelled {
		cancelledAt := now
		a.CancelledAt = &cancelledAt
	}
	return true, nil
}

// Cancel is Transition to cancelled with an optional reason.
func (a *Appointment) Cancel(reason *string, now time.Time) (bool, error) {
	changed, err := a.Transition(StatusCancelled, now)
	if err != nil || !changed {
		return changed, err
	}
	a.CancellationReason = reason
	return true, nil
}

// Assignment is the optional employee and resource a booking occupies.
type Assignment struct {
	EmployeeID *int64
	ResourceID *int64
}

// IsEmpty reports whether neither an employee nor a resource is assigned.
// Such bookings are constrained at the location scope.
func (a Assignment) IsEmpty() bool {
	return a.EmployeeID == nil && a.ResourceID == nil
}

// LockKeys returns the mutual-exclusion keys a booking with this assignment
// must hold while checking and writing.
func (a Assignment) LockKeys(locationID int64) []string {
	if a.IsEmpty() {
		return []string{LocationLockKey(locationID)}
	}
	keys := make([]string, 0, 2)
	if a.EmployeeID != nil {
		keys = append(keys, fmt.Sprintf("employee:%d", *a.EmployeeID))
	}
	if a.ResourceID != nil {
		keys = append(keys, fmt.Sprintf("resource:%d", *a.ResourceID))
	}
	return keys
}

func LocationLockKey(locationID int64) string {
	return fmt.Sprintf("location:%d", locationID)
}

func AppointmentLockKey(appointmentID int64) string {
	return fmt.Sprintf("appointment:%d", appointmentID)
}

// AppointmentFilter selects appointments at a location. From/To select
// appointments overlapping [From, To).
type AppointmentFilter struct {
	LocationID    int64
	From          *time.Time
	To            *time.Time
	EmployeeID    *int64
	ResourceID    *int64
	Status        *Status
	OccupyingOnly bool
}

// Matches applies the filter to a single appointment.
func (f AppointmentFilter) Matches(a *Appointment) bool {
	if a.LocationID != f.LocationID {
		return false
	}
	if f.From != nil && !a.EndAt.After(*f.From) {
		return false
	}
	if f.To != nil && !a.StartAt.Before(*f.To) {
		return false
	}
	if f.EmployeeID != nil && (a.EmployeeID == nil || *a.EmployeeID != *f.EmployeeID) {
		return false
	}
	if f.ResourceID != nil && (a.ResourceID == nil || *a.ResourceID != *f.ResourceID) {
		return false
	}
	if f.Status != nil && a.Status != *f.Status {
		return false
	}
	if f.OccupyingOnly && !a.IsOccupying() {
		return false
	}
	return true
}
