package scheduling

import (
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// ResolveConflicts checks candidate against existing appointments and returns
// every scope that is already occupied. Employee and resource are checked
// independently. An empty assignment is checked at the location scope against
// other unassigned appointments. Appointments with excludeID (the one being
// rescheduled) and non-occupying ones are ignored.
func ResolveConflicts(
	candidate domain.Interval,
	assignment domain.Assignment,
	existing []*domain.Appointment,
	excludeID int64,
) []domain.ConflictReason {
	var employeeBusy, resourceBusy, locationBusy bool

	for _, a := range existing {
		if a == nil || (excludeID != 0 && a.ID == excludeID) || !a.IsOccupying() {
			continue
		}
		if !domain.Overlaps(candidate, a.Interval()) {
			continue
		}

		if assignment.IsEmpty() {
			if a.Assignment().IsEmpty() {
				locationBusy = true
			}
			continue
		}
		if sameID(assignment.EmployeeID, a.EmployeeID) {
			employeeBusy = true
		}
		if sameID(assignment.ResourceID, a.ResourceID) {
			resourceBusy = true
		}
	}

	reasons := make([]domain.ConflictReason, 0, 2)
	if employeeBusy {
		reasons = append(reasons, domain.ConflictEmployeeBusy)
	}
	if resourceBusy {
		reasons = append(reasons, domain.ConflictResourceBusy)
	}
	if locationBusy {
		reasons = append(reasons, domain.ConflictLocationBusy)
	}
	return reasons
}

// BusyIntervals returns the occupied intervals relevant to assignment: the
// employee's and the resource's bookings, or the location's unassigned ones.
func BusyIntervals(assignment domain.Assignment, existing []*domain.Appointment) []domain.Interval {
	busy := make([]domain.Interval, 0, len(existing))
	for _, a := range existing {
		if a == nil || !a.IsOccupying() {
			continue
		}
		if relevant(assignment, a) {
			busy = append(busy, a.Interval())
		}
	}
	return busy
}

func relevant(assignment domain.Assignment, a *domain.Appointment) bool {
	if assignment.IsEmpty() {
		return a.Assignment().IsEmpty()
	}
	return sameID(assignment.EmployeeID, a.EmployeeID) || sameID(assignment.ResourceID, a.ResourceID)
}

func sameID(want, got *int64) bool {
	return want != nil && got != nil && *want == *got
}
