package domain

import (
	"fmt"
	"strings"
)

// Status is an appointment lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusBooked    Status = "booked"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

var transitions = map[Status][]Status{
	StatusPending: {StatusBooked, StatusCancelled},
	StatusBooked:  {StatusCompleted, StatusCancelled, StatusNoShow},
}

// OccupyingStatuses block their interval for conflict checks.
// A completed appointment keeps occupying its past slot.
var OccupyingStatuses = []Status{
	StatusPending,
	StatusBooked,
	StatusCompleted,
}

// AllStatuses lists every known state.
var AllStatuses = []Status{
	StatusPending,
	StatusBooked,
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}

// ErrInvalidStatus is returned for an unknown status value.
var ErrInvalidStatus = fmt.Errorf("%w: unknown status", ErrValidation)

// ParseStatus validates an external status value.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", fmt.Errorf("%w %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

func (s Status) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsOccupying reports whether the status blocks its interval.
func (s Status) IsOccupying() bool {
	return s == StatusPending || s == StatusBooked || s == StatusCompleted
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// CanTransitionTo reports whether s -> to is in the transition table.
func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
