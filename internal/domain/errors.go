package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error categories. Every error leaving the core wraps exactly one of these.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("booking conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStore             = errors.New("store unavailable")
)

// ConflictReason names the scope that is already occupied.
type ConflictReason string

const (
	ConflictEmployeeBusy ConflictReason = "EMPLOYEE_BUSY"
	ConflictResourceBusy ConflictReason = "RESOURCE_BUSY"
	ConflictLocationBusy ConflictReason = "LOCATION_BUSY"
)

// ConflictError lists every reason a booking was rejected.
type ConflictError struct {
	Reasons []ConflictReason
}

func (e *ConflictError) Error() string {
	parts := make([]string, 0, len(e.Reasons))
	for _, r := range e.Reasons {
		parts = append(parts, string(r))
	}
	return fmt.Sprintf("%s: %s", ErrConflict.Error(), strings.Join(parts, ", "))
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// TransitionError describes a rejected lifecycle change.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition.Error(), e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ConflictReasons extracts the reasons from a conflict error chain.
func ConflictReasons(err error) []ConflictReason {
	var conflictErr *ConflictError
	if errors.As(err, &conflictErr) {
		return conflictErr.Reasons
	}
	return nil
}

// Category returns a short label of the error category, used for metrics.
func Category(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrStore):
		return "store"
	default:
		return "internal"
	}
}
