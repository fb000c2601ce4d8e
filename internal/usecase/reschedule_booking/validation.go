package reschedule_booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// validateRequest валидирует входные данные запроса и возвращает новое время начала
func validateRequest(req *Request) (time.Time, error) {
	if req.AppointmentID <= 0 {
		return time.Time{}, fmt.Errorf("%w: appointmentId must be positive", ErrInvalidInput)
	}

	if req.EmployeeID != nil && *req.EmployeeID <= 0 {
		return time.Time{}, fmt.Errorf("%w: employeeId must be positive", ErrInvalidInput)
	}

	if req.ResourceID != nil && *req.ResourceID <= 0 {
		return time.Time{}, fmt.Errorf("%w: resourceId must be positive", ErrInvalidInput)
	}

	if strings.TrimSpace(req.StartAt) == "" {
		return time.Time{}, fmt.Errorf("%w: startAt is required", ErrInvalidStartTime)
	}
	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidStartTime, err)
	}

	return startAt, nil
}

// validateReschedulable проверяет, что запись еще занимает время и может быть перенесена
func validateReschedulable(a *domain.Appointment) error {
	if !a.Status.CanTransitionTo(domain.StatusCancelled) {
		return &domain.TransitionError{From: a.Status, To: domain.StatusCancelled}
	}
	return nil
}

// keepOrReplace возвращает новое значение или прежнее, если новое не указано
func keepOrReplace(next, current *int64) *int64 {
	if next != nil {
		return next
	}
	return current
}
