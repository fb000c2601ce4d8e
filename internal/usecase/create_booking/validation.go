package create_booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// validateRequest валидирует входные данные запроса без обращения к хранилищу
// и возвращает разобранное время начала
func validateRequest(req *Request) (time.Time, error) {
	if req.LocationID <= 0 {
		return time.Time{}, fmt.Errorf("%w: locationId must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return time.Time{}, fmt.Errorf("%w: serviceId must be positive", ErrInvalidInput)
	}

	if req.EmployeeID != nil && *req.EmployeeID <= 0 {
		return time.Time{}, fmt.Errorf("%w: employeeId must be positive", ErrInvalidInput)
	}

	if req.ResourceID != nil && *req.ResourceID <= 0 {
		return time.Time{}, fmt.Errorf("%w: resourceId must be positive", ErrInvalidInput)
	}

	// Проверяем, что время начала указано и корректно
	if strings.TrimSpace(req.StartAt) == "" {
		return time.Time{}, fmt.Errorf("%w: startAt is required", ErrInvalidStartTime)
	}
	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidStartTime, err)
	}

	if err := validateCustomer(req.Customer); err != nil {
		return time.Time{}, err
	}

	if req.Notes != nil && len([]rune(*req.Notes)) > domain.MaxNotesLength {
		return time.Time{}, fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return startAt, nil
}

func validateCustomer(c domain.CustomerInfo) error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}
	if len([]rune(name)) > domain.MaxCustomerNameLength {
		return fmt.Errorf("%w: customer name must not exceed %d characters", ErrInvalidInput, domain.MaxCustomerNameLength)
	}
	return nil
}
