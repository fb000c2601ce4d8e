package get_available_slots

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// period первый и последний календарный день запроса
type period struct {
	from time.Time
	to   time.Time
}

// days возвращает количество дней в периоде включительно
func (p period) days() int {
	return int(p.to.Sub(p.from).Hours()/24) + 1
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) (period, error) {
	if req.LocationID <= 0 {
		return period{}, fmt.Errorf("%w: locationId must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return period{}, fmt.Errorf("%w: serviceId must be positive", ErrInvalidInput)
	}

	if req.EmployeeID != nil && *req.EmployeeID <= 0 {
		return period{}, fmt.Errorf("%w: employeeId must be positive", ErrInvalidInput)
	}

	if req.ResourceID != nil && *req.ResourceID <= 0 {
		return period{}, fmt.Errorf("%w: resourceId must be positive", ErrInvalidInput)
	}

	if req.MaxSuggestions != nil && (*req.MaxSuggestions < domain.MinSuggestions || *req.MaxSuggestions > domain.MaxSuggestions) {
		return period{}, fmt.Errorf("%w: maxSuggestions must be between %d and %d",
			ErrInvalidInput, domain.MinSuggestions, domain.MaxSuggestions)
	}

	// Даты разбираются как календарные дни без часового пояса
	from, err := time.Parse(domain.DateFormat, req.Date)
	if err != nil {
		return period{}, fmt.Errorf("%w: date must be in format YYYY-MM-DD", ErrInvalidDate)
	}

	p := period{from: from, to: from}
	if req.DateTo != nil {
		to, err := time.Parse(domain.DateFormat, *req.DateTo)
		if err != nil {
			return period{}, fmt.Errorf("%w: dateTo must be in format YYYY-MM-DD", ErrInvalidDate)
		}
		if to.Before(from) {
			return period{}, fmt.Errorf("%w: dateTo must not be before date", ErrInvalidDate)
		}
		p.to = to
	}

	if p.days() > domain.MaxAvailabilityRangeDays {
		return period{}, fmt.Errorf("%w: period must not exceed %d days", ErrInvalidDate, domain.MaxAvailabilityRangeDays)
	}

	return p, nil
}
