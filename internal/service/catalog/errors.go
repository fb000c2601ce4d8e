package catalog

import (
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrLocationNotFound возвращается, когда локация не найдена или неактивна
	ErrLocationNotFound = fmt.Errorf("%w: location", domain.ErrNotFound)

	// ErrServiceNotFound возвращается, когда услуга не найдена или неактивна
	ErrServiceNotFound = fmt.Errorf("%w: service", domain.ErrNotFound)

	// ErrEmployeeNotFound возвращается, когда сотрудник не найден или неактивен
	ErrEmployeeNotFound = fmt.Errorf("%w: employee", domain.ErrNotFound)

	// ErrResourceNotFound возвращается, когда ресурс не найден или неактивен
	ErrResourceNotFound = fmt.Errorf("%w: resource", domain.ErrNotFound)

	// ErrForeignEntity возвращается, когда услуга, сотрудник или ресурс принадлежат другой локации
	ErrForeignEntity = fmt.Errorf("%w: entity belongs to another location", domain.ErrValidation)

	// ErrInvalidService возвращается, когда у услуги некорректная длительность
	ErrInvalidService = fmt.Errorf("%w: service has no duration", domain.ErrValidation)
)
