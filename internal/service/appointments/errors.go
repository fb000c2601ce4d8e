package appointments

import (
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = fmt.Errorf("%w: appointment", domain.ErrNotFound)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: appointments", domain.ErrValidation)

	// ErrInvalidTimeRange возвращается при некорректном периоде выборки
	ErrInvalidTimeRange = fmt.Errorf("%w: invalid time range", domain.ErrValidation)

	// ErrInternal возвращается при ошибках хранилища и блокировок
	ErrInternal = fmt.Errorf("%w: appointments", domain.ErrStore)
)
