package reschedule_booking

import (
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: reschedule_booking: invalid input data", domain.ErrValidation)

	// ErrInvalidStartTime возвращается, когда время начала не в формате RFC3339
	ErrInvalidStartTime = fmt.Errorf("%w: reschedule_booking: invalid start time", domain.ErrValidation)

	// ErrAppointmentNotFound возвращается, когда переносимая запись не найдена
	ErrAppointmentNotFound = fmt.Errorf("%w: reschedule_booking: appointment", domain.ErrNotFound)

	// ErrInternal возвращается при ошибках хранилища, транзакций и блокировок
	ErrInternal = fmt.Errorf("%w: reschedule_booking", domain.ErrStore)
)
