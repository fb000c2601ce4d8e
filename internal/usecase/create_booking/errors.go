package create_booking

import (
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: create_booking: invalid input data", domain.ErrValidation)

	// ErrInvalidStartTime возвращается, когда время начала не в формате RFC3339
	ErrInvalidStartTime = fmt.Errorf("%w: create_booking: invalid start time", domain.ErrValidation)

	// ErrInternal возвращается при ошибках хранилища, транзакций и блокировок
	ErrInternal = fmt.Errorf("%w: create_booking", domain.ErrStore)
)
