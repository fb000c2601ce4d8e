package get_available_slots

import (
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: get_available_slots: invalid input data", domain.ErrValidation)

	// ErrInvalidDate возвращается при некорректной дате или периоде
	ErrInvalidDate = fmt.Errorf("%w: get_available_slots: invalid date", domain.ErrValidation)

	// ErrInternal возвращается при ошибках хранилища
	ErrInternal = fmt.Errorf("%w: get_available_slots", domain.ErrStore)
)
