package policy

import (
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных параметрах политики
	ErrInvalidInput = fmt.Errorf("%w: scheduling policy", domain.ErrValidation)

	// ErrInternal возвращается при ошибках хранилища
	ErrInternal = fmt.Errorf("%w: scheduling policy", domain.ErrStore)
)
