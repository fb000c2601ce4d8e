package get_available_slots

import (
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	LocationID     int64   // ID локации
	ServiceID      int64   // ID услуги
	Date           string  // Первый день периода (YYYY-MM-DD, в часовом поясе локации)
	DateTo         *string // Последний день периода включительно (опционально)
	EmployeeID     *int64  // ID сотрудника (опционально)
	ResourceID     *int64  // ID ресурса (опционально)
	MaxSuggestions *int    // Переопределяет maxSuggestions политики (0 - все слоты)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	LocationID int64                  // ID локации
	ServiceID  int64                  // ID услуги
	DateFrom   string                 // Первый день периода
	DateTo     string                 // Последний день периода
	Timezone   string                 // Часовой пояс локации
	Slots      []domain.AvailableSlot // Доступные слоты по возрастанию времени начала
}
