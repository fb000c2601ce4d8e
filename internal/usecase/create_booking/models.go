package create_booking

import (
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Request модель запроса на создание записи
type Request struct {
	LocationID int64               // ID локации
	ServiceID  int64               // ID услуги
	StartAt    string              // Время начала в формате RFC3339
	EmployeeID *int64              // ID сотрудника (опционально)
	ResourceID *int64              // ID ресурса (опционально)
	Customer   domain.CustomerInfo // Контактные данные клиента
	Notes      *string             // Дополнительные заметки (опционально)
	Hold       bool                // true - создать в статусе pending (ожидает подтверждения)
}

// Response модель ответа с созданной записью
type Response struct {
	Appointment *domain.Appointment
}
