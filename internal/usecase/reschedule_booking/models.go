package reschedule_booking

import (
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Request модель запроса на перенос записи
type Request struct {
	AppointmentID int64  // ID переносимой записи
	StartAt       string // Новое время начала в формате RFC3339
	EmployeeID    *int64 // Новый сотрудник (nil - оставить прежнего)
	ResourceID    *int64 // Новый ресурс (nil - оставить прежний)
}

// Response модель ответа с отмененной и новой записью
type Response struct {
	Original    *domain.Appointment // Исходная запись в статусе cancelled
	Appointment *domain.Appointment // Новая запись
}
