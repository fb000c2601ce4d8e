package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/catalog"
)

// AppointmentRepository интерфейс чтения записей
type AppointmentRepository interface {
	List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error)
}

// CatalogResolver интерфейс загрузки локации, услуги, сотрудника и ресурса
type CatalogResolver interface {
	Resolve(ctx context.Context, locationID, serviceID int64, employeeID, resourceID *int64) (*catalog.Target, error)
}

// PolicyProvider интерфейс получения действующей политики расписания
type PolicyProvider interface {
	Effective(ctx context.Context, locationID int64, serviceID *int64) (*domain.SchedulingPolicy, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
