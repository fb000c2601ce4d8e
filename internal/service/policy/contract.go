package policy

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/catalog"
)

// PolicyRepository интерфейс репозитория политик расписания
type PolicyRepository interface {
	Create(ctx context.Context, p *domain.SchedulingPolicy) (*domain.SchedulingPolicy, error)
	Update(ctx context.Context, p *domain.SchedulingPolicy) (*domain.SchedulingPolicy, error)
	GetByLocationAndService(ctx context.Context, locationID int64, serviceID *int64) (*domain.SchedulingPolicy, error)
	GetWithHierarchy(ctx context.Context, locationID int64, serviceID *int64) (*domain.SchedulingPolicy, error)
	ListByLocation(ctx context.Context, locationID int64) ([]*domain.SchedulingPolicy, error)
}

// CatalogResolver интерфейс проверки локации и услуги
type CatalogResolver interface {
	Location(ctx context.Context, locationID int64) (*domain.Location, *time.Location, error)
	Resolve(ctx context.Context, locationID, serviceID int64, employeeID, resourceID *int64) (*catalog.Target, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
