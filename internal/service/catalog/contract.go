package catalog

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// LocationRepository интерфейс репозитория каталога
type LocationRepository interface {
	GetLocation(ctx context.Context, id int64) (*domain.Location, error)
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	GetEmployee(ctx context.Context, id int64) (*domain.Employee, error)
	GetResource(ctx context.Context, id int64) (*domain.Resource, error)
}
