// Package catalog resolves and validates the location, service, employee and
// resource referenced by a booking request.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage"
)

// Target is everything a booking at one location refers to.
type Target struct {
	Location *domain.Location
	Service  *domain.Service
	Employee *domain.Employee
	Resource *domain.Resource
	Zone     *time.Location
}

// Assignment returns the ids the booking will occupy.
func (t *Target) Assignment() domain.Assignment {
	var a domain.Assignment
	if t.Employee != nil {
		id := t.Employee.ID
		a.EmployeeID = &id
	}
	if t.Resource != nil {
		id := t.Resource.ID
		a.ResourceID = &id
	}
	return a
}

// Resolver загружает сущности каталога и проверяет их согласованность
type Resolver struct {
	repo LocationRepository
}

// NewResolver создает новый экземпляр резолвера
func NewResolver(repo LocationRepository) *Resolver {
	return &Resolver{repo: repo}
}

// Location загружает активную локацию и её часовой пояс
func (r *Resolver) Location(ctx context.Context, locationID int64) (*domain.Location, *time.Location, error) {
	location, err := r.repo.GetLocation(ctx, locationID)
	if err != nil {
		return nil, nil, mapNotFound(err, storage.ErrLocationNotFound, ErrLocationNotFound)
	}
	if !location.Active {
		return nil, nil, ErrLocationNotFound
	}

	zone, err := location.TimeLocation()
	if err != nil {
		return nil, nil, err
	}
	return location, zone, nil
}

// Resolve загружает локацию, услугу и (опционально) сотрудника и ресурс.
// Все сущности должны быть активны и принадлежать локации.
func (r *Resolver) Resolve(ctx context.Context, locationID, serviceID int64, employeeID, resourceID *int64) (*Target, error) {
	// 1. Локация
	location, zone, err := r.Location(ctx, locationID)
	if err != nil {
		return nil, err
	}
	target := &Target{Location: location, Zone: zone}

	// 2. Услуга
	service, err := r.repo.GetService(ctx, serviceID)
	if err != nil {
		return nil, mapNotFound(err, storage.ErrServiceNotFound, ErrServiceNotFound)
	}
	if !service.Active {
		return nil, ErrServiceNotFound
	}
	if service.LocationID != locationID {
		return nil, fmt.Errorf("%w: service %d", ErrForeignEntity, serviceID)
	}
	if service.TotalSpan() <= 0 {
		return nil, ErrInvalidService
	}
	target.Service = service

	// 3. Сотрудник
	if employeeID != nil {
		employee, err := r.repo.GetEmployee(ctx, *employeeID)
		if err != nil {
			return nil, mapNotFound(err, storage.ErrEmployeeNotFound, ErrEmployeeNotFound)
		}
		if !employee.Active {
			return nil, ErrEmployeeNotFound
		}
		if employee.LocationID != locationID {
			return nil, fmt.Errorf("%w: employee %d", ErrForeignEntity, *employeeID)
		}
		target.Employee = employee
	}

	// 4. Ресурс
	if resourceID != nil {
		resource, err := r.repo.GetResource(ctx, *resourceID)
		if err != nil {
			return nil, mapNotFound(err, storage.ErrResourceNotFound, ErrResourceNotFound)
		}
		if !resource.Active {
			return nil, ErrResourceNotFound
		}
		if resource.LocationID != locationID {
			return nil, fmt.Errorf("%w: resource %d", ErrForeignEntity, *resourceID)
		}
		target.Resource = resource
	}

	return target, nil
}

func mapNotFound(err, storageErr, notFound error) error {
	if errors.Is(err, storageErr) {
		return notFound
	}
	return fmt.Errorf("%w: catalog lookup: %v", domain.ErrStore, err)
}
