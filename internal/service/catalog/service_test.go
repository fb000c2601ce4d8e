package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

func newStore() *memory.Store {
	s := memory.NewStore()
	s.AddLocation(domain.Location{ID: 1, Name: "Main", Timezone: "UTC", Active: true})
	s.AddLocation(domain.Location{ID: 2, Name: "Closed", Timezone: "UTC", Active: false})
	s.AddLocation(domain.Location{ID: 3, Name: "Other", Timezone: "UTC", Active: true})
	s.AddService(domain.Service{ID: 10, LocationID: 1, DurationMin: 30, Active: true})
	s.AddService(domain.Service{ID: 11, LocationID: 3, DurationMin: 30, Active: true})
	s.AddService(domain.Service{ID: 12, LocationID: 1, DurationMin: 30, Active: false})
	s.AddEmployee(domain.Employee{ID: 100, LocationID: 1, Active: true})
	s.AddEmployee(domain.Employee{ID: 101, LocationID: 3, Active: true})
	s.AddResource(domain.Resource{ID: 200, LocationID: 1, Active: true})
	s.AddResource(domain.Resource{ID: 201, LocationID: 1, Active: false})
	return s
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(newStore().Locations())

	target, err := r.Resolve(context.Background(), 1, 10, ptr.Ptr[int64](100), ptr.Ptr[int64](200))
	require.NoError(t, err)
	assert.Equal(t, int64(10), target.Service.ID)
	assert.NotNil(t, target.Zone)

	a := target.Assignment()
	require.NotNil(t, a.EmployeeID)
	require.NotNil(t, a.ResourceID)
	assert.Equal(t, int64(100), *a.EmployeeID)
	assert.Equal(t, int64(200), *a.ResourceID)
}

func TestResolver_ResolveErrors(t *testing.T) {
	tests := []struct {
		name       string
		locationID int64
		serviceID  int64
		employeeID *int64
		resourceID *int64
		wantErr    error
		category   error
	}{
		{name: "unknown location", locationID: 9, serviceID: 10, wantErr: ErrLocationNotFound, category: domain.ErrNotFound},
		{name: "inactive location", locationID: 2, serviceID: 10, wantErr: ErrLocationNotFound, category: domain.ErrNotFound},
		{name: "unknown service", locationID: 1, serviceID: 99, wantErr: ErrServiceNotFound, category: domain.ErrNotFound},
		{name: "inactive service", locationID: 1, serviceID: 12, wantErr: ErrServiceNotFound, category: domain.ErrNotFound},
		{name: "foreign service", locationID: 1, serviceID: 11, wantErr: ErrForeignEntity, category: domain.ErrValidation},
		{name: "unknown employee", locationID: 1, serviceID: 10, employeeID: ptr.Ptr[int64](999), wantErr: ErrEmployeeNotFound, category: domain.ErrNotFound},
		{name: "foreign employee", locationID: 1, serviceID: 10, employeeID: ptr.Ptr[int64](101), wantErr: ErrForeignEntity, category: domain.ErrValidation},
		{name: "inactive resource", locationID: 1, serviceID: 10, resourceID: ptr.Ptr[int64](201), wantErr: ErrResourceNotFound, category: domain.ErrNotFound},
	}

	r := NewResolver(newStore().Locations())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), tt.locationID, tt.serviceID, tt.employeeID, tt.resourceID)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, tt.category)
		})
	}
}

type failingRepo struct {
	LocationRepository
}

func (failingRepo) GetLocation(context.Context, int64) (*domain.Location, error) {
	return nil, errors.New("connection refused")
}

func TestResolver_StoreFailure(t *testing.T) {
	_, _, err := NewResolver(failingRepo{}).Location(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrStore)
}
