package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SchedulingService/internal/service/catalog"
	"github.com/m04kA/SMC-SchedulingService/internal/service/policy/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

func newService(t *testing.T) *Service {
	t.Helper()

	store := memory.NewStore()
	store.AddLocation(domain.Location{ID: 1, Timezone: "UTC", Active: true})
	store.AddService(domain.Service{ID: 10, LocationID: 1, DurationMin: 30, Active: true})
	store.AddService(domain.Service{ID: 11, LocationID: 1, DurationMin: 60, Active: true})

	return NewService(
		store.Policies(),
		catalog.NewResolver(store.Locations()),
		store.TxManager(),
		DomainDefaults(),
		logger.Nop(),
	)
}

func TestService_GetFallsBackToDefaults(t *testing.T) {
	s := newService(t)

	resp, err := s.Get(context.Background(), &models.GetPolicyRequest{LocationID: 1, ServiceID: ptr.Ptr[int64](10)})
	require.NoError(t, err)
	assert.Equal(t, models.SourceDefault, resp.Source)
	assert.Nil(t, resp.ID)
	assert.Equal(t, domain.DefaultGranularityMinutes, resp.GranularityMinutes)
	assert.Equal(t, domain.DefaultMinLeadMinutes, resp.MinLeadMinutes)
}

func TestService_UpsertHierarchy(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	// политика локации
	wide, err := s.Upsert(ctx, &models.UpdatePolicyRequest{LocationID: 1, GranularityMinutes: ptr.Ptr(30)})
	require.NoError(t, err)
	assert.Equal(t, models.SourceLocation, wide.Source)
	assert.Equal(t, 30, wide.GranularityMinutes)
	assert.Equal(t, domain.DefaultMinLeadMinutes, wide.MinLeadMinutes)

	// политика услуги наследует значения локации
	specific, err := s.Upsert(ctx, &models.UpdatePolicyRequest{LocationID: 1, ServiceID: ptr.Ptr[int64](10), MinLeadMinutes: ptr.Ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, models.SourceService, specific.Source)
	assert.Equal(t, 30, specific.GranularityMinutes)
	assert.Equal(t, 0, specific.MinLeadMinutes)

	p, err := s.Effective(ctx, 1, ptr.Ptr[int64](10))
	require.NoError(t, err)
	assert.Equal(t, 0, p.MinLeadMinutes)

	p, err = s.Effective(ctx, 1, ptr.Ptr[int64](11))
	require.NoError(t, err)
	assert.True(t, p.IsLocationWide())

	// повторный upsert обновляет существующую запись
	again, err := s.Upsert(ctx, &models.UpdatePolicyRequest{LocationID: 1, MaxSuggestions: ptr.Ptr(5)})
	require.NoError(t, err)
	assert.Equal(t, *wide.ID, *again.ID)
	assert.Equal(t, 5, again.MaxSuggestions)
	assert.Equal(t, 30, again.GranularityMinutes)

	list, err := s.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list.Policies, 2)
}

func TestService_UpsertValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		req     *models.UpdatePolicyRequest
		wantErr error
	}{
		{name: "empty update", req: &models.UpdatePolicyRequest{LocationID: 1}, wantErr: domain.ErrValidation},
		{name: "granularity too small", req: &models.UpdatePolicyRequest{LocationID: 1, GranularityMinutes: ptr.Ptr(1)}, wantErr: domain.ErrValidation},
		{name: "negative lead", req: &models.UpdatePolicyRequest{LocationID: 1, MinLeadMinutes: ptr.Ptr(-5)}, wantErr: domain.ErrValidation},
		{name: "too many suggestions", req: &models.UpdatePolicyRequest{LocationID: 1, MaxSuggestions: ptr.Ptr(1000)}, wantErr: domain.ErrValidation},
		{name: "unknown location", req: &models.UpdatePolicyRequest{LocationID: 9, MaxSuggestions: ptr.Ptr(3)}, wantErr: domain.ErrNotFound},
		{name: "unknown service", req: &models.UpdatePolicyRequest{LocationID: 1, ServiceID: ptr.Ptr[int64](99), MaxSuggestions: ptr.Ptr(3)}, wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newService(t)
			_, err := s.Upsert(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)

			list, err := s.List(ctx, 1)
			require.NoError(t, err)
			assert.Empty(t, list.Policies)
		})
	}
}
