package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newAppointment(employeeID *int64, start time.Time, status domain.Status) *domain.Appointment {
	return &domain.Appointment{
		LocationID: 1,
		ServiceID:  1,
		StartAt:    start,
		EndAt:      start.Add(time.Hour),
		Status:     status,
		EmployeeID: employeeID,
		Customer:   domain.CustomerInfo{Name: "Anna"},
	}
}

func TestAppointmentRepository_CreateRejectsOverlap(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Appointments()

	first, err := repo.Create(ctx, newAppointment(ptr.Ptr[int64](7), base, domain.StatusBooked))
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)

	_, err = repo.Create(ctx, newAppointment(ptr.Ptr[int64](7), base.Add(30*time.Minute), domain.StatusBooked))
	require.Error(t, err)
	var overlapErr *storage.OverlapError
	require.True(t, errors.As(err, &overlapErr))
	assert.Equal(t, []domain.ConflictReason{domain.ConflictEmployeeBusy}, overlapErr.Reasons)
	assert.ErrorIs(t, err, storage.ErrOverlap)

	// back-to-back is allowed
	_, err = repo.Create(ctx, newAppointment(ptr.Ptr[int64](7), base.Add(time.Hour), domain.StatusBooked))
	require.NoError(t, err)

	// another employee is independent
	_, err = repo.Create(ctx, newAppointment(ptr.Ptr[int64](8), base, domain.StatusPending))
	require.NoError(t, err)
}

func TestAppointmentRepository_CreateReportsEveryOverlap(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Appointments()

	first := newAppointment(ptr.Ptr[int64](7), base, domain.StatusBooked)
	first.ResourceID = ptr.Ptr[int64](3)
	_, err := repo.Create(ctx, first)
	require.NoError(t, err)

	second := newAppointment(ptr.Ptr[int64](7), base.Add(15*time.Minute), domain.StatusPending)
	second.ResourceID = ptr.Ptr[int64](3)
	_, err = repo.Create(ctx, second)

	var overlapErr *storage.OverlapError
	require.True(t, errors.As(err, &overlapErr))
	assert.ElementsMatch(t,
		[]domain.ConflictReason{domain.ConflictEmployeeBusy, domain.ConflictResourceBusy},
		overlapErr.Reasons)
}

func TestAppointmentRepository_CancelledDoesNotOccupy(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Appointments()

	a, err := repo.Create(ctx, newAppointment(nil, base, domain.StatusBooked))
	require.NoError(t, err)

	_, err = a.Cancel(nil, base)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, a))

	_, err = repo.Create(ctx, newAppointment(nil, base, domain.StatusBooked))
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	require.NotNil(t, stored.CancelledAt)
}

func TestAppointmentRepository_ListFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Appointments()

	_, err := repo.Create(ctx, newAppointment(ptr.Ptr[int64](1), base.Add(2*time.Hour), domain.StatusBooked))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newAppointment(ptr.Ptr[int64](2), base, domain.StatusBooked))
	require.NoError(t, err)
	cancelled := newAppointment(ptr.Ptr[int64](3), base, domain.StatusCancelled)
	_, err = repo.Create(ctx, cancelled)
	require.NoError(t, err)

	from, to := base, base.Add(4*time.Hour)
	all, err := repo.List(ctx, domain.AppointmentFilter{LocationID: 1, From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].StartAt.Equal(base))
	assert.True(t, all[2].StartAt.Equal(base.Add(2*time.Hour)))

	occupying, err := repo.List(ctx, domain.AppointmentFilter{LocationID: 1, From: &from, To: &to, OccupyingOnly: true})
	require.NoError(t, err)
	assert.Len(t, occupying, 2)

	other, err := repo.List(ctx, domain.AppointmentFilter{LocationID: 2})
	require.NoError(t, err)
	assert.NotNil(t, other)
	assert.Empty(t, other)
}

func TestAppointmentRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Appointments()

	a, err := repo.Create(ctx, newAppointment(nil, base, domain.StatusBooked))
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	got.Status = domain.StatusNoShow

	again, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBooked, again.Status)

	_, err = repo.GetByID(ctx, 99)
	assert.ErrorIs(t, err, storage.ErrAppointmentNotFound)
}

func TestTxManager_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.Appointments()
	tx := store.TxManager()

	original, err := repo.Create(ctx, newAppointment(ptr.Ptr[int64](7), base, domain.StatusBooked))
	require.NoError(t, err)

	boom := errors.New("boom")
	err = tx.DoSerializable(ctx, func(ctx context.Context) error {
		a, err := repo.GetByID(ctx, original.ID)
		if err != nil {
			return err
		}
		if _, err := a.Cancel(ptr.Ptr("rescheduled"), base); err != nil {
			return err
		}
		if err := repo.Update(ctx, a); err != nil {
			return err
		}
		if _, err := repo.Create(ctx, newAppointment(ptr.Ptr[int64](7), base.Add(3*time.Hour), domain.StatusBooked)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	stored, err := repo.GetByID(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBooked, stored.Status)
	assert.Nil(t, stored.CancellationReason)

	all, err := repo.List(ctx, domain.AppointmentFilter{LocationID: 1})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTxManager_NestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.Appointments()
	tx := store.TxManager()

	boom := errors.New("boom")
	err := tx.Do(ctx, func(ctx context.Context) error {
		if err := tx.Do(ctx, func(ctx context.Context) error {
			_, err := repo.Create(ctx, newAppointment(nil, base, domain.StatusBooked))
			return err
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	all, err := repo.List(ctx, domain.AppointmentFilter{LocationID: 1})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTxManager_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewStore().TxManager().Do(ctx, func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, domain.ErrStore)
}

func TestPolicyRepository_Hierarchy(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Policies()

	_, err := repo.GetWithHierarchy(ctx, 1, ptr.Ptr[int64](5))
	assert.ErrorIs(t, err, storage.ErrPolicyNotFound)

	wide, err := repo.Create(ctx, &domain.SchedulingPolicy{LocationID: 1, GranularityMinutes: 30})
	require.NoError(t, err)

	got, err := repo.GetWithHierarchy(ctx, 1, ptr.Ptr[int64](5))
	require.NoError(t, err)
	assert.Equal(t, wide.ID, got.ID)

	specific, err := repo.Create(ctx, &domain.SchedulingPolicy{LocationID: 1, ServiceID: ptr.Ptr[int64](5), GranularityMinutes: 10})
	require.NoError(t, err)

	got, err = repo.GetWithHierarchy(ctx, 1, ptr.Ptr[int64](5))
	require.NoError(t, err)
	assert.Equal(t, specific.ID, got.ID)
	assert.Equal(t, 10, got.GranularityMinutes)

	_, err = repo.Create(ctx, &domain.SchedulingPolicy{LocationID: 1, GranularityMinutes: 15})
	assert.Error(t, err)

	list, err := repo.ListByLocation(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Nil(t, list[0].ServiceID)

	specific.GranularityMinutes = 20
	updated, err := repo.Update(ctx, specific)
	require.NoError(t, err)
	assert.Equal(t, 20, updated.GranularityMinutes)
}

func TestLocationRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Locations()

	_, err := repo.GetLocation(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrLocationNotFound)
	_, err = repo.GetService(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrServiceNotFound)
	_, err = repo.GetEmployee(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrEmployeeNotFound)
	_, err = repo.GetResource(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrResourceNotFound)
}

const seedFile = `
[[locations]]
id = 1
name = "Downtown"
timezone = "UTC"

  [locations.business_hours]
  monday = [{ open = "09:00", close = "12:00" }, { open = "13:00", close = "17:00" }]
  Saturday = [{ open = "10:00", close = "14:00" }]

[[services]]
id = 10
location_id = 1
name = "Haircut"
duration_min = 30
buffer_after_min = 10

[[employees]]
id = 100
location_id = 1
name = "Ivan"

[[resources]]
id = 200
location_id = 1
name = "Chair"
capacity = 1
`

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.toml")
	require.NoError(t, os.WriteFile(path, []byte(seedFile), 0o600))

	seed, err := LoadSeed(path)
	require.NoError(t, err)

	store := NewStore()
	require.NoError(t, store.ApplySeed(seed))

	ctx := context.Background()
	loc, err := store.Locations().GetLocation(ctx, 1)
	require.NoError(t, err)
	assert.True(t, loc.Active)
	assert.Len(t, loc.BusinessHours[time.Monday], 2)
	assert.Len(t, loc.BusinessHours[time.Saturday], 1)

	svc, err := store.Locations().GetService(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 40*time.Minute, svc.TotalSpan())

	_, err = store.Locations().GetEmployee(ctx, 100)
	require.NoError(t, err)
	res, err := store.Locations().GetResource(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Capacity)
}

func TestApplySeed_Invalid(t *testing.T) {
	tests := []struct {
		name string
		seed Seed
	}{
		{
			name: "unknown weekday",
			seed: Seed{Locations: []SeedLocation{{ID: 1, Timezone: "UTC", BusinessHours: map[string][]SeedRange{"funday": {{Open: "09:00", Close: "10:00"}}}}}},
		},
		{
			name: "inverted range",
			seed: Seed{Locations: []SeedLocation{{ID: 1, Timezone: "UTC", BusinessHours: map[string][]SeedRange{"monday": {{Open: "10:00", Close: "09:00"}}}}}},
		},
		{
			name: "unknown timezone",
			seed: Seed{Locations: []SeedLocation{{ID: 1, Timezone: "Mars/Olympus"}}},
		},
		{
			name: "zero duration",
			seed: Seed{Services: []SeedService{{ID: 1, LocationID: 1}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewStore().ApplySeed(&tt.seed)
			assert.ErrorIs(t, err, ErrSeed)
		})
	}
}
