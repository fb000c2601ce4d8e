package reschedule_booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/events"
	"github.com/m04kA/SMC-SchedulingService/internal/service/catalog"
	"github.com/m04kA/SMC-SchedulingService/internal/service/policy"
	"github.com/m04kA/SMC-SchedulingService/pkg/keylock"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes []string
}

func (m *recordingMetrics) RecordBooking(operation, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, operation+":"+outcome)
}

func (m *recordingMetrics) ObserveLockWait(time.Duration) {}

type fixture struct {
	store     *memory.Store
	uc        *UseCase
	publisher *recordingPublisher
	metrics   *recordingMetrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	hours := domain.WeeklyHours{}
	for d := time.Sunday; d <= time.Saturday; d++ {
		hours[d] = []domain.TimeRange{{Open: "09:00", Close: "18:00"}}
	}
	store.AddLocation(domain.Location{ID: 1, Timezone: "UTC", BusinessHours: hours, Active: true})
	store.AddService(domain.Service{ID: 10, LocationID: 1, DurationMin: 60, Active: true})
	store.AddEmployee(domain.Employee{ID: 7, LocationID: 1, Active: true})
	store.AddEmployee(domain.Employee{ID: 8, LocationID: 1, Active: true})
	store.AddEmployee(domain.Employee{ID: 9, LocationID: 1, Active: false})

	resolver := catalog.NewResolver(store.Locations())
	policies := policy.NewService(store.Policies(), resolver, store.TxManager(), policy.DomainDefaults(), logger.Nop())

	f := &fixture{store: store, publisher: &recordingPublisher{}, metrics: &recordingMetrics{}}
	f.uc = NewUseCase(
		store.Appointments(),
		resolver,
		policies,
		keylock.NewMemoryLocker(),
		store.TxManager(),
		f.publisher,
		f.metrics,
		time.Second,
		logger.Nop(),
	)
	f.uc.timeProvider = &fixedTime{now: base.Add(-24 * time.Hour)}
	return f
}

func (f *fixture) add(t *testing.T, start time.Time, status domain.Status, employeeID *int64) *domain.Appointment {
	t.Helper()
	a, err := f.store.Appointments().Create(context.Background(), &domain.Appointment{
		LocationID: 1,
		ServiceID:  10,
		StartAt:    start,
		EndAt:      start.Add(time.Hour),
		Status:     status,
		EmployeeID: employeeID,
		Customer:   domain.CustomerInfo{Name: "Anna", Email: "anna@example.com"},
		Notes:      ptr.Ptr("window seat"),
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) get(t *testing.T, id int64) *domain.Appointment {
	t.Helper()
	a, err := f.store.Appointments().GetByID(context.Background(), id)
	require.NoError(t, err)
	return a
}

func TestUseCase_Execute_MovesAppointment(t *testing.T) {
	f := newFixture(t)
	original := f.add(t, base, domain.StatusPending, ptr.Ptr[int64](7))

	resp, err := f.uc.Execute(context.Background(), &Request{
		AppointmentID: original.ID,
		StartAt:       base.Add(3 * time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, resp.Original.Status)
	assert.Equal(t, domain.RescheduledReason, *resp.Original.CancellationReason)

	next := resp.Appointment
	assert.NotEqual(t, original.ID, next.ID)
	assert.Equal(t, domain.StatusPending, next.Status)
	assert.True(t, next.StartAt.Equal(base.Add(3*time.Hour)))
	assert.True(t, next.EndAt.Equal(base.Add(4*time.Hour)))
	assert.Equal(t, int64(7), *next.EmployeeID)
	assert.Equal(t, original.ID, *next.RescheduledFromID)
	assert.Equal(t, "Anna", next.Customer.Name)
	assert.Equal(t, "window seat", *next.Notes)

	stored := f.get(t, original.ID)
	assert.Equal(t, domain.StatusCancelled, stored.Status)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, events.TypeRescheduled, f.publisher.events[0].Type)
	assert.Equal(t, []string{"reschedule:ok"}, f.metrics.outcomes)
}

func TestUseCase_Execute_OverlapsOwnSlot(t *testing.T) {
	f := newFixture(t)
	original := f.add(t, base, domain.StatusBooked, ptr.Ptr[int64](7))

	resp, err := f.uc.Execute(context.Background(), &Request{
		AppointmentID: original.ID,
		StartAt:       base.Add(30 * time.Minute).Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBooked, resp.Appointment.Status)
}

func TestUseCase_Execute_ChangesEmployee(t *testing.T) {
	f := newFixture(t)
	original := f.add(t, base, domain.StatusBooked, ptr.Ptr[int64](7))

	resp, err := f.uc.Execute(context.Background(), &Request{
		AppointmentID: original.ID,
		StartAt:       base.Format(time.RFC3339),
		EmployeeID:    ptr.Ptr[int64](8),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8), *resp.Appointment.EmployeeID)
}

func TestUseCase_Execute_ConflictRollsBack(t *testing.T) {
	f := newFixture(t)
	original := f.add(t, base, domain.StatusBooked, ptr.Ptr[int64](7))
	f.add(t, base.Add(2*time.Hour), domain.StatusBooked, ptr.Ptr[int64](7))

	_, err := f.uc.Execute(context.Background(), &Request{
		AppointmentID: original.ID,
		StartAt:       base.Add(2*time.Hour + 30*time.Minute).Format(time.RFC3339),
	})
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, []domain.ConflictReason{domain.ConflictEmployeeBusy}, domain.ConflictReasons(err))

	stored := f.get(t, original.ID)
	assert.Equal(t, domain.StatusBooked, stored.Status)
	assert.Nil(t, stored.CancellationReason)
	assert.Nil(t, stored.CancelledAt)

	all, err := f.store.Appointments().List(context.Background(), domain.AppointmentFilter{LocationID: 1})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Empty(t, f.publisher.events)
	assert.Equal(t, []string{"reschedule:conflict"}, f.metrics.outcomes)
}

func TestUseCase_Execute_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		status  domain.Status
		req     func(id int64) *Request
		wantErr error
	}{
		{
			name:    "cancelled appointment",
			status:  domain.StatusCancelled,
			req:     func(id int64) *Request { return &Request{AppointmentID: id, StartAt: base.Format(time.RFC3339)} },
			wantErr: domain.ErrInvalidTransition,
		},
		{
			name:    "completed appointment",
			status:  domain.StatusCompleted,
			req:     func(id int64) *Request { return &Request{AppointmentID: id, StartAt: base.Format(time.RFC3339)} },
			wantErr: domain.ErrInvalidTransition,
		},
		{
			name:    "unknown appointment",
			status:  domain.StatusBooked,
			req:     func(id int64) *Request { return &Request{AppointmentID: id + 100, StartAt: base.Format(time.RFC3339)} },
			wantErr: ErrAppointmentNotFound,
		},
		{
			name:    "bad start",
			status:  domain.StatusBooked,
			req:     func(id int64) *Request { return &Request{AppointmentID: id, StartAt: "tomorrow"} },
			wantErr: ErrInvalidStartTime,
		},
		{
			name:   "inactive employee",
			status: domain.StatusBooked,
			req: func(id int64) *Request {
				return &Request{AppointmentID: id, StartAt: base.Format(time.RFC3339), EmployeeID: ptr.Ptr[int64](9)}
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name:   "outside business hours",
			status: domain.StatusBooked,
			req: func(id int64) *Request {
				return &Request{AppointmentID: id, StartAt: base.Add(9 * time.Hour).Format(time.RFC3339)}
			},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			original := f.add(t, base, tt.status, ptr.Ptr[int64](7))

			_, err := f.uc.Execute(context.Background(), tt.req(original.ID))
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.status, f.get(t, original.ID).Status)
		})
	}
}
