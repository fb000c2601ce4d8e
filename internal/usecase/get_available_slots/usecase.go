package get_available_slots

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling"
	"github.com/m04kA/SMC-SchedulingService/internal/service/catalog"
	"github.com/m04kA/SMC-SchedulingService/pkg/tracing"
)

var tracer = tracing.Tracer("usecase/get_available_slots")

// UseCase use case для получения доступных слотов для бронирования
type UseCase struct {
	appointmentRepo AppointmentRepository
	catalog         CatalogResolver
	policies        PolicyProvider
	timeProvider    TimeProvider
	storeTimeout    time.Duration
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	catalog CatalogResolver,
	policies PolicyProvider,
	storeTimeout time.Duration,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		catalog:         catalog,
		policies:        policies,
		timeProvider:    &RealTimeProvider{},
		storeTimeout:    storeTimeout,
		logger:          logger,
	}
}

// Execute выполняет use case получения доступных слотов.
// Блокировки не берутся: результат является снимком и может устареть.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	ctx, span := tracer.Start(ctx, "GetAvailableSlots")
	defer span.End()

	uc.logger.Info("GetAvailableSlots: location=%d, service=%d, date=%s", req.LocationID, req.ServiceID, req.Date)

	// 1. Валидация входных данных
	p, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	ctx, cancel := uc.withTimeout(ctx)
	defer cancel()

	// 3. Параллельно загружаем каталог, политику и записи периода.
	// Окно записей расширено на сутки в обе стороны, чтобы покрыть любой часовой пояс.
	var (
		target       *catalog.Target
		policy       *domain.SchedulingPolicy
		appointments []*domain.Appointment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		target, err = uc.catalog.Resolve(gctx, req.LocationID, req.ServiceID, req.EmployeeID, req.ResourceID)
		return err
	})
	g.Go(func() error {
		var err error
		policy, err = uc.policies.Effective(gctx, req.LocationID, &req.ServiceID)
		return err
	})
	g.Go(func() error {
		from, to := p.from.AddDate(0, 0, -1), p.to.AddDate(0, 0, 2)
		var err error
		appointments, err = uc.appointmentRepo.List(gctx, domain.AppointmentFilter{
			LocationID:    req.LocationID,
			From:          &from,
			To:            &to,
			OccupyingOnly: true,
		})
		if err != nil {
			return fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		uc.logger.Warn("GetAvailableSlots: lookup failed for location=%d, service=%d: %v", req.LocationID, req.ServiceID, err)
		return nil, err
	}

	// 4. Вычисляем свободные начала по дням в часовом поясе локации
	serviceSpan := target.Service.TotalSpan()
	busy := scheduling.BusyIntervals(target.Assignment(), appointments)
	horizon := policy.BookingHorizon(now, target.Zone)

	starts := make([]time.Time, 0)
	for day := p.from; !day.After(p.to); day = day.AddDate(0, 0, 1) {
		// полдень, чтобы переход на летнее время не сдвинул календарный день
		local := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, target.Zone)

		// окна следующего дня нужны для слотов, переходящих через полночь
		hours, err := scheduling.OpeningHours(target.Location, local)
		if err != nil {
			return nil, err
		}
		nextDay := domain.StartOfDay(local, target.Zone).AddDate(0, 0, 1)

		for _, s := range scheduling.ComputeAvailability(scheduling.AvailabilityInput{
			BusinessHours: hours,
			Busy:          busy,
			Span:          serviceSpan,
			LeadTime:      policy.MinLead(),
			Granularity:   policy.Granularity(),
			Now:           now,
			Zone:          target.Zone,
		}) {
			if !s.Before(nextDay) || (!horizon.IsZero() && !s.Before(horizon)) {
				break
			}
			starts = append(starts, s)
		}
	}

	// 5. Оставляем представительную выборку
	maxSuggestions := policy.MaxSuggestions
	if req.MaxSuggestions != nil {
		maxSuggestions = *req.MaxSuggestions
	}
	picked := scheduling.PickRepresentative(starts, maxSuggestions)
	span.SetAttributes(attribute.Int("slots.total", len(starts)), attribute.Int("slots.returned", len(picked)))

	uc.logger.Info("GetAvailableSlots: %d of %d starts for location=%d, service=%d, period=%s..%s",
		len(picked), len(starts), req.LocationID, req.ServiceID,
		p.from.Format(domain.DateFormat), p.to.Format(domain.DateFormat))

	return &Response{
		LocationID: req.LocationID,
		ServiceID:  req.ServiceID,
		DateFrom:   p.from.Format(domain.DateFormat),
		DateTo:     p.to.Format(domain.DateFormat),
		Timezone:   target.Location.Timezone,
		Slots:      scheduling.SlotsFromStarts(picked, serviceSpan),
	}, nil
}

func (uc *UseCase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if uc.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, uc.storeTimeout)
}
