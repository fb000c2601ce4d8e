package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/events"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling"
	"github.com/m04kA/SMC-SchedulingService/pkg/keylock"
	"github.com/m04kA/SMC-SchedulingService/pkg/tracing"
)

const operation = "create"

var tracer = tracing.Tracer("usecase/create_booking")

// UseCase use case для создания записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	catalog         CatalogResolver
	policies        PolicyProvider
	locker          Locker
	txManager       TransactionManager
	publisher       EventPublisher
	metrics         Metrics
	timeProvider    TimeProvider
	storeTimeout    time.Duration
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	catalog CatalogResolver,
	policies PolicyProvider,
	locker Locker,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics Metrics,
	storeTimeout time.Duration,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		catalog:         catalog,
		policies:        policies,
		locker:          locker,
		txManager:       txManager,
		publisher:       publisher,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		storeTimeout:    storeTimeout,
		logger:          logger,
	}
}

// Execute выполняет use case создания записи.
// Проверка пересечений и вставка выполняются под блокировками ключей
// сотрудника/ресурса (или локации) в сериализуемой транзакции.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	ctx, span := tracer.Start(ctx, "CreateBooking")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, domain.Category(err))
		}
		span.End()
		uc.metrics.RecordBooking(operation, domain.Category(err))
	}()

	uc.logger.Info("CreateBooking: location=%d, service=%d, startAt=%s", req.LocationID, req.ServiceID, req.StartAt)

	// 1. Валидация входных данных (без обращения к хранилищу)
	startAt, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	ctx, cancel := uc.withTimeout(ctx)
	defer cancel()

	// 2. Загружаем локацию, услугу, сотрудника и ресурс
	target, err := uc.catalog.Resolve(ctx, req.LocationID, req.ServiceID, req.EmployeeID, req.ResourceID)
	if err != nil {
		uc.logger.Warn("CreateBooking: catalog lookup failed for location=%d, service=%d: %v", req.LocationID, req.ServiceID, err)
		return nil, err
	}

	// 3. Получаем действующую политику расписания
	policy, err := uc.policies.Effective(ctx, req.LocationID, &req.ServiceID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get policy for location=%d: %v", req.LocationID, err)
		return nil, err
	}

	// 4. Вычисляем интервал и проверяем окно бронирования
	candidate := domain.Interval{Start: startAt, End: startAt.Add(target.Service.TotalSpan())}
	now := uc.timeProvider.Now()
	if err := scheduling.CheckBookingWindow(target.Location, policy, candidate, now); err != nil {
		uc.logger.Warn("CreateBooking: booking window check failed: %v", err)
		return nil, err
	}

	assignment := target.Assignment()
	span.SetAttributes(
		attribute.Int64("location.id", req.LocationID),
		attribute.Int64("service.id", req.ServiceID),
		attribute.String("appointment.start", candidate.Start.Format(time.RFC3339)),
	)

	status := domain.StatusBooked
	if req.Hold {
		status = domain.StatusPending
	}

	var result *domain.Appointment

	// 5. Блокируем ключи и выполняем проверку с вставкой в сериализуемой транзакции
	lockStarted := time.Now()
	err = keylock.WithLock(ctx, uc.locker, assignment.LockKeys(req.LocationID), func(lockCtx context.Context) error {
		uc.metrics.ObserveLockWait(time.Since(lockStarted))

		return uc.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			// 5.1. Загружаем занимающие записи, пересекающиеся с интервалом
			existing, err := uc.appointmentRepo.List(txCtx, domain.AppointmentFilter{
				LocationID:    req.LocationID,
				From:          &candidate.Start,
				To:            &candidate.End,
				OccupyingOnly: true,
			})
			if err != nil {
				return fmt.Errorf("%w: failed to load appointments: %w", ErrInternal, err)
			}

			// 5.2. Проверяем конфликты
			if reasons := scheduling.ResolveConflicts(candidate, assignment, existing, 0); len(reasons) > 0 {
				return &domain.ConflictError{Reasons: reasons}
			}

			// 5.3. Создаем запись
			created, err := uc.appointmentRepo.Create(txCtx, &domain.Appointment{
				LocationID: req.LocationID,
				ServiceID:  req.ServiceID,
				StartAt:    candidate.Start,
				EndAt:      candidate.End,
				Status:     status,
				EmployeeID: assignment.EmployeeID,
				ResourceID: assignment.ResourceID,
				Customer:   req.Customer,
				Notes:      req.Notes,
				CreatedAt:  now,
				UpdatedAt:  now,
			})
			if err != nil {
				return mapCreateError(err)
			}

			result = created
			return nil
		})
	})
	if err != nil {
		err = wrapStore(err)
		if errors.Is(err, domain.ErrConflict) {
			uc.logger.Warn("CreateBooking: conflict for location=%d at %s: %v", req.LocationID, req.StartAt, err)
		} else {
			uc.logger.Error("CreateBooking: failed to create appointment: %v", err)
		}
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created appointment id=%d, status=%s", result.ID, result.Status)
	span.SetAttributes(attribute.Int64("appointment.id", result.ID))

	// 6. Публикуем событие после фиксации транзакции
	if err := uc.publisher.Publish(ctx, events.NewEvent(events.TypeBooked, result, now)); err != nil {
		uc.logger.Warn("CreateBooking: failed to publish event for appointment id=%d: %v", result.ID, err)
	}

	return &Response{Appointment: result}, nil
}

func (uc *UseCase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if uc.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, uc.storeTimeout)
}

// mapCreateError превращает отказ ограничения исключения в конфликт
func mapCreateError(err error) error {
	var overlapErr *storage.OverlapError
	if errors.As(err, &overlapErr) {
		return &domain.ConflictError{Reasons: overlapErr.Reasons}
	}
	return fmt.Errorf("%w: failed to create appointment: %w", ErrInternal, err)
}

// wrapStore относит ошибки без категории (блокировки, транзакция) к ошибкам хранилища
func wrapStore(err error) error {
	if domain.Category(err) == "internal" {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return err
}
