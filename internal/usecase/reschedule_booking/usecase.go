package reschedule_booking

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
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
	"github.com/m04kA/SMC-SchedulingService/pkg/tracing"
)

const operation = "reschedule"

var tracer = tracing.Tracer("usecase/reschedule_booking")

// UseCase use case для переноса записи
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

// Execute выполняет перенос: отмена исходной записи и создание новой
// в одной транзакции под блокировками старых и новых ключей.
// При конфликте транзакция откатывается, исходная запись не меняется.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	ctx, span := tracer.Start(ctx, "RescheduleBooking")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, domain.Category(err))
		}
		span.End()
		uc.metrics.RecordBooking(operation, domain.Category(err))
	}()

	uc.logger.Info("RescheduleBooking: appointment=%d, startAt=%s", req.AppointmentID, req.StartAt)

	// 1. Валидация входных данных
	startAt, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	ctx, cancel := uc.withTimeout(ctx)
	defer cancel()

	// 2. Загружаем исходную запись
	original, err := uc.load(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}
	if err := validateReschedulable(original); err != nil {
		uc.logger.Warn("RescheduleBooking: appointment id=%d cannot be rescheduled: %v", original.ID, err)
		return nil, err
	}

	// 3. Загружаем каталог для нового назначения
	target, err := uc.catalog.Resolve(ctx, original.LocationID, original.ServiceID,
		keepOrReplace(req.EmployeeID, original.EmployeeID), keepOrReplace(req.ResourceID, original.ResourceID))
	if err != nil {
		uc.logger.Warn("RescheduleBooking: catalog lookup failed for appointment id=%d: %v", original.ID, err)
		return nil, err
	}

	// 4. Проверяем окно бронирования по действующей политике
	policy, err := uc.policies.Effective(ctx, original.LocationID, ptr.Ptr(original.ServiceID))
	if err != nil {
		uc.logger.Error("RescheduleBooking: failed to get policy for location=%d: %v", original.LocationID, err)
		return nil, err
	}

	candidate := domain.Interval{Start: startAt, End: startAt.Add(target.Service.TotalSpan())}
	now := uc.timeProvider.Now()
	if err := scheduling.CheckBookingWindow(target.Location, policy, candidate, now); err != nil {
		uc.logger.Warn("RescheduleBooking: booking window check failed: %v", err)
		return nil, err
	}

	assignment := target.Assignment()
	span.SetAttributes(
		attribute.Int64("appointment.id", original.ID),
		attribute.String("appointment.start", candidate.Start.Format(time.RFC3339)),
	)

	// 5. Блокируем старые и новые ключи, а также саму запись
	keys := append(original.Assignment().LockKeys(original.LocationID), assignment.LockKeys(original.LocationID)...)
	keys = append(keys, domain.AppointmentLockKey(original.ID))

	var cancelled, created *domain.Appointment

	lockStarted := time.Now()
	err = keylock.WithLock(ctx, uc.locker, keys, func(lockCtx context.Context) error {
		uc.metrics.ObserveLockWait(time.Since(lockStarted))

		return uc.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			// 5.1. Перечитываем запись под блокировкой
			current, err := uc.appointmentRepo.GetByID(txCtx, original.ID)
			if err != nil {
				if errors.Is(err, storage.ErrAppointmentNotFound) {
					return ErrAppointmentNotFound
				}
				return fmt.Errorf("%w: failed to load appointment: %w", ErrInternal, err)
			}
			if err := validateReschedulable(current); err != nil {
				return err
			}
			previous := current.Status

			// 5.2. Отменяем исходную запись
			if _, err := current.Cancel(ptr.Ptr(domain.RescheduledReason), now); err != nil {
				return err
			}
			if err := uc.appointmentRepo.Update(txCtx, current); err != nil {
				return fmt.Errorf("%w: failed to cancel appointment: %w", ErrInternal, err)
			}

			// 5.3. Проверяем конфликты нового интервала
			existing, err := uc.appointmentRepo.List(txCtx, domain.AppointmentFilter{
				LocationID:    current.LocationID,
				From:          &candidate.Start,
				To:            &candidate.End,
				OccupyingOnly: true,
			})
			if err != nil {
				return fmt.Errorf("%w: failed to load appointments: %w", ErrInternal, err)
			}
			if reasons := scheduling.ResolveConflicts(candidate, assignment, existing, current.ID); len(reasons) > 0 {
				return &domain.ConflictError{Reasons: reasons}
			}

			// 5.4. Создаем новую запись с прежним статусом
			next, err := uc.appointmentRepo.Create(txCtx, &domain.Appointment{
				LocationID:        current.LocationID,
				ServiceID:         current.ServiceID,
				StartAt:           candidate.Start,
				EndAt:             candidate.End,
				Status:            previous,
				EmployeeID:        assignment.EmployeeID,
				ResourceID:        assignment.ResourceID,
				Customer:          current.Customer,
				Notes:             current.Notes,
				RescheduledFromID: ptr.Ptr(current.ID),
				CreatedAt:         now,
				UpdatedAt:         now,
			})
			if err != nil {
				return mapCreateError(err)
			}

			cancelled, created = current, next
			return nil
		})
	})
	if err != nil {
		err = wrapStore(err)
		if errors.Is(err, domain.ErrStore) {
			uc.logger.Error("RescheduleBooking: failed to reschedule appointment id=%d: %v", original.ID, err)
		} else {
			uc.logger.Warn("RescheduleBooking: appointment id=%d rejected: %v", original.ID, err)
		}
		return nil, err
	}

	uc.logger.Info("RescheduleBooking: appointment id=%d moved to id=%d", cancelled.ID, created.ID)

	// 6. Публикуем событие после фиксации транзакции
	e := events.NewEvent(events.TypeRescheduled, created, now)
	if err := uc.publisher.Publish(ctx, e); err != nil {
		uc.logger.Warn("RescheduleBooking: failed to publish event for appointment id=%d: %v", created.ID, err)
	}

	return &Response{Original: cancelled, Appointment: created}, nil
}

// load получает запись вне транзакции, чтобы определить ключи блокировок
func (uc *UseCase) load(ctx context.Context, id int64) (*domain.Appointment, error) {
	a, err := uc.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrAppointmentNotFound) {
			uc.logger.Warn("RescheduleBooking: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("RescheduleBooking: failed to get appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
	}
	return a, nil
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
