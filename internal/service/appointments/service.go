// Package appointments serves reads and lifecycle changes of existing
// appointments.
package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/events"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
)

const (
	operationTransition = "transition"
	operationCancel     = "cancel"
	outcomeNoop         = "noop"
)

// Service сервис для работы с записями
type Service struct {
	repo         AppointmentRepository
	locker       Locker
	txManager    TransactionManager
	publisher    EventPublisher
	metrics      Metrics
	timeProvider TimeProvider
	storeTimeout time.Duration
	logger       Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	repo AppointmentRepository,
	locker Locker,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics Metrics,
	storeTimeout time.Duration,
	logger Logger,
) *Service {
	return &Service{
		repo:         repo,
		locker:       locker,
		txManager:    txManager,
		publisher:    publisher,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		storeTimeout: storeTimeout,
		logger:       logger,
	}
}

// GetByID получает запись по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d", id)

	if id <= 0 {
		return nil, fmt.Errorf("%w: appointment id must be positive", ErrInvalidInput)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointment(a), nil
}

// List получает записи локации, пересекающиеся с периодом [From, To).
// По умолчанию возвращаются только занимающие время записи.
func (s *Service) List(ctx context.Context, req *models.ListAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("List: fetching appointments for location=%d, period=%s to %s",
		req.LocationID, req.From.Format(time.RFC3339), req.To.Format(time.RFC3339))

	// 1. Валидация периода
	if req.LocationID <= 0 {
		return nil, fmt.Errorf("%w: location id must be positive", ErrInvalidInput)
	}
	if !req.From.Before(req.To) {
		return nil, fmt.Errorf("%w: from must be before to", ErrInvalidTimeRange)
	}
	if req.To.Sub(req.From) > domain.MaxListRangeDays*24*time.Hour {
		return nil, fmt.Errorf("%w: period must not exceed %d days", ErrInvalidTimeRange, domain.MaxListRangeDays)
	}

	// 2. Конвертируем request в domain фильтр
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter for location=%d: %v", req.LocationID, err)
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	// 3. Читаем без блокировок
	var list []*domain.Appointment
	err = s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		list, err = s.repo.List(txCtx, filter)
		return err
	})
	if err != nil {
		s.logger.Error("List: repository error for location=%d: %v", req.LocationID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: successfully fetched %d appointments for location=%d", len(list), req.LocationID)
	return models.FromDomainAppointmentList(list), nil
}

// Transition переводит запись в новый статус по таблице переходов
func (s *Service) Transition(ctx context.Context, id int64, req *models.TransitionRequest) (*models.TransitionResponse, error) {
	s.logger.Info("Transition: appointment id=%d to status=%s", id, req.Status)

	to, err := domain.ParseStatus(req.Status)
	if err != nil {
		s.logger.Warn("Transition: invalid status=%q for appointment id=%d", req.Status, id)
		s.metrics.RecordBooking(operationTransition, domain.Category(err))
		return nil, err
	}

	if to == domain.StatusCancelled {
		return s.Cancel(ctx, id, &models.CancelRequest{})
	}

	return s.change(ctx, operationTransition, id, func(a *domain.Appointment, now time.Time) (bool, error) {
		return a.Transition(to, now)
	})
}

// Cancel отменяет запись. Повторная отмена успешна и ничего не меняет.
func (s *Service) Cancel(ctx context.Context, id int64, req *models.CancelRequest) (*models.TransitionResponse, error) {
	s.logger.Info("Cancel: cancelling appointment id=%d", id)

	if req.Reason != nil && len([]rune(*req.Reason)) > domain.MaxCancellationReasonLength {
		err := fmt.Errorf("%w: reason must not exceed %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
		s.metrics.RecordBooking(operationCancel, domain.Category(err))
		return nil, err
	}

	return s.change(ctx, operationCancel, id, func(a *domain.Appointment, now time.Time) (bool, error) {
		return a.Cancel(req.Reason, now)
	})
}

// change применяет переход под блокировкой записи и публикует событие после фиксации
func (s *Service) change(
	ctx context.Context,
	operation string,
	id int64,
	apply func(a *domain.Appointment, now time.Time) (bool, error),
) (*models.TransitionResponse, error) {
	if id <= 0 {
		err := fmt.Errorf("%w: appointment id must be positive", ErrInvalidInput)
		s.metrics.RecordBooking(operation, domain.Category(err))
		return nil, err
	}

	var (
		result   *domain.Appointment
		previous domain.Status
		changed  bool
	)

	err := func() error {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()

		// 1. Блокируем запись
		unlock, err := s.locker.Lock(ctx, domain.AppointmentLockKey(id))
		if err != nil {
			return fmt.Errorf("%w: lock appointment %d: %v", ErrInternal, id, err)
		}
		defer unlock()

		// 2. Читаем, проверяем переход и сохраняем в одной транзакции
		return s.txManager.Do(ctx, func(txCtx context.Context) error {
			a, err := s.repo.GetByID(txCtx, id)
			if err != nil {
				if errors.Is(err, storage.ErrAppointmentNotFound) {
					return ErrAppointmentNotFound
				}
				return fmt.Errorf("%w: load appointment %d: %v", ErrInternal, id, err)
			}

			previous = a.Status
			changed, err = apply(a, s.timeProvider.Now())
			if err != nil {
				return err
			}

			if changed {
				if err := s.repo.Update(txCtx, a); err != nil {
					return fmt.Errorf("%w: update appointment %d: %v", ErrInternal, id, err)
				}
			}

			result = a
			return nil
		})
	}()
	if err != nil {
		err = wrapStore(err)
		if errors.Is(err, domain.ErrStore) {
			s.logger.Error("%s: appointment id=%d failed: %v", operation, id, err)
		} else {
			s.logger.Warn("%s: appointment id=%d rejected: %v", operation, id, err)
		}
		s.metrics.RecordBooking(operation, domain.Category(err))
		return nil, err
	}

	if !changed {
		s.logger.Info("%s: appointment id=%d already %s, nothing to do", operation, id, result.Status)
		s.metrics.RecordBooking(operation, outcomeNoop)
		return &models.TransitionResponse{Appointment: *models.FromDomainAppointment(result), Changed: false}, nil
	}

	s.logger.Info("%s: appointment id=%d moved %s -> %s", operation, id, previous, result.Status)
	s.metrics.RecordBooking(operation, domain.Category(nil))
	s.publish(ctx, result, previous)

	return &models.TransitionResponse{Appointment: *models.FromDomainAppointment(result), Changed: true}, nil
}

// publish отправляет событие; ошибка публикации только логируется
func (s *Service) publish(ctx context.Context, a *domain.Appointment, previous domain.Status) {
	eventType := events.TypeStatusChanged
	if a.Status == domain.StatusCancelled {
		eventType = events.TypeCancelled
	}

	e := events.NewEvent(eventType, a, s.timeProvider.Now())
	e.PreviousStatus = previous.String()

	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("publish: event %s for appointment id=%d failed: %v", eventType, a.ID, err)
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

// wrapStore относит ошибки без категории (транзакция, драйвер) к ошибкам хранилища
func wrapStore(err error) error {
	if domain.Category(err) == "internal" {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return err
}
