// Package policy resolves and maintains scheduling policies.
package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage"
	"github.com/m04kA/SMC-SchedulingService/internal/service/policy/models"
)

// Defaults are the policy values used when no stored policy applies.
type Defaults struct {
	GranularityMinutes int
	MinLeadMinutes     int
	AdvanceBookingDays int
	MaxSuggestions     int
}

// DomainDefaults returns the built-in defaults.
func DomainDefaults() Defaults {
	return Defaults{
		GranularityMinutes: domain.DefaultGranularityMinutes,
		MinLeadMinutes:     domain.DefaultMinLeadMinutes,
		AdvanceBookingDays: domain.DefaultAdvanceBookingDays,
		MaxSuggestions:     domain.DefaultMaxSuggestions,
	}
}

// Service сервис для работы с политиками расписания
type Service struct {
	repo      PolicyRepository
	catalog   CatalogResolver
	txManager TransactionManager
	defaults  Defaults
	logger    Logger
}

// NewService создает новый экземпляр сервиса политик
func NewService(
	repo PolicyRepository,
	catalog CatalogResolver,
	txManager TransactionManager,
	defaults Defaults,
	logger Logger,
) *Service {
	return &Service{
		repo:      repo,
		catalog:   catalog,
		txManager: txManager,
		defaults:  defaults,
		logger:    logger,
	}
}

// Effective возвращает действующую политику с учетом иерархии:
// услуга в локации > локация > значения по умолчанию
func (s *Service) Effective(ctx context.Context, locationID int64, serviceID *int64) (*domain.SchedulingPolicy, error) {
	p, _, err := s.effective(ctx, locationID, serviceID)
	return p, err
}

func (s *Service) effective(ctx context.Context, locationID int64, serviceID *int64) (*domain.SchedulingPolicy, models.Source, error) {
	p, err := s.repo.GetWithHierarchy(ctx, locationID, serviceID)
	if err == nil {
		return p, models.SourceOf(p), nil
	}
	if !errors.Is(err, storage.ErrPolicyNotFound) {
		s.logger.Error("Effective: repository error for location=%d: %v", locationID, err)
		return nil, "", fmt.Errorf("%w: Effective - repository error: %v", ErrInternal, err)
	}

	return s.defaultPolicy(locationID), models.SourceDefault, nil
}

func (s *Service) defaultPolicy(locationID int64) *domain.SchedulingPolicy {
	return &domain.SchedulingPolicy{
		LocationID:         locationID,
		GranularityMinutes: s.defaults.GranularityMinutes,
		MinLeadMinutes:     s.defaults.MinLeadMinutes,
		AdvanceBookingDays: s.defaults.AdvanceBookingDays,
		MaxSuggestions:     s.defaults.MaxSuggestions,
	}
}

// Get получает действующую политику и уровень, на котором она найдена
func (s *Service) Get(ctx context.Context, req *models.GetPolicyRequest) (*models.PolicyResponse, error) {
	s.logger.Info("Get: fetching policy for location=%d, service=%v", req.LocationID, req.ServiceID)

	if err := s.checkTarget(ctx, req.LocationID, req.ServiceID); err != nil {
		s.logger.Warn("Get: invalid target location=%d, service=%v: %v", req.LocationID, req.ServiceID, err)
		return nil, err
	}

	p, source, err := s.effective(ctx, req.LocationID, req.ServiceID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Get: resolved policy for location=%d (level: %s)", req.LocationID, source)
	return models.FromDomainPolicy(p, source), nil
}

// List получает все сохраненные политики локации
func (s *Service) List(ctx context.Context, locationID int64) (*models.PolicyListResponse, error) {
	s.logger.Info("List: fetching policies for location=%d", locationID)

	if err := s.checkTarget(ctx, locationID, nil); err != nil {
		return nil, err
	}

	policies, err := s.repo.ListByLocation(ctx, locationID)
	if err != nil {
		s.logger.Error("List: repository error for location=%d: %v", locationID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainPolicyList(policies), nil
}

// Upsert создает политику уровня (локация, услуга) или обновляет существующую.
// Новая политика наследует значения родительского уровня, затем применяются
// переданные поля.
func (s *Service) Upsert(ctx context.Context, req *models.UpdatePolicyRequest) (*models.PolicyResponse, error) {
	s.logger.Info("Upsert: updating policy for location=%d, service=%v", req.LocationID, req.ServiceID)

	// 1. Валидируем входные данные
	if req.IsEmpty() {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}
	if err := s.checkTarget(ctx, req.LocationID, req.ServiceID); err != nil {
		s.logger.Warn("Upsert: invalid target location=%d, service=%v: %v", req.LocationID, req.ServiceID, err)
		return nil, err
	}

	var result *domain.SchedulingPolicy

	// 2. Читаем и пишем в одной транзакции
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByLocationAndService(txCtx, req.LocationID, req.ServiceID)
		if err != nil && !errors.Is(err, storage.ErrPolicyNotFound) {
			return fmt.Errorf("%w: Upsert - repository error: %v", ErrInternal, err)
		}

		// 2.1. Политика уже есть - обновляем
		if existing != nil {
			req.ApplyToPolicy(existing)
			if err := existing.Validate(); err != nil {
				return err
			}
			result, err = s.repo.Update(txCtx, existing)
			if err != nil {
				return fmt.Errorf("%w: Upsert - update: %v", ErrInternal, err)
			}
			return nil
		}

		// 2.2. Политики нет - создаем от родительского уровня
		var parent *domain.SchedulingPolicy
		if req.ServiceID != nil {
			parent, _, err = s.effective(txCtx, req.LocationID, nil)
			if err != nil {
				return err
			}
		} else {
			parent = s.defaultPolicy(req.LocationID)
		}

		created := &domain.SchedulingPolicy{
			LocationID:         req.LocationID,
			ServiceID:          req.ServiceID,
			GranularityMinutes: parent.GranularityMinutes,
			MinLeadMinutes:     parent.MinLeadMinutes,
			AdvanceBookingDays: parent.AdvanceBookingDays,
			MaxSuggestions:     parent.MaxSuggestions,
		}
		req.ApplyToPolicy(created)
		if err := created.Validate(); err != nil {
			return err
		}
		result, err = s.repo.Create(txCtx, created)
		if err != nil {
			return fmt.Errorf("%w: Upsert - create: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			s.logger.Warn("Upsert: validation failed: %v", err)
		} else {
			s.logger.Error("Upsert: failed for location=%d: %v", req.LocationID, err)
		}
		return nil, err
	}

	s.logger.Info("Upsert: successfully saved policy id=%d", result.ID)
	return models.FromDomainPolicy(result, models.SourceOf(result)), nil
}

func (s *Service) checkTarget(ctx context.Context, locationID int64, serviceID *int64) error {
	if locationID <= 0 {
		return fmt.Errorf("%w: locationId must be positive", ErrInvalidInput)
	}
	if serviceID == nil {
		_, _, err := s.catalog.Location(ctx, locationID)
		return err
	}
	if *serviceID <= 0 {
		return fmt.Errorf("%w: serviceId must be positive", ErrInvalidInput)
	}
	_, err := s.catalog.Resolve(ctx, locationID, *serviceID, nil, nil)
	return err
}
