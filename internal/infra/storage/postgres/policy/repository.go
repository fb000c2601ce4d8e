package policy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

const table = "scheduling_policies"

var columns = []string{
	"id",
	"location_id",
	"service_id",
	"granularity_minutes",
	"min_lead_minutes",
	"advance_booking_days",
	"max_suggestions",
	"created_at",
	"updated_at",
}

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий для работы с политиками расписания
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория политик
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую политику
func (r *Repository) Create(ctx context.Context, p *domain.SchedulingPolicy) (*domain.SchedulingPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"location_id",
			"service_id",
			"granularity_minutes",
			"min_lead_minutes",
			"advance_booking_days",
			"max_suggestions",
		).
		Values(
			p.LocationID,
			p.ServiceID,
			p.GranularityMinutes,
			p.MinLeadMinutes,
			p.AdvanceBookingDays,
			p.MaxSuggestions,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", storage.ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&p.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", storage.ErrExecQuery, err)
	}
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return p, nil
}

// Update обновляет параметры существующей политики
func (r *Repository) Update(ctx context.Context, p *domain.SchedulingPolicy) (*domain.SchedulingPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("granularity_minutes", p.GranularityMinutes).
		Set("min_lead_minutes", p.MinLeadMinutes).
		Set("advance_booking_days", p.AdvanceBookingDays).
		Set("max_suggestions", p.MaxSuggestions).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": p.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", storage.ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %w", storage.ErrExecQuery, err)
	}
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return p, nil
}

// GetByLocationAndService получает политику ровно для указанного уровня:
// serviceID == nil - политика всей локации
func (r *Repository) GetByLocationAndService(ctx context.Context, locationID int64, serviceID *int64) (*domain.SchedulingPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := buildExactQuery(locationID, serviceID, dbmetrics.IsInTransaction(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: GetByLocationAndService - build select query: %v", storage.ErrBuildQuery, err)
	}

	p, err := scanPolicy(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByLocationAndService - scan policy: %w", storage.ErrScanRow, err)
	}

	return p, nil
}

// GetWithHierarchy получает политику с учетом иерархии:
// 1. Политика услуги в локации (locationID, serviceID)
// 2. Политика всей локации (locationID, NULL)
//
// Если политика не найдена ни на одном уровне, возвращает storage.ErrPolicyNotFound
func (r *Repository) GetWithHierarchy(ctx context.Context, locationID int64, serviceID *int64) (*domain.SchedulingPolicy, error) {
	// 1. Пробуем получить политику конкретной услуги
	if serviceID != nil {
		p, err := r.GetByLocationAndService(ctx, locationID, serviceID)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, storage.ErrPolicyNotFound) {
			return nil, fmt.Errorf("%w: GetWithHierarchy - level 1 (service): %w", storage.ErrExecQuery, err)
		}
	}

	// 2. Пробуем получить политику локации
	p, err := r.GetByLocationAndService(ctx, locationID, nil)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, storage.ErrPolicyNotFound) {
		return nil, fmt.Errorf("%w: GetWithHierarchy - level 2 (location): %w", storage.ErrExecQuery, err)
	}

	return nil, storage.ErrPolicyNotFound
}

// ListByLocation получает все политики локации
func (r *Repository) ListByLocation(ctx context.Context, locationID int64) ([]*domain.SchedulingPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"location_id": locationID}).
		OrderBy("service_id ASC NULLS FIRST").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByLocation - build select query: %v", storage.ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByLocation - execute query: %w", storage.ErrExecQuery, err)
	}
	defer rows.Close()

	policies := make([]*domain.SchedulingPolicy, 0)
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByLocation - scan row: %w", storage.ErrScanRow, err)
		}
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByLocation - rows error: %w", storage.ErrScanRow, err)
	}

	return policies, nil
}

func buildExactQuery(locationID int64, serviceID *int64, forUpdate bool) (string, []interface{}, error) {
	builder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"location_id": locationID})

	if serviceID != nil {
		builder = builder.Where(squirrel.Eq{"service_id": *serviceID})
	} else {
		builder = builder.Where(squirrel.Eq{"service_id": nil})
	}

	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	return builder.ToSql()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPolicy(row rowScanner) (*domain.SchedulingPolicy, error) {
	var p domain.SchedulingPolicy
	var serviceID sql.NullInt64
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&p.ID,
		&p.LocationID,
		&serviceID,
		&p.GranularityMinutes,
		&p.MinLeadMinutes,
		&p.AdvanceBookingDays,
		&p.MaxSuggestions,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if serviceID.Valid {
		id := serviceID.Int64
		p.ServiceID = &id
	}
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return &p, nil
}
