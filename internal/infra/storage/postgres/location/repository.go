package location

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий справочных данных: локации, услуги, сотрудники, ресурсы.
// Справочник ведется внешней системой, здесь только чтение.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetLocation получает локацию вместе с рабочими часами
func (r *Repository) GetLocation(ctx context.Context, id int64) (*domain.Location, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "timezone", "active", "created_at", "updated_at").
		From("locations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetLocation - build select query: %v", storage.ErrBuildQuery, err)
	}

	var loc domain.Location
	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&loc.ID,
		&loc.Name,
		&loc.Timezone,
		&loc.Active,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrLocationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetLocation - scan location: %w", storage.ErrScanRow, err)
	}
	loc.CreatedAt = createdAt.Time
	loc.UpdatedAt = updatedAt.Time

	hours, err := r.getBusinessHours(ctx, executor, id)
	if err != nil {
		return nil, err
	}
	loc.BusinessHours = hours

	return &loc, nil
}

func (r *Repository) getBusinessHours(ctx context.Context, executor DBExecutor, locationID int64) (domain.WeeklyHours, error) {
	query, args, err := psqlbuilder.Select("weekday", "open_time", "close_time").
		From("location_business_hours").
		Where(squirrel.Eq{"location_id": locationID}).
		OrderBy("weekday ASC", "open_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getBusinessHours - build select query: %v", storage.ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getBusinessHours - execute query: %w", storage.ErrExecQuery, err)
	}
	defer rows.Close()

	hours := make(domain.WeeklyHours)
	for rows.Next() {
		var weekday int
		var openTime, closeTime types.TimeString
		if err := rows.Scan(&weekday, &openTime, &closeTime); err != nil {
			return nil, fmt.Errorf("%w: getBusinessHours - scan row: %w", storage.ErrScanRow, err)
		}
		wd := time.Weekday(weekday)
		hours[wd] = append(hours[wd], domain.TimeRange{Open: openTime, Close: closeTime})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getBusinessHours - rows error: %w", storage.ErrScanRow, err)
	}

	return hours, nil
}

// GetService получает услугу по ID
func (r *Repository) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"location_id",
		"name",
		"duration_min",
		"buffer_before_min",
		"buffer_after_min",
		"active",
	).
		From("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", storage.ErrBuildQuery, err)
	}

	var s domain.Service
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&s.LocationID,
		&s.Name,
		&s.DurationMin,
		&s.BufferBeforeMin,
		&s.BufferAfterMin,
		&s.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %w", storage.ErrScanRow, err)
	}

	return &s, nil
}

// GetEmployee получает сотрудника по ID
func (r *Repository) GetEmployee(ctx context.Context, id int64) (*domain.Employee, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "location_id", "name", "active").
		From("employees").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetEmployee - build select query: %v", storage.ErrBuildQuery, err)
	}

	var e domain.Employee
	err = executor.QueryRowContext(ctx, query, args...).Scan(&e.ID, &e.LocationID, &e.Name, &e.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetEmployee - scan employee: %w", storage.ErrScanRow, err)
	}

	return &e, nil
}

// GetResource получает ресурс по ID
func (r *Repository) GetResource(ctx context.Context, id int64) (*domain.Resource, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "location_id", "name", "capacity", "active").
		From("resources").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetResource - build select query: %v", storage.ErrBuildQuery, err)
	}

	var res domain.Resource
	err = executor.QueryRowContext(ctx, query, args...).Scan(&res.ID, &res.LocationID, &res.Name, &res.Capacity, &res.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrResourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetResource - scan resource: %w", storage.ErrScanRow, err)
	}

	return &res, nil
}
