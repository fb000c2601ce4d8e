package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

const table = "appointments"

// exclusionViolation is SQLSTATE 23P01.
const exclusionViolation = "23P01"

var columns = []string{
	"id",
	"location_id",
	"service_id",
	"employee_id",
	"resource_id",
	"start_at",
	"end_at",
	"status",
	"customer_name",
	"customer_email",
	"customer_phone",
	"notes",
	"rescheduled_from_id",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

var constraintReasons = map[string]domain.ConflictReason{
	"appointments_employee_no_overlap": domain.ConflictEmployeeBusy,
	"appointments_resource_no_overlap": domain.ConflictResourceBusy,
	"appointments_location_no_overlap": domain.ConflictLocationBusy,
}

// Repository репозиторий для работы с записями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись
// Если в контексте передана активная транзакция, использует её.
// Пересечение, отклоненное exclusion-ограничением, возвращается как *storage.OverlapError.
func (r *Repository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := buildInsertQuery(a)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", storage.ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&a.ID, &createdAt, &updatedAt)
	if err != nil {
		if overlap := overlapFromError(err); overlap != nil {
			return nil, overlap
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", storage.ErrExecQuery, err)
	}

	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return a, nil
}

// GetByID получает запись по ID
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := buildGetByIDQuery(id, dbmetrics.IsInTransaction(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", storage.ErrBuildQuery, err)
	}

	a, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %w", storage.ErrScanRow, err)
	}

	return a, nil
}

// List получает записи локации по фильтру, упорядоченные по времени начала
// Внутри транзакции выборка занимающих записей блокируется (FOR UPDATE)
func (r *Repository) List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	forUpdate := dbmetrics.IsInTransaction(ctx) && filter.OccupyingOnly
	query, args, err := buildListQuery(filter, forUpdate)
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", storage.ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", storage.ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan appointment: %w", storage.ErrScanRow, err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %w", storage.ErrScanRow, err)
	}

	return result, nil
}

// Update сохраняет изменяемые поля записи: статус и данные отмены
func (r *Repository) Update(ctx context.Context, a *domain.Appointment) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := buildUpdateQuery(a)
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", storage.ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if overlap := overlapFromError(err); overlap != nil {
			return overlap
		}
		return fmt.Errorf("%w: Update - execute update: %w", storage.ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %w", storage.ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return storage.ErrAppointmentNotFound
	}

	return nil
}

func buildInsertQuery(a *domain.Appointment) (string, []interface{}, error) {
	return psqlbuilder.Insert(table).
		Columns(
			"location_id",
			"service_id",
			"employee_id",
			"resource_id",
			"start_at",
			"end_at",
			"status",
			"customer_name",
			"customer_email",
			"customer_phone",
			"notes",
			"rescheduled_from_id",
		).
		Values(
			a.LocationID,
			a.ServiceID,
			a.EmployeeID,
			a.ResourceID,
			a.StartAt.UTC(),
			a.EndAt.UTC(),
			string(a.Status),
			a.Customer.Name,
			a.Customer.Email,
			a.Customer.Phone,
			a.Notes,
			a.RescheduledFromID,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
}

func buildGetByIDQuery(id int64, forUpdate bool) (string, []interface{}, error) {
	builder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id})

	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	return builder.ToSql()
}

func buildListQuery(filter domain.AppointmentFilter, forUpdate bool) (string, []interface{}, error) {
	builder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"location_id": filter.LocationID})

	// Пересечение с [From, To)
	if filter.From != nil {
		builder = builder.Where(squirrel.Gt{"end_at": filter.From.UTC()})
	}
	if filter.To != nil {
		builder = builder.Where(squirrel.Lt{"start_at": filter.To.UTC()})
	}
	if filter.EmployeeID != nil {
		builder = builder.Where(squirrel.Eq{"employee_id": *filter.EmployeeID})
	}
	if filter.ResourceID != nil {
		builder = builder.Where(squirrel.Eq{"resource_id": *filter.ResourceID})
	}

	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": string(*filter.Status)})
	} else if filter.OccupyingOnly {
		builder = builder.Where(squirrel.Eq{"status": statusStrings(domain.OccupyingStatuses)})
	}

	builder = builder.OrderBy("start_at ASC", "id ASC")

	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	return builder.ToSql()
}

func buildUpdateQuery(a *domain.Appointment) (string, []interface{}, error) {
	updatedAt := a.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	return psqlbuilder.Update(table).
		Set("status", string(a.Status)).
		Set("cancellation_reason", a.CancellationReason).
		Set("cancelled_at", a.CancelledAt).
		Set("updated_at", updatedAt.UTC()).
		Where(squirrel.Eq{"id": a.ID}).
		ToSql()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var (
		a                      domain.Appointment
		status                 string
		employeeID, resourceID sql.NullInt64
		rescheduledFromID      sql.NullInt64
		notes, cancellation    sql.NullString
		cancelledAt            sql.NullTime
		createdAt, updatedAt   sql.NullTime
	)

	err := row.Scan(
		&a.ID,
		&a.LocationID,
		&a.ServiceID,
		&employeeID,
		&resourceID,
		&a.StartAt,
		&a.EndAt,
		&status,
		&a.Customer.Name,
		&a.Customer.Email,
		&a.Customer.Phone,
		&notes,
		&rescheduledFromID,
		&cancellation,
		&cancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Status = domain.Status(status)
	a.EmployeeID = int64Ptr(employeeID)
	a.ResourceID = int64Ptr(resourceID)
	a.RescheduledFromID = int64Ptr(rescheduledFromID)
	a.Notes = stringPtr(notes)
	a.CancellationReason = stringPtr(cancellation)
	if cancelledAt.Valid {
		t := cancelledAt.Time
		a.CancelledAt = &t
	}
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return &a, nil
}

func overlapFromError(err error) *storage.OverlapError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != exclusionViolation {
		return nil
	}
	reason, ok := constraintReasons[pqErr.Constraint]
	if !ok {
		reason = domain.ConflictLocationBusy
	}
	return &storage.OverlapError{Reasons: []domain.ConflictReason{reason}}
}

func statusStrings(statuses []domain.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
