// Package storage holds the errors shared by every store implementation, so
// callers can match them regardless of the backing store.
package storage

import (
	"errors"
	"strings"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrLocationNotFound возвращается, когда локация не найдена
	ErrLocationNotFound = errors.New("storage: location not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("storage: service not found")

	// ErrEmployeeNotFound возвращается, когда сотрудник не найден
	ErrEmployeeNotFound = errors.New("storage: employee not found")

	// ErrResourceNotFound возвращается, когда ресурс не найден
	ErrResourceNotFound = errors.New("storage: resource not found")

	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("storage: appointment not found")

	// ErrPolicyNotFound возвращается, когда политика расписания не найдена
	ErrPolicyNotFound = errors.New("storage: scheduling policy not found")

	// ErrOverlap возвращается, когда БД отклонила пересекающуюся запись
	ErrOverlap = errors.New("storage: overlapping appointment rejected")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("storage: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("storage: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("storage: failed to scan row")
)

// OverlapError reports which exclusion scopes rejected a write. A store that
// can only name the first violated constraint reports a single reason.
type OverlapError struct {
	Reasons []domain.ConflictReason
}

func (e *OverlapError) Error() string {
	parts := make([]string, len(e.Reasons))
	for i, r := range e.Reasons {
		parts[i] = string(r)
	}
	return ErrOverlap.Error() + ": " + strings.Join(parts, ", ")
}

func (e *OverlapError) Unwrap() error {
	return ErrOverlap
}
