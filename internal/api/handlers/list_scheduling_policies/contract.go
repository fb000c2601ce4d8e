package list_scheduling_policies

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/service/policy/models"
)

type PolicyService interface {
	List(ctx context.Context, locationID int64) (*models.PolicyListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
