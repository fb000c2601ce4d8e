package update_scheduling_policy

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/service/policy/models"
)

type PolicyService interface {
	Upsert(ctx context.Context, req *models.UpdatePolicyRequest) (*models.PolicyResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
