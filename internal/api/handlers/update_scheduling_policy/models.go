package update_scheduling_policy

import (
	"github.com/m04kA/SMC-SchedulingService/internal/service/policy/models"
)

// UpdateSchedulingPolicyRequest HTTP request model
type UpdateSchedulingPolicyRequest struct {
	ServiceID          *int64 `json:"serviceId,omitempty"`
	GranularityMinutes *int   `json:"granularityMinutes,omitempty"`
	MinLeadMinutes     *int   `json:"minLeadMinutes,omitempty"`
	AdvanceBookingDays *int   `json:"advanceBookingDays,omitempty"`
	MaxSuggestions     *int   `json:"maxSuggestions,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *UpdateSchedulingPolicyRequest) ToServiceRequest(locationID int64) *models.UpdatePolicyRequest {
	return &models.UpdatePolicyRequest{
		LocationID:         locationID,
		ServiceID:          r.ServiceID,
		GranularityMinutes: r.GranularityMinutes,
		MinLeadMinutes:     r.MinLeadMinutes,
		AdvanceBookingDays: r.AdvanceBookingDays,
		MaxSuggestions:     r.MaxSuggestions,
	}
}
