package reschedule_appointment

import (
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
	rescheduleBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/reschedule_booking"
)

// RescheduleAppointmentRequest HTTP request model
// Если сотрудник или ресурс не переданы, сохраняется прежнее назначение
type RescheduleAppointmentRequest struct {
	StartAt    string `json:"startAt"`
	EmployeeID *int64 `json:"employeeId,omitempty"`
	ResourceID *int64 `json:"resourceId,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleAppointmentRequest) ToUseCaseRequest(appointmentID int64) *rescheduleBooking.Request {
	return &rescheduleBooking.Request{
		AppointmentID: appointmentID,
		StartAt:       r.StartAt,
		EmployeeID:    r.EmployeeID,
		ResourceID:    r.ResourceID,
	}
}

// RescheduleAppointmentResponse отмененная исходная запись и новая запись
type RescheduleAppointmentResponse struct {
	Original    *models.AppointmentResponse `json:"original"`
	Appointment *models.AppointmentResponse `json:"appointment"`
}

func fromUseCaseResponse(resp *rescheduleBooking.Response) *RescheduleAppointmentResponse {
	return &RescheduleAppointmentResponse{
		Original:    models.FromDomainAppointment(resp.Original),
		Appointment: models.FromDomainAppointment(resp.Appointment),
	}
}
