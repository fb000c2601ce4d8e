package create_appointment

import (
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	createBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
)

// CustomerRequest контактные данные клиента
type CustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	LocationID int64           `json:"locationId"`
	ServiceID  int64           `json:"serviceId"`
	StartAt    string          `json:"startAt"` // "2025-10-15T10:00:00+03:00"
	EmployeeID *int64          `json:"employeeId,omitempty"`
	ResourceID *int64          `json:"resourceId,omitempty"`
	Customer   CustomerRequest `json:"customer"`
	Notes      *string         `json:"notes,omitempty"`
	Hold       bool            `json:"hold,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest() *createBooking.Request {
	return &createBooking.Request{
		LocationID: r.LocationID,
		ServiceID:  r.ServiceID,
		StartAt:    r.StartAt,
		EmployeeID: r.EmployeeID,
		ResourceID: r.ResourceID,
		Customer: domain.CustomerInfo{
			Name:  r.Customer.Name,
			Email: r.Customer.Email,
			Phone: r.Customer.Phone,
		},
		Notes: r.Notes,
		Hold:  r.Hold,
	}
}
