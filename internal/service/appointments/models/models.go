package models

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Request модели

// ListAppointmentsRequest запрос на получение записей локации за период
type ListAppointmentsRequest struct {
	LocationID    int64     `json:"locationId"`
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	EmployeeID    *int64    `json:"employeeId,omitempty"`
	ResourceID    *int64    `json:"resourceId,omitempty"`
	Status        *string   `json:"status,omitempty"`
	OccupyingOnly bool      `json:"occupyingOnly,omitempty"` // Только занимающие время статусы
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListAppointmentsRequest) ToDomainFilter() (domain.AppointmentFilter, error) {
	from, to := r.From, r.To
	filter := domain.AppointmentFilter{
		LocationID:    r.LocationID,
		From:          &from,
		To:            &to,
		EmployeeID:    r.EmployeeID,
		ResourceID:    r.ResourceID,
		OccupyingOnly: r.OccupyingOnly && r.Status == nil,
	}

	if r.Status != nil {
		status, err := domain.ParseStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// TransitionRequest запрос на смену статуса записи
type TransitionRequest struct {
	Status string `json:"status"`
}

// CancelRequest запрос на отмену записи
type CancelRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// Response модели

// CustomerResponse контактные данные клиента
type CustomerResponse struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID                 int64            `json:"id"`
	LocationID         int64            `json:"locationId"`
	ServiceID          int64            `json:"serviceId"`
	EmployeeID         *int64           `json:"employeeId,omitempty"`
	ResourceID         *int64           `json:"resourceId,omitempty"`
	StartAt            time.Time        `json:"startAt"`
	EndAt              time.Time        `json:"endAt"`
	Status             string           `json:"status"`
	Customer           CustomerResponse `json:"customer"`
	Notes              *string          `json:"notes,omitempty"`
	RescheduledFromID  *int64           `json:"rescheduledFromId,omitempty"`
	CancellationReason *string          `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time       `json:"cancelledAt,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// TransitionResponse ответ на смену статуса
// Changed = false, если запись уже была в целевом статусе (повторная отмена)
type TransitionResponse struct {
	Appointment AppointmentResponse `json:"appointment"`
	Changed     bool                `json:"changed"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	return &AppointmentResponse{
		ID:         a.ID,
		LocationID: a.LocationID,
		ServiceID:  a.ServiceID,
		EmployeeID: a.EmployeeID,
		ResourceID: a.ResourceID,
		StartAt:    a.StartAt,
		EndAt:      a.EndAt,
		Status:     a.Status.String(),
		Customer: CustomerResponse{
			Name:  a.Customer.Name,
			Email: a.Customer.Email,
			Phone: a.Customer.Phone,
		},
		Notes:              a.Notes,
		RescheduledFromID:  a.RescheduledFromID,
		CancellationReason: a.CancellationReason,
		CancelledAt:        a.CancelledAt,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(list []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{Appointments: make([]AppointmentResponse, 0, len(list))}
	for _, a := range list {
		resp.Appointments = append(resp.Appointments, *FromDomainAppointment(a))
	}
	return resp
}
