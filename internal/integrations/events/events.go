// Package events publishes appointment lifecycle events after a change has
// been committed.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

var (
	// ErrPublish возвращается, когда событие не удалось отправить
	ErrPublish = errors.New("events: failed to publish event")

	// ErrEncode возвращается, когда событие не удалось сериализовать
	ErrEncode = errors.New("events: failed to encode event")
)

// Type names an appointment event.
type Type string

const (
	TypeBooked        Type = "appointment.booked"
	TypeCancelled     Type = "appointment.cancelled"
	TypeRescheduled   Type = "appointment.rescheduled"
	TypeStatusChanged Type = "appointment.status_changed"
)

// Event is the payload written to the broker.
type Event struct {
	ID                string    `json:"id"`
	Type              Type      `json:"type"`
	OccurredAt        time.Time `json:"occurredAt"`
	AppointmentID     int64     `json:"appointmentId"`
	LocationID        int64     `json:"locationId"`
	ServiceID         int64     `json:"serviceId"`
	EmployeeID        *int64    `json:"employeeId,omitempty"`
	ResourceID        *int64    `json:"resourceId,omitempty"`
	Status            string    `json:"status"`
	PreviousStatus    string    `json:"previousStatus,omitempty"`
	StartAt           time.Time `json:"startAt"`
	EndAt             time.Time `json:"endAt"`
	RescheduledFromID *int64    `json:"rescheduledFromId,omitempty"`
}

// NewEvent builds an event describing the current state of a.
func NewEvent(t Type, a *domain.Appointment, occurredAt time.Time) Event {
	return Event{
		ID:                uuid.NewString(),
		Type:              t,
		OccurredAt:        occurredAt.UTC(),
		AppointmentID:     a.ID,
		LocationID:        a.LocationID,
		ServiceID:         a.ServiceID,
		EmployeeID:        a.EmployeeID,
		ResourceID:        a.ResourceID,
		Status:            a.Status.String(),
		StartAt:           a.StartAt.UTC(),
		EndAt:             a.EndAt.UTC(),
		RescheduledFromID: a.RescheduledFromID,
	}
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
