package get_available_slots

import (
	"time"

	getAvailableSlots "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
)

// SlotResponse доступный слот
type SlotResponse struct {
	StartAt time.Time `json:"startAt"`
	EndAt   time.Time `json:"endAt"`
}

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	LocationID int64          `json:"locationId"`
	ServiceID  int64          `json:"serviceId"`
	DateFrom   string         `json:"dateFrom"`
	DateTo     string         `json:"dateTo"`
	Timezone   string         `json:"timezone"`
	Slots      []SlotResponse `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, SlotResponse{StartAt: s.StartAt, EndAt: s.EndAt})
	}

	return &AvailableSlotsResponse{
		LocationID: resp.LocationID,
		ServiceID:  resp.ServiceID,
		DateFrom:   resp.DateFrom,
		DateTo:     resp.DateTo,
		Timezone:   resp.Timezone,
		Slots:      slots,
	}
}
