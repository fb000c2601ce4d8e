package create_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
	"github.com/m04kA/SMC-SchedulingService/internal/service/catalog"
	createBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidStartTime   = "некорректное время начала, ожидается RFC3339"
	msgInvalidInput       = "некорректные данные записи"
	msgTooSoon            = "слишком поздно для записи на это время"
	msgTooFarAhead        = "время записи слишком далеко в будущем"
	msgOutsideHours       = "время записи вне рабочих часов"
	msgForeignEntity      = "услуга, сотрудник или ресурс принадлежат другой локации"
	msgLocationNotFound   = "локация не найдена"
	msgServiceNotFound    = "услуга не найдена"
	msgEmployeeNotFound   = "сотрудник не найден"
	msgResourceNotFound   = "ресурс не найден"
	msgSlotNotAvailable   = "выбранное время занято"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest())
	if err != nil {
		// Обработка ошибок use case
		switch {
		case errors.Is(err, domain.ErrConflict):
			h.logger.Warn("POST /appointments - Slot not available: location_id=%d, start_at=%s, error=%v",
				req.LocationID, req.StartAt, err)
			handlers.RespondConflict(w, msgSlotNotAvailable, err)

		case errors.Is(err, createBooking.ErrInvalidStartTime):
			h.logger.Warn("POST /appointments - Invalid start time: %s", req.StartAt)
			handlers.RespondBadRequest(w, msgInvalidStartTime)

		case errors.Is(err, scheduling.ErrTooSoon):
			h.logger.Warn("POST /appointments - Too soon: location_id=%d, start_at=%s", req.LocationID, req.StartAt)
			handlers.RespondBadRequest(w, msgTooSoon)

		case errors.Is(err, scheduling.ErrTooFarAhead):
			h.logger.Warn("POST /appointments - Too far ahead: location_id=%d, start_at=%s", req.LocationID, req.StartAt)
			handlers.RespondBadRequest(w, msgTooFarAhead)

		case errors.Is(err, scheduling.ErrOutsideBusinessHours):
			h.logger.Warn("POST /appointments - Outside business hours: location_id=%d, start_at=%s", req.LocationID, req.StartAt)
			handlers.RespondBadRequest(w, msgOutsideHours)

		case errors.Is(err, catalog.ErrForeignEntity):
			h.logger.Warn("POST /appointments - Foreign entity: location_id=%d, error=%v", req.LocationID, err)
			handlers.RespondBadRequest(w, msgForeignEntity)

		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("POST /appointments - Validation failed: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, catalog.ErrLocationNotFound):
			h.logger.Warn("POST /appointments - Location not found: location_id=%d", req.LocationID)
			handlers.RespondNotFound(w, msgLocationNotFound)

		case errors.Is(err, catalog.ErrServiceNotFound):
			h.logger.Warn("POST /appointments - Service not found: service_id=%d", req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, catalog.ErrEmployeeNotFound):
			h.logger.Warn("POST /appointments - Employee not found: employee_id=%v", req.EmployeeID)
			handlers.RespondNotFound(w, msgEmployeeNotFound)

		case errors.Is(err, catalog.ErrResourceNotFound):
			h.logger.Warn("POST /appointments - Resource not found: resource_id=%v", req.ResourceID)
			handlers.RespondNotFound(w, msgResourceNotFound)

		case errors.Is(err, domain.ErrStore):
			h.logger.Error("POST /appointments - Store unavailable: location_id=%d, error=%v", req.LocationID, err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: location_id=%d, error=%v",
				req.LocationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments - Appointment created successfully: appointment_id=%d, location_id=%d",
		result.Appointment.ID, req.LocationID)
	handlers.RespondJSON(w, http.StatusCreated, models.FromDomainAppointment(result.Appointment))
}
