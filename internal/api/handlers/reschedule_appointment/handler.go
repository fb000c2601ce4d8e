package reschedule_appointment

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling"
	rescheduleBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/reschedule_booking"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidStartTime     = "некорректное время начала, ожидается RFC3339"
	msgInvalidInput         = "некорректные данные переноса"
	msgTooSoon              = "слишком поздно для записи на это время"
	msgTooFarAhead          = "время записи слишком далеко в будущем"
	msgOutsideHours         = "время записи вне рабочих часов"
	msgAppointmentNotFound  = "запись не найдена"
	msgCatalogNotFound      = "сотрудник, ресурс или услуга не найдены"
	msgCannotReschedule     = "запись в текущем статусе нельзя перенести"
	msgSlotNotAvailable     = "выбранное время занято"
)

type Handler struct {
	useCase RescheduleBookingUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments/{appointmentId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := handlers.ParseID(vars["appointmentId"])
	if err != nil {
		h.logger.Warn("POST /appointments/{id}/reschedule - Invalid appointment ID: %s", vars["appointmentId"])
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req RescheduleAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments/%d/reschedule - Invalid request body: %v", appointmentID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(appointmentID))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			h.logger.Warn("POST /appointments/%d/reschedule - Slot not available: start_at=%s, error=%v",
				appointmentID, req.StartAt, err)
			handlers.RespondConflict(w, msgSlotNotAvailable, err)

		case errors.Is(err, domain.ErrInvalidTransition):
			h.logger.Warn("POST /appointments/%d/reschedule - Cannot reschedule: %v", appointmentID, err)
			handlers.RespondError(w, http.StatusConflict, msgCannotReschedule)

		case errors.Is(err, rescheduleBooking.ErrInvalidStartTime):
			h.logger.Warn("POST /appointments/%d/reschedule - Invalid start time: %s", appointmentID, req.StartAt)
			handlers.RespondBadRequest(w, msgInvalidStartTime)

		case errors.Is(err, scheduling.ErrTooSoon):
			handlers.RespondBadRequest(w, msgTooSoon)

		case errors.Is(err, scheduling.ErrTooFarAhead):
			handlers.RespondBadRequest(w, msgTooFarAhead)

		case errors.Is(err, scheduling.ErrOutsideBusinessHours):
			handlers.RespondBadRequest(w, msgOutsideHours)

		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("POST /appointments/%d/reschedule - Validation failed: %v", appointmentID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, rescheduleBooking.ErrAppointmentNotFound):
			h.logger.Warn("POST /appointments/%d/reschedule - Appointment not found", appointmentID)
			handlers.RespondNotFound(w, msgAppointmentNotFound)

		case errors.Is(err, domain.ErrNotFound):
			h.logger.Warn("POST /appointments/%d/reschedule - Catalog lookup failed: %v", appointmentID, err)
			handlers.RespondNotFound(w, msgCatalogNotFound)

		case errors.Is(err, domain.ErrStore):
			h.logger.Error("POST /appointments/%d/reschedule - Store unavailable: %v", appointmentID, err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("POST /appointments/%d/reschedule - Failed to reschedule: %v", appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments/%d/reschedule - Appointment moved to id=%d", appointmentID, result.Appointment.ID)
	handlers.RespondJSON(w, http.StatusCreated, fromUseCaseResponse(result))
}
