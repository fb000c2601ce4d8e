package cancel_appointment

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidReason        = "слишком длинная причина отмены"
	msgAppointmentNotFound  = "запись не найдена"
	msgCannotCancel         = "запись в текущем статусе нельзя отменить"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/appointments/{appointmentId}/cancel
// Тело запроса опционально: {"reason": "..."}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := handlers.ParseID(vars["appointmentId"])
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/cancel - Invalid appointment ID: %s", vars["appointmentId"])
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req models.CancelRequest
	if r.ContentLength != 0 {
		if err := handlers.DecodeJSON(r, &req); err != nil {
			h.logger.Warn("PATCH /appointments/%d/cancel - Invalid request body: %v", appointmentID, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
			return
		}
	}

	result, err := h.service.Cancel(r.Context(), appointmentID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			handlers.RespondBadRequest(w, msgInvalidReason)
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/%d/cancel - Appointment not found", appointmentID)
			handlers.RespondNotFound(w, msgAppointmentNotFound)
		case errors.Is(err, domain.ErrInvalidTransition):
			h.logger.Warn("PATCH /appointments/%d/cancel - Cannot cancel: %v", appointmentID, err)
			handlers.RespondError(w, http.StatusConflict, msgCannotCancel)
		case errors.Is(err, domain.ErrStore):
			h.logger.Error("PATCH /appointments/%d/cancel - Store unavailable: %v", appointmentID, err)
			handlers.RespondServiceUnavailable(w)
		default:
			h.logger.Error("PATCH /appointments/%d/cancel - Failed to cancel appointment: %v", appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/%d/cancel - Appointment cancelled, changed=%t", appointmentID, result.Changed)
	handlers.RespondJSON(w, http.StatusOK, result)
}
