package transition_appointment

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
	msgInvalidStatus        = "некорректный статус записи"
	msgAppointmentNotFound  = "запись не найдена"
	msgInvalidTransition    = "недопустимая смена статуса"
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

// Handle PATCH /api/v1/appointments/{appointmentId}/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := handlers.ParseID(vars["appointmentId"])
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/status - Invalid appointment ID: %s", vars["appointmentId"])
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req models.TransitionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /appointments/%d/status - Invalid request body: %v", appointmentID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Transition(r.Context(), appointmentID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("PATCH /appointments/%d/status - Invalid status: %q", appointmentID, req.Status)
			handlers.RespondBadRequest(w, msgInvalidStatus)
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/%d/status - Appointment not found", appointmentID)
			handlers.RespondNotFound(w, msgAppointmentNotFound)
		case errors.Is(err, domain.ErrInvalidTransition):
			h.logger.Warn("PATCH /appointments/%d/status - Invalid transition: %v", appointmentID, err)
			handlers.RespondError(w, http.StatusConflict, msgInvalidTransition)
		case errors.Is(err, domain.ErrStore):
			h.logger.Error("PATCH /appointments/%d/status - Store unavailable: %v", appointmentID, err)
			handlers.RespondServiceUnavailable(w)
		default:
			h.logger.Error("PATCH /appointments/%d/status - Failed to change status: %v", appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/%d/status - Status is %s, changed=%t",
		appointmentID, result.Appointment.Status, result.Changed)
	handlers.RespondJSON(w, http.StatusOK, result)
}
