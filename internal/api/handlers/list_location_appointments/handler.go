package list_location_appointments

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
)

const (
	msgInvalidLocationID   = "некорректный ID локации"
	msgMissingPeriod       = "параметры from и to обязательны"
	msgInvalidPeriod       = "некорректный период, ожидается RFC3339"
	msgInvalidTimeRange    = "from должен быть раньше to, период не более 31 дня"
	msgInvalidEmployeeID   = "некорректный ID сотрудника"
	msgInvalidResourceID   = "некорректный ID ресурса"
	msgInvalidStatus       = "некорректный статус записи"
	msgInvalidOccupyFlag   = "некорректное значение occupyingOnly"
	msgInvalidListingInput = "некорректные параметры запроса"
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

// Handle GET /api/v1/locations/{locationId}/appointments
// Query params: from, to (required, RFC3339), employeeId, resourceId, status, occupyingOnly
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	query := r.URL.Query()

	locationID, err := handlers.ParseID(vars["locationId"])
	if err != nil {
		h.logger.Warn("GET /locations/{id}/appointments - Invalid location ID: %s", vars["locationId"])
		handlers.RespondBadRequest(w, msgInvalidLocationID)
		return
	}

	fromStr, toStr := query.Get("from"), query.Get("to")
	if fromStr == "" || toStr == "" {
		h.logger.Warn("GET /locations/%d/appointments - Missing period", locationID)
		handlers.RespondBadRequest(w, msgMissingPeriod)
		return
	}
	from, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidPeriod)
		return
	}
	to, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidPeriod)
		return
	}

	req := &models.ListAppointmentsRequest{
		LocationID: locationID,
		From:       from,
		To:         to,
	}
	if req.EmployeeID, err = handlers.ParseOptionalID(query.Get("employeeId")); err != nil {
		handlers.RespondBadRequest(w, msgInvalidEmployeeID)
		return
	}
	if req.ResourceID, err = handlers.ParseOptionalID(query.Get("resourceId")); err != nil {
		handlers.RespondBadRequest(w, msgInvalidResourceID)
		return
	}
	if status := query.Get("status"); status != "" {
		req.Status = &status
	}
	if raw := query.Get("occupyingOnly"); raw != "" {
		if req.OccupyingOnly, err = strconv.ParseBool(raw); err != nil {
			handlers.RespondBadRequest(w, msgInvalidOccupyFlag)
			return
		}
	}

	result, err := h.service.List(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrInvalidTimeRange):
			h.logger.Warn("GET /locations/%d/appointments - Invalid time range: %v", locationID, err)
			handlers.RespondBadRequest(w, msgInvalidTimeRange)
		case errors.Is(err, domain.ErrInvalidStatus):
			h.logger.Warn("GET /locations/%d/appointments - Invalid status: %v", locationID, err)
			handlers.RespondBadRequest(w, msgInvalidStatus)
		case errors.Is(err, domain.ErrValidation):
			handlers.RespondBadRequest(w, msgInvalidListingInput)
		case errors.Is(err, domain.ErrStore):
			h.logger.Error("GET /locations/%d/appointments - Store unavailable: %v", locationID, err)
			handlers.RespondServiceUnavailable(w)
		default:
			h.logger.Error("GET /locations/%d/appointments - Failed to list appointments: %v", locationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /locations/%d/appointments - Found %d appointments", locationID, len(result.Appointments))
	handlers.RespondJSON(w, http.StatusOK, result)
}
