package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/catalog"
	getAvailableSlots "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
)

const (
	msgInvalidLocationID     = "некорректный ID локации"
	msgInvalidServiceID      = "некорректный ID услуги"
	msgMissingServiceID      = "ID услуги обязателен"
	msgMissingDate           = "дата обязательна"
	msgInvalidDate           = "некорректный период, ожидается YYYY-MM-DD, не более 31 дня"
	msgInvalidEmployeeID     = "некорректный ID сотрудника"
	msgInvalidResourceID     = "некорректный ID ресурса"
	msgInvalidMaxSuggestions = "некорректное значение maxSuggestions"
	msgInvalidInput          = "некорректные параметры запроса"
	msgForeignEntity         = "услуга, сотрудник или ресурс принадлежат другой локации"
	msgLocationNotFound      = "локация не найдена"
	msgServiceNotFound       = "услуга не найдена"
	msgEmployeeNotFound      = "сотрудник не найден"
	msgResourceNotFound      = "ресурс не найден"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/locations/{locationId}/available-slots
// Query params: serviceId (required), date (required, YYYY-MM-DD), dateTo, employeeId, resourceId, maxSuggestions
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	query := r.URL.Query()

	locationID, err := handlers.ParseID(vars["locationId"])
	if err != nil {
		h.logger.Warn("GET /locations/{id}/available-slots - Invalid location ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidLocationID)
		return
	}

	// Извлекаем serviceId из query параметров
	serviceIDStr := query.Get("serviceId")
	if serviceIDStr == "" {
		h.logger.Warn("GET /locations/%d/available-slots - Missing service ID", locationID)
		handlers.RespondBadRequest(w, msgMissingServiceID)
		return
	}
	serviceID, err := handlers.ParseID(serviceIDStr)
	if err != nil {
		h.logger.Warn("GET /locations/%d/available-slots - Invalid service ID: %v", locationID, err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	date := query.Get("date")
	if date == "" {
		h.logger.Warn("GET /locations/%d/available-slots - Missing date", locationID)
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	req := &getAvailableSlots.Request{
		LocationID: locationID,
		ServiceID:  serviceID,
		Date:       date,
	}
	if dateTo := query.Get("dateTo"); dateTo != "" {
		req.DateTo = &dateTo
	}

	if req.EmployeeID, err = handlers.ParseOptionalID(query.Get("employeeId")); err != nil {
		handlers.RespondBadRequest(w, msgInvalidEmployeeID)
		return
	}
	if req.ResourceID, err = handlers.ParseOptionalID(query.Get("resourceId")); err != nil {
		handlers.RespondBadRequest(w, msgInvalidResourceID)
		return
	}
	if raw := query.Get("maxSuggestions"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidMaxSuggestions)
			return
		}
		req.MaxSuggestions = &n
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidDate):
			h.logger.Warn("GET /locations/%d/available-slots - Invalid date: %v", locationID, err)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, catalog.ErrForeignEntity):
			handlers.RespondBadRequest(w, msgForeignEntity)

		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("GET /locations/%d/available-slots - Validation failed: %v", locationID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, catalog.ErrLocationNotFound):
			h.logger.Warn("GET /locations/%d/available-slots - Location not found", locationID)
			handlers.RespondNotFound(w, msgLocationNotFound)

		case errors.Is(err, catalog.ErrServiceNotFound):
			h.logger.Warn("GET /locations/%d/available-slots - Service not found: service_id=%d", locationID, serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, catalog.ErrEmployeeNotFound):
			handlers.RespondNotFound(w, msgEmployeeNotFound)

		case errors.Is(err, catalog.ErrResourceNotFound):
			handlers.RespondNotFound(w, msgResourceNotFound)

		case errors.Is(err, domain.ErrStore):
			h.logger.Error("GET /locations/%d/available-slots - Store unavailable: %v", locationID, err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("GET /locations/%d/available-slots - Failed to get available slots: %v", locationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /locations/%d/available-slots - Found %d slots for service_id=%d, period=%s..%s",
		locationID, len(result.Slots), serviceID, result.DateFrom, result.DateTo)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
