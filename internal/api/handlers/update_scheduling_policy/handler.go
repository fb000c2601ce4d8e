package update_scheduling_policy

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

const (
	msgInvalidLocationID  = "некорректный ID локации"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidData        = "некорректные данные политики"
	msgNotFound           = "локация или услуга не найдены"
)

type Handler struct {
	service PolicyService
	logger  Logger
}

func NewHandler(service PolicyService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/locations/{locationId}/scheduling-policy
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	locationID, err := handlers.ParseID(vars["locationId"])
	if err != nil {
		h.logger.Warn("PUT /locations/{id}/scheduling-policy - Invalid location ID: %s", vars["locationId"])
		handlers.RespondBadRequest(w, msgInvalidLocationID)
		return
	}

	var req UpdateSchedulingPolicyRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /locations/%d/scheduling-policy - Invalid request body: %v", locationID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Upsert(r.Context(), req.ToServiceRequest(locationID))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("PUT /locations/%d/scheduling-policy - Invalid data: %v", locationID, err)
			handlers.RespondBadRequest(w, msgInvalidData)
		case errors.Is(err, domain.ErrNotFound):
			h.logger.Warn("PUT /locations/%d/scheduling-policy - Not found: service_id=%v", locationID, req.ServiceID)
			handlers.RespondNotFound(w, msgNotFound)
		case errors.Is(err, domain.ErrStore):
			h.logger.Error("PUT /locations/%d/scheduling-policy - Store unavailable: %v", locationID, err)
			handlers.RespondServiceUnavailable(w)
		default:
			h.logger.Error("PUT /locations/%d/scheduling-policy - Failed to update policy: %v", locationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /locations/%d/scheduling-policy - Policy saved: policy_id=%v, source=%s",
		locationID, *result.ID, result.Source)
	handlers.RespondJSON(w, http.StatusOK, result)
}
