package get_scheduling_policy

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/policy/models"
)

const (
	msgInvalidLocationID = "некорректный ID локации"
	msgInvalidServiceID  = "некорректный ID услуги"
	msgInvalidInput      = "некорректные параметры запроса"
	msgNotFound          = "локация или услуга не найдены"
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

// Handle GET /api/v1/locations/{locationId}/scheduling-policy
// Query params: serviceId (опционально, иначе политика всей локации)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	locationID, err := handlers.ParseID(vars["locationId"])
	if err != nil {
		h.logger.Warn("GET /locations/{id}/scheduling-policy - Invalid location ID: %s", vars["locationId"])
		handlers.RespondBadRequest(w, msgInvalidLocationID)
		return
	}

	serviceID, err := handlers.ParseOptionalID(r.URL.Query().Get("serviceId"))
	if err != nil {
		h.logger.Warn("GET /locations/%d/scheduling-policy - Invalid service ID: %v", locationID, err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	result, err := h.service.Get(r.Context(), &models.GetPolicyRequest{LocationID: locationID, ServiceID: serviceID})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			handlers.RespondBadRequest(w, msgInvalidInput)
		case errors.Is(err, domain.ErrNotFound):
			h.logger.Warn("GET /locations/%d/scheduling-policy - Not found: service_id=%v", locationID, serviceID)
			handlers.RespondNotFound(w, msgNotFound)
		case errors.Is(err, domain.ErrStore):
			h.logger.Error("GET /locations/%d/scheduling-policy - Store unavailable: %v", locationID, err)
			handlers.RespondServiceUnavailable(w)
		default:
			h.logger.Error("GET /locations/%d/scheduling-policy - Failed to get policy: %v", locationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /locations/%d/scheduling-policy - Policy retrieved (source: %s)", locationID, result.Source)
	handlers.RespondJSON(w, http.StatusOK, result)
}
