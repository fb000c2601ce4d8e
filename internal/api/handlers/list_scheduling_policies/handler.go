package list_scheduling_policies

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

const (
	msgInvalidLocationID = "некорректный ID локации"
	msgLocationNotFound  = "локация не найдена"
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

// Handle GET /api/v1/locations/{locationId}/scheduling-policies
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	locationID, err := handlers.ParseID(vars["locationId"])
	if err != nil {
		h.logger.Warn("GET /locations/{id}/scheduling-policies - Invalid location ID: %s", vars["locationId"])
		handlers.RespondBadRequest(w, msgInvalidLocationID)
		return
	}

	result, err := h.service.List(r.Context(), locationID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			handlers.RespondNotFound(w, msgLocationNotFound)
		case errors.Is(err, domain.ErrStore):
			h.logger.Error("GET /locations/%d/scheduling-policies - Store unavailable: %v", locationID, err)
			handlers.RespondServiceUnavailable(w)
		default:
			h.logger.Error("GET /locations/%d/scheduling-policies - Failed to list policies: %v", locationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /locations/%d/scheduling-policies - Found %d policies", locationID, len(result.Policies))
	handlers.RespondJSON(w, http.StatusOK, result)
}
