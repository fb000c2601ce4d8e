package get_appointment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

type stubService struct {
	err error
}

func (s *stubService) GetByID(_ context.Context, id int64) (*models.AppointmentResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.AppointmentResponse{ID: id, Status: "booked", Customer: models.CustomerResponse{Name: "Anna"}}, nil
}

func serve(h *Handler, target string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/appointments/{appointmentId}", h.Handle).Methods(http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandler_Handle_Success(t *testing.T) {
	rec := serve(NewHandler(&stubService{}, logger.Nop()), "/api/v1/appointments/12")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.AppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(12), resp.ID)
	assert.Equal(t, "Anna", resp.Customer.Name)
}

func TestHandler_Handle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		want   int
	}{
		{name: "bad id", target: "/api/v1/appointments/abc", want: http.StatusBadRequest},
		{name: "not found", target: "/api/v1/appointments/12", err: appointments.ErrAppointmentNotFound, want: http.StatusNotFound},
		{name: "store", target: "/api/v1/appointments/12", err: appointments.ErrInternal, want: http.StatusServiceUnavailable},
		{name: "unexpected", target: "/api/v1/appointments/12", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(NewHandler(&stubService{err: tt.err}, logger.Nop()), tt.target)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
