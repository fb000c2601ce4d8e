package transition_appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

type stubService struct {
	gotID  int64
	gotReq *models.TransitionRequest
	err    error
}

func (s *stubService) Transition(_ context.Context, id int64, req *models.TransitionRequest) (*models.TransitionResponse, error) {
	s.gotID, s.gotReq = id, req
	if s.err != nil {
		return nil, s.err
	}
	return &models.TransitionResponse{
		Appointment: models.AppointmentResponse{ID: id, Status: req.Status},
		Changed:     true,
	}, nil
}

func serve(h *Handler, target, body string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/appointments/{appointmentId}/status", h.Handle).Methods(http.MethodPatch)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, target, strings.NewReader(body)))
	return rec
}

func TestHandler_Handle_Success(t *testing.T) {
	svc := &stubService{}
	rec := serve(NewHandler(svc, logger.Nop()), "/api/v1/appointments/5/status", `{"status":"completed"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), svc.gotID)
	assert.Equal(t, "completed", svc.gotReq.Status)

	var resp models.TransitionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Changed)
	assert.Equal(t, "completed", resp.Appointment.Status)
}

func TestHandler_Handle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		err    error
		want   int
	}{
		{name: "bad id", target: "/api/v1/appointments/abc/status", body: `{"status":"booked"}`, want: http.StatusBadRequest},
		{name: "unknown field", target: "/api/v1/appointments/5/status", body: `{"state":"booked"}`, want: http.StatusBadRequest},
		{name: "unknown status", target: "/api/v1/appointments/5/status", body: `{"status":"gone"}`,
			err: fmt.Errorf("%w: %q", domain.ErrInvalidStatus, "gone"), want: http.StatusBadRequest},
		{name: "not found", target: "/api/v1/appointments/5/status", body: `{"status":"booked"}`,
			err: appointments.ErrAppointmentNotFound, want: http.StatusNotFound},
		{name: "invalid transition", target: "/api/v1/appointments/5/status", body: `{"status":"booked"}`,
			err: &domain.TransitionError{From: domain.StatusCompleted, To: domain.StatusBooked}, want: http.StatusConflict},
		{name: "store", target: "/api/v1/appointments/5/status", body: `{"status":"booked"}`,
			err: appointments.ErrInternal, want: http.StatusServiceUnavailable},
		{name: "unexpected", target: "/api/v1/appointments/5/status", body: `{"status":"booked"}`,
			err: fmt.Errorf("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(NewHandler(&stubService{err: tt.err}, logger.Nop()), tt.target, tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
