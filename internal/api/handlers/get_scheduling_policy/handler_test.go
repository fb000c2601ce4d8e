package get_scheduling_policy

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

	"github.com/m04kA/SMC-SchedulingService/internal/service/catalog"
	"github.com/m04kA/SMC-SchedulingService/internal/service/policy"
	"github.com/m04kA/SMC-SchedulingService/internal/service/policy/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

type stubService struct {
	got *models.GetPolicyRequest
	err error
}

func (s *stubService) Get(_ context.Context, req *models.GetPolicyRequest) (*models.PolicyResponse, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.PolicyResponse{
		LocationID:         req.LocationID,
		ServiceID:          req.ServiceID,
		GranularityMinutes: 15,
		Source:             models.SourceDefault,
	}, nil
}

func serve(h *Handler, target string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/locations/{locationId}/scheduling-policy", h.Handle).Methods(http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandler_Handle_Success(t *testing.T) {
	svc := &stubService{}
	rec := serve(NewHandler(svc, logger.Nop()), "/api/v1/locations/1/scheduling-policy?serviceId=10")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), svc.got.LocationID)
	assert.Equal(t, int64(10), *svc.got.ServiceID)

	var resp models.PolicyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.SourceDefault, resp.Source)
	assert.Nil(t, resp.ID)
	assert.Equal(t, 15, resp.GranularityMinutes)
}

func TestHandler_Handle_LocationScope(t *testing.T) {
	svc := &stubService{}
	rec := serve(NewHandler(svc, logger.Nop()), "/api/v1/locations/1/scheduling-policy")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.got.ServiceID)
}

func TestHandler_Handle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		want   int
	}{
		{name: "bad location", target: "/api/v1/locations/abc/scheduling-policy", want: http.StatusBadRequest},
		{name: "bad service", target: "/api/v1/locations/1/scheduling-policy?serviceId=0", want: http.StatusBadRequest},
		{name: "invalid input", target: "/api/v1/locations/1/scheduling-policy", err: policy.ErrInvalidInput, want: http.StatusBadRequest},
		{name: "location not found", target: "/api/v1/locations/1/scheduling-policy", err: catalog.ErrLocationNotFound, want: http.StatusNotFound},
		{name: "service not found", target: "/api/v1/locations/1/scheduling-policy?serviceId=10", err: catalog.ErrServiceNotFound, want: http.StatusNotFound},
		{name: "store", target: "/api/v1/locations/1/scheduling-policy", err: policy.ErrInternal, want: http.StatusServiceUnavailable},
		{name: "unexpected", target: "/api/v1/locations/1/scheduling-policy", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(NewHandler(&stubService{err: tt.err}, logger.Nop()), tt.target)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
