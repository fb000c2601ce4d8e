package list_scheduling_policies

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
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

type stubService struct {
	gotID int64
	err   error
}

func (s *stubService) List(_ context.Context, locationID int64) (*models.PolicyListResponse, error) {
	s.gotID = locationID
	if s.err != nil {
		return nil, s.err
	}
	return &models.PolicyListResponse{Policies: []models.PolicyResponse{
		{ID: ptr.Ptr[int64](1), LocationID: locationID, Source: models.SourceLocation},
		{ID: ptr.Ptr[int64](2), LocationID: locationID, ServiceID: ptr.Ptr[int64](10), Source: models.SourceService},
	}}, nil
}

func serve(h *Handler, target string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/locations/{locationId}/scheduling-policies", h.Handle).Methods(http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandler_Handle_Success(t *testing.T) {
	svc := &stubService{}
	rec := serve(NewHandler(svc, logger.Nop()), "/api/v1/locations/3/scheduling-policies")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), svc.gotID)

	var resp models.PolicyListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Policies, 2)
	assert.Equal(t, models.SourceService, resp.Policies[1].Source)
}

func TestHandler_Handle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		want   int
	}{
		{name: "bad location", target: "/api/v1/locations/-1/scheduling-policies", want: http.StatusBadRequest},
		{name: "location not found", target: "/api/v1/locations/3/scheduling-policies", err: catalog.ErrLocationNotFound, want: http.StatusNotFound},
		{name: "store", target: "/api/v1/locations/3/scheduling-policies", err: policy.ErrInternal, want: http.StatusServiceUnavailable},
		{name: "unexpected", target: "/api/v1/locations/3/scheduling-policies", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(NewHandler(&stubService{err: tt.err}, logger.Nop()), tt.target)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
