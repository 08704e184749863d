package sign_contract

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

	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/service/hiring"
	"github.com/m04kA/SMC-RentalService/internal/service/hiring/models"
	"github.com/m04kA/SMC-RentalService/pkg/logger"
)

type fakeService struct {
	gotID    int64
	gotActor domain.Actor
	gotReq   *models.SignContractRequest
	gotIP    string
	err      error
}

func (f *fakeService) SignContract(_ context.Context, id int64, actor domain.Actor, req *models.SignContractRequest, ipAddress string) (*models.ApplicationResponse, error) {
	f.gotID, f.gotActor, f.gotReq, f.gotIP = id, actor, req, ipAddress
	if f.err != nil {
		return nil, f.err
	}
	return &models.ApplicationResponse{
		ID:       id,
		DriverID: actor.ID,
		Status:   string(domain.ApplicationInterviewCompleted),
		Contract: &domain.Contract{Status: domain.ContractPendingOwner},
		Messages: []domain.Message{},
	}, nil
}

func newRequest(body string, actor domain.Actor) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/applications/12/contract/sign", strings.NewReader(body))
	r = mux.SetURLVars(r, map[string]string{"applicationId": "12"})
	return r.WithContext(middleware.WithActor(r.Context(), actor))
}

func TestHandle_Signed(t *testing.T) {
	service := &fakeService{}
	h := NewHandler(service, logger.NewNop())

	r := newRequest(`{"signatureUrl":"https://files.example.com/sig/12.png"}`, domain.Actor{ID: 5, Role: domain.RoleDriver})
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	rec := httptest.NewRecorder()
	h.Handle(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(12), service.gotID)
	assert.Equal(t, int64(5), service.gotActor.ID)
	assert.Equal(t, "https://files.example.com/sig/12.png", service.gotReq.SignatureURL)
	assert.Equal(t, "203.0.113.7", service.gotIP)

	var body models.ApplicationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.NotNil(t, body.Contract)
	assert.Equal(t, domain.ContractPendingOwner, body.Contract.Status)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{name: "signature url is not a url", body: `{"signatureUrl":"sig"}`, wantStatus: http.StatusBadRequest},
		{name: "application not found", body: `{"signatureUrl":"https://x.io/s"}`, serviceErr: hiring.ErrApplicationNotFound, wantStatus: http.StatusNotFound},
		{name: "out of order", body: `{"signatureUrl":"https://x.io/s"}`, serviceErr: fmt.Errorf("%w: contract is pending_driver", domain.ErrNotPendingSignature), wantStatus: http.StatusConflict},
		{name: "not a party", body: `{"signatureUrl":"https://x.io/s"}`, serviceErr: hiring.ErrAccessDenied, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeService{err: tt.serviceErr}, logger.NewNop())

			rec := httptest.NewRecorder()
			h.Handle(rec, newRequest(tt.body, domain.Actor{ID: 9, Role: domain.RoleOwner}))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.RemoteAddr = "198.51.100.4:53211"
	assert.Equal(t, "198.51.100.4", clientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "203.0.113.7", clientIP(r))
}
