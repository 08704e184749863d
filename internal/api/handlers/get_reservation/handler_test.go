package get_reservation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/service/reservations"
	"github.com/m04kA/SMC-RentalService/internal/service/reservations/models"
	"github.com/m04kA/SMC-RentalService/pkg/logger"
)

type fakeService struct {
	called bool
	err    error
}

func (f *fakeService) GetByID(_ context.Context, id int64, actor domain.Actor) (*models.ReservationResponse, error) {
	f.called = true
	if f.err != nil {
		return nil, f.err
	}
	return &models.ReservationResponse{ID: id, CustomerID: actor.ID}, nil
}

func TestHandle(t *testing.T) {
	actor := domain.Actor{ID: 42, Role: domain.RoleCustomer}

	tests := []struct {
		name       string
		id         string
		withActor  bool
		serviceErr error
		wantStatus int
		wantCalled bool
	}{
		{name: "ok", id: "7", withActor: true, wantStatus: http.StatusOK, wantCalled: true},
		{name: "invalid id", id: "zero", withActor: true, wantStatus: http.StatusBadRequest},
		{name: "missing actor", id: "7", wantStatus: http.StatusUnauthorized},
		{name: "not found", id: "7", withActor: true, serviceErr: reservations.ErrReservationNotFound, wantStatus: http.StatusNotFound, wantCalled: true},
		{name: "not a party", id: "7", withActor: true, serviceErr: reservations.ErrAccessDenied, wantStatus: http.StatusForbidden, wantCalled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &fakeService{err: tt.serviceErr}
			h := NewHandler(service, logger.NewNop())

			r := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/"+tt.id, nil)
			r = mux.SetURLVars(r, map[string]string{"reservationId": tt.id})
			if tt.withActor {
				r = r.WithContext(middleware.WithActor(r.Context(), actor))
			}

			rec := httptest.NewRecorder()
			h.Handle(rec, r)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, service.called)
		})
	}
}
