package create_reservation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/infra/lock"
	"github.com/m04kA/SMC-RentalService/internal/service/reservations/models"
	createReservation "github.com/m04kA/SMC-RentalService/internal/usecase/create_reservation"
	"github.com/m04kA/SMC-RentalService/pkg/logger"
)

type fakeUseCase struct {
	got *createReservation.Request
	err error
}

func (f *fakeUseCase) Execute(_ context.Context, req *createReservation.Request) (*domain.Reservation, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Reservation{
		ID:          101,
		Kind:        req.Kind,
		ResourceID:  req.ResourceID,
		CustomerID:  req.Actor.ID,
		OwnerID:     9,
		StartAt:     req.Window.Start,
		EndAt:       req.Window.End,
		RateType:    req.RateType,
		TotalAmount: 3000,
		Status:      domain.StatusPending,
	}, nil
}

const validBody = `{
	"resourceId": 3,
	"kind": "rental",
	"startAt": "2025-03-01T10:00:00Z",
	"endAt": "2025-03-01T13:00:00Z",
	"rateType": "hourly",
	"additionalServices": [{"name": "child seat", "price": 300}]
}`

func newRequest(body string, actor *domain.Actor) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
	if actor != nil {
		r = r.WithContext(middleware.WithActor(r.Context(), *actor))
	}
	return r
}

func TestHandle_Created(t *testing.T) {
	useCase := &fakeUseCase{}
	h := NewHandler(useCase, logger.NewNop())

	rec := httptest.NewRecorder()
	h.Handle(rec, newRequest(validBody, &domain.Actor{ID: 42, Role: domain.RoleCustomer}))

	require.Equal(t, http.StatusCreated, rec.Code)

	require.NotNil(t, useCase.got)
	assert.Equal(t, domain.Actor{ID: 42, Role: domain.RoleCustomer}, useCase.got.Actor)
	assert.Equal(t, int64(3), useCase.got.ResourceID)
	assert.Equal(t, domain.KindRental, useCase.got.Kind)
	assert.Equal(t, domain.RateHourly, useCase.got.RateType)
	assert.Equal(t, 3*time.Hour, useCase.got.Window.Duration())
	require.Len(t, useCase.got.AdditionalServices, 1)
	assert.Equal(t, "child seat", useCase.got.AdditionalServices[0].Name)

	var body models.ReservationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, int64(101), body.ID)
	assert.Equal(t, int64(42), body.CustomerID)
	assert.Equal(t, string(domain.StatusPending), body.Status)
}

func TestHandle_Errors(t *testing.T) {
	customer := &domain.Actor{ID: 42, Role: domain.RoleCustomer}

	tests := []struct {
		name       string
		body       string
		actor      *domain.Actor
		useCaseErr error
		wantStatus int
		wantKind   domain.Kind
	}{
		{
			name:       "missing actor",
			body:       validBody,
			wantStatus: http.StatusUnauthorized,
			wantKind:   domain.KindUnauthorized,
		},
		{
			name:       "malformed body",
			body:       `{"resourceId":`,
			actor:      customer,
			wantStatus: http.StatusBadRequest,
			wantKind:   domain.KindValidation,
		},
		{
			name:       "unknown kind",
			body:       `{"resourceId":3,"kind":"lease","startAt":"2025-03-01T10:00:00Z","endAt":"2025-03-01T13:00:00Z"}`,
			actor:      customer,
			wantStatus: http.StatusBadRequest,
			wantKind:   domain.KindValidation,
		},
		{
			name:       "window already booked",
			body:       validBody,
			actor:      customer,
			useCaseErr: fmt.Errorf("%w: overlaps reservation 7", createReservation.ErrReservationConflict),
			wantStatus: http.StatusConflict,
			wantKind:   domain.KindConflict,
		},
		{
			name:       "resource locked",
			body:       validBody,
			actor:      customer,
			useCaseErr: fmt.Errorf("%w: key=resource:3", lock.ErrResourceBusy),
			wantStatus: http.StatusConflict,
			wantKind:   domain.KindConflict,
		},
		{
			name:       "negotiation used",
			body:       validBody,
			actor:      customer,
			useCaseErr: createReservation.ErrNegotiationUsed,
			wantStatus: http.StatusConflict,
			wantKind:   domain.KindConflict,
		},
		{
			name:       "resource not found",
			body:       validBody,
			actor:      customer,
			useCaseErr: createReservation.ErrResourceNotFound,
			wantStatus: http.StatusNotFound,
			wantKind:   domain.KindNotFound,
		},
		{
			name:       "owner books own car",
			body:       validBody,
			actor:      customer,
			useCaseErr: createReservation.ErrForbidden,
			wantStatus: http.StatusForbidden,
			wantKind:   domain.KindUnauthorized,
		},
		{
			name:       "internal",
			body:       validBody,
			actor:      customer,
			useCaseErr: fmt.Errorf("%w: db is down", createReservation.ErrInternal),
			wantStatus: http.StatusInternalServerError,
			wantKind:   domain.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useCase := &fakeUseCase{err: tt.useCaseErr}
			h := NewHandler(useCase, logger.NewNop())

			rec := httptest.NewRecorder()
			h.Handle(rec, newRequest(tt.body, tt.actor))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body handlers.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantKind, body.Kind)
			assert.False(t, errors.Is(tt.useCaseErr, createReservation.ErrInternal) && strings.Contains(body.Message, "db is down"))
		})
	}
}
