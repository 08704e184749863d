package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

func TestRespondDomainError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantKind    domain.Kind
		wantMessage string
	}{
		{
			name:       "validation",
			err:        fmt.Errorf("bad window: %w", domain.ErrValidation),
			wantStatus: http.StatusBadRequest,
			wantKind:   domain.KindValidation,
		},
		{
			name:       "not found",
			err:        fmt.Errorf("reservation 5: %w", domain.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantKind:   domain.KindNotFound,
		},
		{
			name:       "unauthorized",
			err:        fmt.Errorf("not a party: %w", domain.ErrUnauthorized),
			wantStatus: http.StatusForbidden,
			wantKind:   domain.KindUnauthorized,
		},
		{
			name:       "conflict",
			err:        fmt.Errorf("overlap: %w", domain.ErrConflict),
			wantStatus: http.StatusConflict,
			wantKind:   domain.KindConflict,
		},
		{
			name:       "invalid state transition",
			err:        fmt.Errorf("completed -> active: %w", domain.ErrInvalidStateTransition),
			wantStatus: http.StatusConflict,
			wantKind:   domain.KindInvalidStateTransition,
		},
		{
			name:       "configuration",
			err:        fmt.Errorf("no rate: %w", domain.ErrConfiguration),
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   domain.KindConfiguration,
		},
		{
			name:        "internal message is hidden",
			err:         errors.New("pq: connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantKind:    domain.KindInternal,
			wantMessage: msgInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondDomainError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantStatus, body.Code)
			assert.Equal(t, tt.wantKind, body.Kind)

			wantMessage := tt.wantMessage
			if wantMessage == "" {
				wantMessage = tt.err.Error()
			}
			assert.Equal(t, wantMessage, body.Message)
		})
	}
}

func TestRespondError_KindFromStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondUnauthorized(rec, "нет пользователя")

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, domain.KindUnauthorized, body.Kind)
	assert.Equal(t, "нет пользователя", body.Message)
}

type sampleRequest struct {
	Name   string `json:"name" validate:"required"`
	Rating int    `json:"rating" validate:"min=1,max=5"`
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "valid", body: `{"name":"a","rating":3}`},
		{name: "empty body", body: "", wantErr: ErrEmptyBody},
		{name: "malformed json", body: `{"name":`, wantErr: ErrInvalidBody},
		{name: "unknown field", body: `{"name":"a","rating":3,"extra":1}`, wantErr: ErrInvalidBody},
		{name: "missing required", body: `{"rating":3}`, wantErr: domain.ErrValidation},
		{name: "out of range", body: `{"name":"a","rating":6}`, wantErr: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r *http.Request
			if tt.body == "" {
				r = httptest.NewRequest(http.MethodPost, "/", nil)
			} else {
				r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			}

			var dst sampleRequest
			err := DecodeAndValidate(r, &dst)

			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, sampleRequest{Name: "a", Rating: 3}, dst)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: "15", want: 15},
		{raw: "0", wantErr: true},
		{raw: "-1", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r = mux.SetURLVars(r, map[string]string{"reservationId": tt.raw})

			id, err := PathID(r, "reservationId")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPathParam)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestQueryTime(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?from=2025-03-01T10:00:00Z&to=tomorrow", nil)

	from, err := QueryTime(r, "from")
	require.NoError(t, err)
	require.NotNil(t, from)
	assert.Equal(t, 10, from.Hour())

	_, err = QueryTime(r, "to")
	assert.ErrorIs(t, err, ErrInvalidQueryParam)

	missing, err := QueryTime(r, "status")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
