package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

// maxBodyBytes ограничение размера тела запроса
const maxBodyBytes = 1 << 20

var (
	// ErrEmptyBody тело запроса отсутствует
	ErrEmptyBody = fmt.Errorf("request body is empty: %w", domain.ErrValidation)

	// ErrInvalidBody тело запроса не разбирается как JSON
	ErrInvalidBody = fmt.Errorf("invalid request body: %w", domain.ErrValidation)

	// ErrInvalidPathParam параметр пути не является положительным числом
	ErrInvalidPathParam = fmt.Errorf("invalid path parameter: %w", domain.ErrValidation)

	// ErrInvalidQueryParam некорректный параметр строки запроса
	ErrInvalidQueryParam = fmt.Errorf("invalid query parameter: %w", domain.ErrValidation)
)

var validate = validator.New()

// DecodeJSON разбирает тело запроса в dst, неизвестные поля отклоняются
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrEmptyBody
	}

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}

// DecodeAndValidate разбирает тело запроса и проверяет validate-теги
func DecodeAndValidate(r *http.Request, dst interface{}) error {
	if err := DecodeJSON(r, dst); err != nil {
		return err
	}
	return Validate(dst)
}

// Validate проверяет validate-теги структуры
func Validate(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			first := fieldErrors[0]
			return fmt.Errorf("%w: field %s failed on %q", domain.ErrValidation, first.Field(), first.Tag())
		}
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// PathID читает положительный int64 параметр пути
func PathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidPathParam, name, raw)
	}
	return id, nil
}

// QueryTime читает необязательный параметр времени в формате RFC3339
func QueryTime(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be RFC3339", ErrInvalidQueryParam, name)
	}
	return &t, nil
}

// QueryString читает необязательный строковый параметр
func QueryString(r *http.Request, name string) *string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	return &raw
}
