package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

const msgInternalError = "внутренняя ошибка сервера"

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Code    int         `json:"code"`
	Kind    domain.Kind `json:"kind"`
	Message string      `json:"message"`
}

// RespondJSON отправляет JSON ответ с указанным статусом
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondError отправляет ошибку, вид определяется по HTTP статусу
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{
		Code:    status,
		Kind:    kindForStatus(status),
		Message: message,
	})
}

// RespondBadRequest 400
func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

// RespondUnauthorized 401
func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

// RespondForbidden 403
func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

// RespondNotFound 404
func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

// RespondInternalError 500 без подробностей
func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}

// RespondDomainError отправляет ошибку слоя сервиса/use case, статус выбирается по ее виду
// Текст внутренних ошибок клиенту не отдается
func RespondDomainError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	status := StatusForKind(kind)

	message := err.Error()
	if kind == domain.KindInternal {
		message = msgInternalError
	}

	RespondJSON(w, status, ErrorResponse{
		Code:    status,
		Kind:    kind,
		Message: message,
	})
}

// StatusForKind HTTP статус для вида ошибки
func StatusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindConfiguration:
		return http.StatusUnprocessableEntity
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnauthorized:
		return http.StatusForbidden
	case domain.KindConflict, domain.KindInvalidStateTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func kindForStatus(status int) domain.Kind {
	switch status {
	case http.StatusBadRequest:
		return domain.KindValidation
	case http.StatusUnprocessableEntity:
		return domain.KindConfiguration
	case http.StatusNotFound:
		return domain.KindNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.KindUnauthorized
	case http.StatusConflict:
		return domain.KindConflict
	default:
		return domain.KindInternal
	}
}
