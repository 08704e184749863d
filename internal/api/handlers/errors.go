package handlers

import (
	"net/http"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RespondServiceError логирует ошибку сервиса и отправляет ответ
// Клиентские ошибки пишутся в WARN, внутренние в ERROR
func RespondServiceError(w http.ResponseWriter, log Logger, route string, err error) {
	if domain.KindOf(err) == domain.KindInternal {
		log.Error("%s - Internal error: %v", route, err)
	} else {
		log.Warn("%s - Request rejected: %v", route, err)
	}
	RespondDomainError(w, err)
}
