package negotiation

import "errors"

var (
	// ErrNegotiationNotFound возвращается, когда переговоры не найдены
	ErrNegotiationNotFound = errors.New("negotiation.repository: negotiation not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("negotiation.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("negotiation.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("negotiation.repository: failed to scan row")

	// ErrEncodeJSON возвращается при ошибке сериализации встречных предложений
	ErrEncodeJSON = errors.New("negotiation.repository: failed to encode counter offers")
)
