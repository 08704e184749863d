package reservation

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("reservation.repository: reservation not found")

	// ErrReservationOverlap возвращается, когда БД отклонила пересекающееся активное бронирование
	ErrReservationOverlap = errors.New("reservation.repository: reservation overlaps an active one")

	// ErrDuplicateNegotiation возвращается при повторном использовании принятых переговоров
	ErrDuplicateNegotiation = errors.New("reservation.repository: negotiation already used by another reservation")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("reservation.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("reservation.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("reservation.repository: failed to scan row")

	// ErrEncodeJSON возвращается при ошибке сериализации JSONB полей
	ErrEncodeJSON = errors.New("reservation.repository: failed to encode json column")
)
