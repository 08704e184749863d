package review

import "errors"

var (
	// ErrDuplicateReview возвращается при повторном отзыве автора на тот же объект
	ErrDuplicateReview = errors.New("review.repository: author already reviewed this target")

	// ErrTargetNotFound возвращается, когда оцениваемый объект не найден
	ErrTargetNotFound = errors.New("review.repository: review target not found")

	// ErrUnknownTarget возвращается для неизвестного вида объекта
	ErrUnknownTarget = errors.New("review.repository: unknown review target kind")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("review.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("review.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("review.repository: failed to scan row")
)
