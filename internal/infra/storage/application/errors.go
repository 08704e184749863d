package application

import "errors"

var (
	// ErrApplicationNotFound возвращается, когда отклик не найден
	ErrApplicationNotFound = errors.New("application.repository: application not found")

	// ErrJobNotFound возвращается, когда вакансия не найдена
	ErrJobNotFound = errors.New("application.repository: job not found")

	// ErrDuplicateApplication возвращается при повторном отклике водителя на ту же вакансию
	ErrDuplicateApplication = errors.New("application.repository: driver already applied to this job")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("application.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("application.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("application.repository: failed to scan row")

	// ErrEncodeJSON возвращается при ошибке сериализации JSONB полей
	ErrEncodeJSON = errors.New("application.repository: failed to encode json column")
)
