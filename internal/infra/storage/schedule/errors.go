package schedule

import "errors"

var (
	// ErrScheduleNotFound возвращается, когда расписание не найдено ни на одном уровне
	ErrScheduleNotFound = errors.New("schedule.repository: schedule not found")

	// ErrDuplicateSchedule возвращается при попытке создать второе расписание на тот же уровень
	ErrDuplicateSchedule = errors.New("schedule.repository: duplicate schedule for owner and resource")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("schedule.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("schedule.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("schedule.repository: failed to scan row")
)
