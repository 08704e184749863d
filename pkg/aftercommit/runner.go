package aftercommit

import (
	"context"
	"fmt"
)

// Hook побочный эффект, выполняемый после фиксации основной записи
// (уведомление, синхронизация статуса ресурса и т.п.)
type Hook struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Recorder принимает результат каждого побочного эффекта (метрики)
type Recorder interface {
	ObserveSideEffect(effect string, ok bool)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Runner выполняет хуки независимо друг от друга
// Ошибка хука логируется и учитывается в метриках, но вызывающему не возвращается
type Runner struct {
	logger   Logger
	recorder Recorder
}

// NewRunner создает Runner. recorder может быть nil
func NewRunner(logger Logger, recorder Recorder) *Runner {
	return &Runner{
		logger:   logger,
		recorder: recorder,
	}
}

// Run выполняет хуки по порядку и возвращает количество упавших
func (r *Runner) Run(ctx context.Context, hooks ...Hook) int {
	// Отмена запроса не должна обрывать побочные эффекты уже зафиксированной записи
	ctx = context.WithoutCancel(ctx)

	failed := 0
	for _, hook := range hooks {
		if hook.Fn == nil {
			continue
		}

		err := r.runHook(ctx, hook)
		if r.recorder != nil {
			r.recorder.ObserveSideEffect(hook.Name, err == nil)
		}
		if err != nil {
			failed++
			r.logger.Error("aftercommit: effect=%s failed: %v", hook.Name, err)
		}
	}

	return failed
}

func (r *Runner) runHook(ctx context.Context, hook Hook) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return hook.Fn(ctx)
}
