package lock

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// LocalLocker блокировка внутри одного процесса
// Используется, когда Redis не настроен, и в тестах
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*localLock
	wait  time.Duration
}

type localLock struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker создает блокировку внутри процесса. wait <= 0 - ждать до отмены контекста
func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{
		locks: make(map[string]*localLock),
		wait:  wait,
	}
}

// Acquire реализует Locker
func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lk := l.ref(key)

	waitCtx := ctx
	if l.wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	select {
	case lk.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-lk.ch
				l.unref(key, lk)
			})
		}, nil
	case <-waitCtx.Done():
		l.unref(key, lk)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: key=%s", ErrResourceBusy, key)
	}
}

func (l *LocalLocker) ref(key string) *localLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	lk, ok := l.locks[key]
	if !ok {
		lk = &localLock{ch: make(chan struct{}, 1)}
		l.locks[key] = lk
	}
	lk.refs++
	return lk
}

// unref удаляет запись, когда ключ никому не нужен
func (l *LocalLocker) unref(key string, lk *localLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, key)
	}
}
