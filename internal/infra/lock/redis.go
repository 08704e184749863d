package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const retryInterval = 50 * time.Millisecond

// releaseScript удаляет ключ, только если он все еще принадлежит нашему токену:
// блокировка, истекшая по TTL и перехваченная другим процессом, не снимается
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker распределенная блокировка на SET NX PX
// Работает между несколькими экземплярами сервиса
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	logger Logger
}

// NewRedisLocker создает блокировку поверх клиента Redis
// ttl ограничивает время жизни ключа, если процесс упадет, не освободив его
func NewRedisLocker(client *redis.Client, ttl, wait time.Duration, logger Logger) *RedisLocker {
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		wait:   wait,
		logger: logger,
	}
}

// Acquire реализует Locker
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("lock: redis SETNX %s: %w", key, err)
		}
		if ok {
			return l.releaseFunc(key, token), nil
		}

		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("%w: key=%s", ErrResourceBusy, key)
		}

		timer := time.NewTimer(retryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *RedisLocker) releaseFunc(key, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			// Освобождаем даже если запрос уже отменен
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
				l.logger.Error("lock: failed to release key=%s: %v", key, err)
			}
		})
	}
}
