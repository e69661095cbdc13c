package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"weekly-route-service/internal/ports"
)

// releaseScript deletes the lock key only when this instance still owns it,
// so a lock that expired and was re-acquired elsewhere is never released by
// the old holder.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`

// RedisRunLock implements the RunLock port with a Redis SET NX lease. The
// TTL bounds how long a crashed run can block the next one.
type RedisRunLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration

	token string
}

var _ ports.RunLock = (*RedisRunLock)(nil)

func NewRedisRunLock(client *redis.Client, key string, ttl time.Duration) *RedisRunLock {
	if key == "" {
		key = "weekly-route-service:batch-run"
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisRunLock{client: client, key: key, ttl: ttl}
}

func (l *RedisRunLock) TryAcquire(ctx context.Context) (bool, error) {
	if l.client == nil {
		return false, errors.New("run lock: redis client is nil")
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("run lock: setnx %q: %w", l.key, err)
	}
	if !ok {
		return false, nil
	}

	l.token = token
	return true, nil
}

func (l *RedisRunLock) Release(ctx context.Context) error {
	if l.client == nil {
		return errors.New("run lock: redis client is nil")
	}
	if l.token == "" {
		return nil
	}

	token := l.token
	l.token = ""

	if err := l.client.Eval(ctx, releaseScript, []string{l.key}, token).Err(); err != nil {
		return fmt.Errorf("run lock: release %q: %w", l.key, err)
	}
	return nil
}
