package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/espalier/pkg/ports"
)

var (
	// ErrLockAcquire is returned when the lock cannot be acquired.
	ErrLockAcquire = errors.New("failed to acquire distributed lock")
)

// Locker implements ports.SceneLocker using Redis, serializing scene edits
// across processes.
type Locker struct {
	client *backend.Client
	prefix string
}

// NewLocker creates a new Redis locker.
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{
		client: client,
		prefix: prefix,
	}
}

// Lock acquires a distributed lock for the given scene using SET NX PX,
// polling until the context expires. The returned UnlockFunc releases with
// a value-checked Lua delete so a stale holder cannot free a newer lock.
func (l *Locker) Lock(ctx context.Context, sceneID string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + sceneID
	val := fmt.Sprintf("%d", time.Now().UnixNano())

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		success, err := l.client.SetNX(ctx, lockKey, val, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLockAcquire, err)
		}
		if success {
			return func(ctx context.Context) error {
				script := `
					if redis.call("get", KEYS[1]) == ARGV[1] then
						return redis.call("del", KEYS[1])
					else
						return 0
					end
				`
				return l.client.Eval(ctx, script, []string{lockKey}, val).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
