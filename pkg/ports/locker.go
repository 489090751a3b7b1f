package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a held scene lock.
type UnlockFunc func(ctx context.Context) error

// SceneLocker provides distributed edit locks over shared scene storage, so
// two server replicas cannot clobber the same saved scene. Lock blocks until
// the lock is acquired or ctx is done; the returned UnlockFunc MUST be called
// to release it.
type SceneLocker interface {
	Lock(ctx context.Context, sceneID string, ttl time.Duration) (UnlockFunc, error)
}
