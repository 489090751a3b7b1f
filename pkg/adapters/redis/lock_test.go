package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/adapters/redis"
)

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := testClient(t)
	locker := redis.NewLocker(client, "test:scene:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "scene-1", 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock)

	assert.True(t, mr.Exists("test:scene:lock:scene-1"), "Lock key should be set in Redis")

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:scene:lock:scene-1"), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	mr, client := testClient(t)
	locker1 := redis.NewLocker(client, "test:scene:")
	locker2 := redis.NewLocker(client, "test:scene:") // Same prefix -> contention
	ctx := context.Background()
	key := "shared-scene"

	unlock1, err := locker1.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)

	// Holder blocks the second client until its context gives up
	ctxTimeout, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = locker2.Lock(ctxTimeout, key, 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.WithinDuration(t, start.Add(500*time.Millisecond), time.Now(), 150*time.Millisecond, "Should block until timeout")

	require.NoError(t, unlock1(ctx))

	unlock2, err := locker2.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	defer func() { _ = unlock2(ctx) }()

	assert.True(t, mr.Exists("test:scene:lock:shared-scene"))
}
