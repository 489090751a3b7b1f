package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/adapters/redis"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

func testClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")
	t.Cleanup(mr.Close)

	return mr, backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
}

func sampleDoc() *domain.SceneDocument {
	return &domain.SceneDocument{
		Nodes: []domain.NodeRecord{
			{ID: "n1", Model: "source", Position: domain.Point{X: 1, Y: 2}},
		},
	}
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := testClient(t)
	store := redis.NewFromClient(client)
	ports.RunSceneStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := testClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	sceneID := "scene-ttl"

	require.NoError(t, store.Save(ctx, sceneID, sampleDoc()))

	scenes, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, scenes, sceneID)

	// Fast forward miniredis so the key itself expires
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, sceneID)
	assert.ErrorIs(t, err, domain.ErrSceneNotFound)

	// Lazy index pruning compares against time.Now, so real time must pass
	// the score too.
	time.Sleep(1200 * time.Millisecond)

	scenes, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, scenes)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := testClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "my-scene", sampleDoc()))

	assert.True(t, mr.Exists("custom:app:my-scene"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, list, "my-scene")
}
