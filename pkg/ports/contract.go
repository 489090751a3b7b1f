package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/domain"
)

// RunSceneStoreContract runs a suite of tests verifying that a SceneStore
// implementation adheres to the interface contract. Adapter test files call
// it against their own construction.
func RunSceneStoreContract(t *testing.T, store SceneStore) {
	ctx := context.Background()
	sceneID := "contract-scene-" + time.Now().Format("20060102150405")

	sample := func() *domain.SceneDocument {
		return &domain.SceneDocument{
			Nodes: []domain.NodeRecord{
				{ID: "node-a", Model: "source", Position: domain.Point{X: 10, Y: 20}},
				{ID: "node-b", Model: "sink", Position: domain.Point{X: 240, Y: 20}},
			},
			Connections: []domain.ConnectionRecord{
				{ID: "conn-1", OutNode: "node-a", OutPort: 0, InNode: "node-b", InPort: 0},
			},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		doc := sample()
		require.NoError(t, store.Save(ctx, sceneID, doc), "Save should not return error")

		loaded, err := store.Load(ctx, sceneID)
		require.NoError(t, err, "Load should not return error")
		require.Len(t, loaded.Nodes, 2)
		assert.Equal(t, doc.Nodes[0].ID, loaded.Nodes[0].ID)
		assert.Equal(t, doc.Nodes[0].Position, loaded.Nodes[0].Position)
		require.Len(t, loaded.Connections, 1)
		assert.Equal(t, doc.Connections[0].OutNode, loaded.Connections[0].OutNode)
	})

	t.Run("Load returns isolated copies", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sceneID, sample()))

		first, err := store.Load(ctx, sceneID)
		require.NoError(t, err)
		first.Nodes[0].Model = "tampered"

		second, err := store.Load(ctx, sceneID)
		require.NoError(t, err)
		assert.Equal(t, "source", second.Nodes[0].Model, "mutating a loaded document must not affect the store")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+sceneID)
		assert.ErrorIs(t, err, domain.ErrSceneNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sceneID, sample()))
		require.NoError(t, store.Delete(ctx, sceneID), "Delete should not return error")

		_, err := store.Load(ctx, sceneID)
		assert.ErrorIs(t, err, domain.ErrSceneNotFound, "Load after Delete should return ErrSceneNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sceneID + "-1"
		id2 := sceneID + "-2"
		require.NoError(t, store.Save(ctx, id1, sample()))
		require.NoError(t, store.Save(ctx, id2, sample()))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
