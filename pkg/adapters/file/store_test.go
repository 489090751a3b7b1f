package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/adapters/file"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

var _ ports.SceneStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunSceneStoreContract(t, store)
}

func TestFileStoreOnDisk(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	doc := &domain.SceneDocument{
		Nodes: []domain.NodeRecord{{ID: "n1", Model: "source"}},
	}
	require.NoError(t, store.Save(ctx, "scene-1", doc))

	_, err := os.Stat(filepath.Join(dir, "scene-1.json"))
	require.NoError(t, err, "scene lands as <id>.json")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")

	require.NoError(t, store.Save(ctx, "scene-1", doc), "overwrite succeeds")

	t.Run("Empty ID Rejected", func(t *testing.T) {
		assert.Error(t, store.Save(ctx, "", doc))
		_, err := store.Load(ctx, "")
		assert.Error(t, err)
		assert.Error(t, store.Delete(ctx, ""))
	})

	t.Run("Corrupt File", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{nope"), 0644))
		_, err := store.Load(ctx, "bad")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrSceneNotFound)
	})

	t.Run("List Ignores Non JSON", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.NotContains(t, ids, "notes")
		assert.Contains(t, ids, "scene-1")
	})

	t.Run("Missing Directory Lists Empty", func(t *testing.T) {
		empty := file.New(filepath.Join(dir, "never-created"))
		ids, err := empty.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}

func TestFileStoreDefaultPath(t *testing.T) {
	store := file.New("")
	assert.Equal(t, filepath.Join(".espalier", "scenes"), store.BasePath)
}
