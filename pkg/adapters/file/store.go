package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/espalier/pkg/domain"
)

// Store implements ports.SceneStore on the local filesystem, one JSON file
// per scene in a configured directory.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".espalier/scenes".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".espalier", "scenes")
	}
	return &Store{BasePath: basePath}
}

// Save persists the scene document to a JSON file atomically: write to a
// temp file in the same directory, fsync, close, then rename over the
// destination. A crash mid-save leaves the previous file intact, never a
// partial one.
func (s *Store) Save(ctx context.Context, sceneID string, doc *domain.SceneDocument) error {
	if sceneID == "" {
		return fmt.Errorf("sceneID cannot be empty")
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure scene directory: %w", err)
	}

	destPath := filepath.Join(s.BasePath, sceneID+".json")

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scene: %w", err)
	}

	// Same directory as the destination so the rename stays on one
	// filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+sceneID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // Remove if still present (not renamed)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// os.Rename onto an existing file fails on Windows, so clear the
	// destination first. The remove+rename window is small; a partial file
	// is the failure mode this store exists to prevent.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing scene file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}
	return nil
}

// Load retrieves the scene document from its JSON file.
func (s *Store) Load(ctx context.Context, sceneID string) (*domain.SceneDocument, error) {
	if sceneID == "" {
		return nil, fmt.Errorf("sceneID cannot be empty")
	}

	data, err := os.ReadFile(filepath.Join(s.BasePath, sceneID+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSceneNotFound
		}
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	var doc domain.SceneDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scene: %w", err)
	}
	return &doc, nil
}

// Delete removes the scene file. Deleting a missing scene is not an error.
func (s *Store) Delete(ctx context.Context, sceneID string) error {
	if sceneID == "" {
		return fmt.Errorf("sceneID cannot be empty")
	}

	err := os.Remove(filepath.Join(s.BasePath, sceneID+".json"))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete scene file: %w", err)
	}
	return nil
}

// List returns the IDs of every stored scene.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list scenes: %w", err)
	}

	var scenes []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			name := entry.Name()
			scenes = append(scenes, name[:len(name)-len(".json")])
		}
	}
	return scenes, nil
}
