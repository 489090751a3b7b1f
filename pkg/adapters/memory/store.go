package memory

import (
	"context"
	"sync"

	"github.com/aretw0/espalier/pkg/domain"
)

// Store implements ports.SceneStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.SceneDocument
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.SceneDocument),
	}
}

// Save persists the scene document in memory.
func (s *Store) Save(ctx context.Context, sceneID string, doc *domain.SceneDocument) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := doc.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sceneID] = copied
	return nil
}

// Load retrieves the scene document from memory.
func (s *Store) Load(ctx context.Context, sceneID string) (*domain.SceneDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[sceneID]
	if !ok {
		return nil, domain.ErrSceneNotFound
	}

	// Copy on read so the caller can't mutate store state through the pointer
	return doc.Clone(), nil
}

// Delete removes the scene document.
func (s *Store) Delete(ctx context.Context, sceneID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sceneID)
	return nil
}

// List returns stored scene IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scenes := make([]string, 0, len(s.data))
	for id := range s.data {
		scenes = append(scenes, id)
	}
	return scenes, nil
}
