package middleware_test

import (
	"context"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware. Unlike the
// memory adapter it stores documents as handed in, so tests can inspect
// exactly what a middleware passed down.
type MockStore struct {
	data map[string]*domain.SceneDocument
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*domain.SceneDocument),
	}
}

func (s *MockStore) Save(ctx context.Context, sceneID string, doc *domain.SceneDocument) error {
	s.data[sceneID] = doc
	return nil
}

func (s *MockStore) Load(ctx context.Context, sceneID string) (*domain.SceneDocument, error) {
	doc, ok := s.data[sceneID]
	if !ok {
		return nil, domain.ErrSceneNotFound
	}
	return doc, nil
}

func (s *MockStore) Delete(ctx context.Context, sceneID string) error {
	delete(s.data, sceneID)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

var _ ports.SceneStore = (*MockStore)(nil)
