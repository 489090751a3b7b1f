package ports

import (
	"context"

	"github.com/aretw0/espalier/pkg/domain"
)

// SceneStore persists scene documents under caller-chosen IDs.
//
// Load returns domain.ErrSceneNotFound (possibly wrapped) for unknown IDs.
// Implementations must be safe for concurrent use and must not retain or
// hand out documents the caller can mutate afterwards.
type SceneStore interface {
	Save(ctx context.Context, sceneID string, doc *domain.SceneDocument) error
	Load(ctx context.Context, sceneID string) (*domain.SceneDocument, error)
	Delete(ctx context.Context, sceneID string) error
	List(ctx context.Context) ([]string, error)
}
