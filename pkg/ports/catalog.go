package ports

import (
	"context"

	"github.com/aretw0/espalier/pkg/domain"
)

// CatalogSource supplies declarative model specs, typically read from a
// directory of catalog documents. Get returns domain.ErrModelNotFound
// (possibly wrapped) for unknown names.
type CatalogSource interface {
	List(ctx context.Context) ([]domain.ModelSpec, error)
	Get(ctx context.Context, name string) (domain.ModelSpec, error)
}

// WatchableCatalog is implemented by catalog sources that can report edits
// to their backing documents, enabling live registry reloads.
type WatchableCatalog interface {
	CatalogSource

	// Watch emits the name of each changed spec until ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}
