package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/aretw0/loam"

	"github.com/aretw0/espalier/internal/catalog"
	"github.com/aretw0/espalier/pkg/domain"
)

// Catalog adapts the Loam library to the CatalogSource interface: a
// directory of markdown/JSON/YAML documents whose frontmatter declares node
// model specs. The document body is free-form documentation and is ignored.
type Catalog struct {
	Repo *loam.TypedRepository[SpecMetadata]
}

// New creates a catalog over an existing typed repository.
func New(repo *loam.TypedRepository[SpecMetadata]) *Catalog {
	return &Catalog{
		Repo: repo,
	}
}

// Open initializes a Loam repository over dir and returns a catalog on it.
// Strict mode keeps numeric frontmatter types consistent across adapters and
// ReadOnly avoids Loam's sandbox behavior; the editor never writes specs.
func Open(dir string) (*Catalog, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog path: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	return New(loam.NewTypedRepository[SpecMetadata](repo)), nil
}

// List returns every spec in the catalog sorted by name. Two documents
// resolving to the same name is a configuration error and fails the whole
// listing.
func (c *Catalog) List(ctx context.Context) ([]domain.ModelSpec, error) {
	docs, err := c.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	specs := make([]domain.ModelSpec, 0, len(docs))

	for _, doc := range docs {
		spec, err := doc.Data.Spec(doc.ID)
		if err != nil {
			return nil, err
		}

		// Collision detection: doc.ID is the relative file path in Loam
		if existingPath, ok := seen[spec.Name]; ok {
			return nil, fmt.Errorf("collision detected: model %q is defined in both %q and %q", spec.Name, existingPath, doc.ID)
		}
		seen[spec.Name] = doc.ID
		specs = append(specs, spec)
	}

	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs, nil
}

// Get retrieves one spec by model name.
func (c *Catalog) Get(ctx context.Context, name string) (domain.ModelSpec, error) {
	// Fast path: Loam resolves filename-derived IDs directly (e.g. "add"
	// finds add.md).
	if doc, err := c.Repo.Get(ctx, name); err == nil {
		spec, err := doc.Data.Spec(doc.ID)
		if err != nil {
			return domain.ModelSpec{}, err
		}
		if spec.Name == name {
			return spec, nil
		}
	}

	// A frontmatter name can differ from the filename; scan for it.
	specs, err := c.List(ctx)
	if err != nil {
		return domain.ModelSpec{}, err
	}
	for _, spec := range specs {
		if spec.Name == name {
			return spec, nil
		}
	}

	return domain.ModelSpec{}, fmt.Errorf("%w: %s", domain.ErrModelNotFound, name)
}

// Watch emits the name of each changed spec until ctx is done.
func (c *Catalog) Watch(ctx context.Context) (<-chan string, error) {
	// Watch all relevant files (recursive) using the doublestar pattern
	// supported by Loam.
	events, err := c.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				// The event carries the file ID; prefer the frontmatter name
				// when the document is still readable. Deleted files fall
				// back to the filename-derived name.
				name := catalog.TrimExtension(evt.ID)
				if doc, err := c.Repo.Get(ctx, evt.ID); err == nil && doc.Data.Name != "" {
					name = doc.Data.Name
				}
				select {
				case ch <- name:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
