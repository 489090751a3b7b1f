package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/espalier/pkg/domain"
)

// Catalog implements ports.CatalogSource from an in-memory set of model
// specs.
type Catalog struct {
	specs map[string]domain.ModelSpec
}

// NewCatalog creates a catalog from the given specs. Specs are validated up
// front so a bad one fails loud at construction, improving DX for tests.
func NewCatalog(specs ...domain.ModelSpec) (*Catalog, error) {
	byName := make(map[string]domain.ModelSpec, len(specs))
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("invalid spec %q: %w", spec.Name, err)
		}
		if _, dup := byName[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate spec %q", spec.Name)
		}
		byName[spec.Name] = spec
	}
	return &Catalog{specs: byName}, nil
}

// List returns all specs, sorted by name.
func (c *Catalog) List(ctx context.Context) ([]domain.ModelSpec, error) {
	names := make([]string, 0, len(c.specs))
	for name := range c.specs {
		names = append(names, name)
	}
	sort.Strings(names) // Deterministic order

	specs := make([]domain.ModelSpec, 0, len(names))
	for _, name := range names {
		specs = append(specs, c.specs[name])
	}
	return specs, nil
}

// Get retrieves one spec by model name.
func (c *Catalog) Get(ctx context.Context, name string) (domain.ModelSpec, error) {
	spec, ok := c.specs[name]
	if !ok {
		return domain.ModelSpec{}, fmt.Errorf("%w: %s", domain.ErrModelNotFound, name)
	}
	return spec, nil
}
