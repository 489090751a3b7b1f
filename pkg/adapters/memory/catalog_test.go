package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/domain"
)

func specFixtures() []domain.ModelSpec {
	number := domain.DataType{ID: "number", Name: "Number"}
	return []domain.ModelSpec{
		{
			Name:    "source",
			Outputs: []domain.PortSpec{{Name: "value", Type: number}},
		},
		{
			Name:   "sink",
			Inputs: []domain.PortSpec{{Name: "value", Type: number}},
		},
	}
}

func TestCatalogListAndGet(t *testing.T) {
	catalog, err := memory.NewCatalog(specFixtures()...)
	require.NoError(t, err)

	specs, err := catalog.List(context.Background())
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "sink", specs[0].Name, "list is sorted")
	assert.Equal(t, "source", specs[1].Name)

	spec, err := catalog.Get(context.Background(), "source")
	require.NoError(t, err)
	assert.Len(t, spec.Outputs, 1)

	_, err = catalog.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
}

func TestCatalogRejectsBadSpecs(t *testing.T) {
	_, err := memory.NewCatalog(domain.ModelSpec{Name: ""})
	assert.Error(t, err)

	dup := specFixtures()
	dup = append(dup, dup[0])
	_, err = memory.NewCatalog(dup...)
	assert.Error(t, err)
}
