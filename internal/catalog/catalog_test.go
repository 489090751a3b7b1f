package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/internal/catalog"
	"github.com/aretw0/espalier/pkg/domain"
)

func writeCatalog(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeCatalog(t, "catalog.yaml", `models:
  - name: number-source
    category: Sources
    outputs:
      - name: value
        type: {id: number, name: Number}
        policy: many
  - name: text-display
    category: Displays
    inputs:
      - name: text
        type: text
`)

	specs, err := catalog.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, specs, 2)

	src := specs[0]
	assert.Equal(t, "number-source", src.Name)
	assert.Equal(t, "Sources", src.Category)
	require.Len(t, src.Outputs, 1)
	assert.Equal(t, domain.DataType{ID: "number", Name: "Number"}, src.Outputs[0].Type)
	assert.Equal(t, domain.PolicyMany, src.Outputs[0].Policy)

	dst := specs[1]
	require.Len(t, dst.Inputs, 1)
	assert.Equal(t, domain.DataType{ID: "text", Name: "text"}, dst.Inputs[0].Type)
}

func TestLoadFile_JSON(t *testing.T) {
	path := writeCatalog(t, "catalog.json", `{
  "models": [
    {
      "name": "adder",
      "inputs": [
        {"name": "a", "type": "number"},
        {"name": "b", "type": "number"}
      ],
      "outputs": [
        {"name": "sum", "type": {"id": "number", "name": "Number"}}
      ]
    }
  ]
}`)

	specs, err := catalog.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "adder", specs[0].Name)
	assert.Len(t, specs[0].Inputs, 2)
	assert.Equal(t, domain.DataType{ID: "number", Name: "Number"}, specs[0].Outputs[0].Type)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := catalog.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFile_Collision(t *testing.T) {
	path := writeCatalog(t, "catalog.yaml", `models:
  - name: dup
    outputs: [{name: out, type: number}]
  - name: dup
    outputs: [{name: out, type: number}]
`)

	_, err := catalog.LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
}

func TestLoadFile_InvalidModel(t *testing.T) {
	path := writeCatalog(t, "catalog.yaml", `models:
  - name: broken
    inputs:
      - name: in
`)

	_, err := catalog.LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing type")
}

func TestParse_Frontmatter(t *testing.T) {
	doc := []byte(`---
name: multiply
category: Math
inputs:
  - name: a
    type: number
  - name: b
    type: number
outputs:
  - name: product
    type: number
---

# Multiply

Multiplies two numbers.
`)

	spec, err := catalog.Parse("multiply.md", doc)
	require.NoError(t, err)
	assert.Equal(t, "multiply", spec.Name)
	assert.Equal(t, "Math", spec.Category)
	assert.Len(t, spec.Inputs, 2)
	assert.Len(t, spec.Outputs, 1)
}

func TestParse_PlainYAML(t *testing.T) {
	doc := []byte(`category: Sources
outputs:
  - name: value
    type: number
`)

	spec, err := catalog.Parse("source.yaml", doc)
	require.NoError(t, err)
	assert.Equal(t, "source", spec.Name, "name falls back to the document id without its extension")
}

func TestParse_MissingName(t *testing.T) {
	doc := []byte(`outputs:
  - name: value
    type: number
`)

	_, err := catalog.Parse("", doc)
	assert.ErrorContains(t, err, "name")
}

func TestMetadata_Spec_TrimsExplicitName(t *testing.T) {
	meta := catalog.Metadata{
		Name:    "node.md",
		Outputs: []catalog.PortEntry{{Name: "out", Type: "number"}},
	}

	spec, err := meta.Spec("ignored.md")
	require.NoError(t, err)
	assert.Equal(t, "node", spec.Name)
}
