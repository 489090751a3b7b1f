// Package catalog parses model-spec documents: the frontmatter headers the
// loam adapter reads and the standalone manifest files the CLI accepts.
package catalog

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/espalier/pkg/domain"
)

// Metadata is the loose header of one model-spec document. The mapstructure
// tags cover frontmatter decoding through Loam's typed repository, the yaml
// and json tags cover manifest files.
type Metadata struct {
	Name     string      `yaml:"name" json:"name" mapstructure:"name"`
	Category string      `yaml:"category" json:"category" mapstructure:"category"`
	Inputs   []PortEntry `yaml:"inputs" json:"inputs" mapstructure:"inputs"`
	Outputs  []PortEntry `yaml:"outputs" json:"outputs" mapstructure:"outputs"`
}

// PortEntry is one declared port. Type accepts either a plain string (the id
// doubles as the display name) or an id/name mapping.
type PortEntry struct {
	Name   string `yaml:"name" json:"name" mapstructure:"name"`
	Type   any    `yaml:"type" json:"type" mapstructure:"type"`
	Policy string `yaml:"policy" json:"policy" mapstructure:"policy"`
}

// Spec converts the metadata into a validated ModelSpec. The name comes from
// the header when declared, otherwise from docID with its extension trimmed.
func (m Metadata) Spec(docID string) (domain.ModelSpec, error) {
	name := m.Name
	if name == "" {
		name = docID
	}
	name = TrimExtension(name)

	spec := domain.ModelSpec{
		Name:     name,
		Category: m.Category,
	}

	var err error
	if spec.Inputs, err = convertPorts(m.Inputs); err != nil {
		return domain.ModelSpec{}, fmt.Errorf("model %q: inputs: %w", name, err)
	}
	if spec.Outputs, err = convertPorts(m.Outputs); err != nil {
		return domain.ModelSpec{}, fmt.Errorf("model %q: outputs: %w", name, err)
	}

	if err := spec.Validate(); err != nil {
		if docID != "" {
			return domain.ModelSpec{}, fmt.Errorf("document %q: %w", docID, err)
		}
		return domain.ModelSpec{}, err
	}
	return spec, nil
}

// Parse reads one spec document: markdown with YAML frontmatter or a plain
// YAML/JSON body. id supplies the fallback name, usually the filename.
func Parse(id string, data []byte) (domain.ModelSpec, error) {
	payload := data
	if header, ok := splitFrontmatter(data); ok {
		payload = header
	}

	var meta Metadata
	if err := yaml.Unmarshal(payload, &meta); err != nil {
		return domain.ModelSpec{}, fmt.Errorf("failed to parse model spec: %w", err)
	}
	return meta.Spec(id)
}

// splitFrontmatter extracts the YAML between the leading fence pair. Reports
// false when the document carries no frontmatter.
func splitFrontmatter(data []byte) ([]byte, bool) {
	s := string(data)
	if !strings.HasPrefix(s, "---\n") && !strings.HasPrefix(s, "---\r\n") {
		return nil, false
	}
	rest := s[strings.Index(s, "\n")+1:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return nil, false
	}
	return []byte(rest[:end]), true
}

func convertPorts(entries []PortEntry) ([]domain.PortSpec, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	specs := make([]domain.PortSpec, 0, len(entries))
	for i, entry := range entries {
		dt, err := convertType(entry.Type)
		if err != nil {
			return nil, fmt.Errorf("port %d: %w", i, err)
		}
		specs = append(specs, domain.PortSpec{
			Name:   entry.Name,
			Type:   dt,
			Policy: domain.ConnectionPolicy(entry.Policy),
		})
	}
	return specs, nil
}

// convertType handles the polymorphic type field: a plain string is an id
// that doubles as the display name, a mapping is decoded field by field.
func convertType(raw any) (domain.DataType, error) {
	switch v := raw.(type) {
	case string:
		return domain.DataType{ID: v, Name: v}, nil
	case map[string]any, map[any]any:
		var dt domain.DataType
		if err := mapstructure.Decode(v, &dt); err != nil {
			return domain.DataType{}, fmt.Errorf("failed to decode type: %w", err)
		}
		if dt.Name == "" {
			dt.Name = dt.ID
		}
		return dt, nil
	case nil:
		return domain.DataType{}, fmt.Errorf("missing type")
	default:
		return domain.DataType{}, fmt.Errorf("expected string or mapping for type, got %T", v)
	}
}

// TrimExtension normalizes a document ID into a model name.
func TrimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
