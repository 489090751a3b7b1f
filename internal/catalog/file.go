package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/espalier/pkg/domain"
)

// File represents the structure of a catalog manifest: a single document
// declaring every model the editor should know about.
type File struct {
	Models []Metadata `yaml:"models" json:"models"`
}

// LoadFile reads a catalog manifest from disk. JSON when the extension says
// so, YAML otherwise.
func LoadFile(path string) ([]domain.ModelSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var f File
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
		}
	}

	seen := make(map[string]bool)
	specs := make([]domain.ModelSpec, 0, len(f.Models))
	for i, meta := range f.Models {
		spec, err := meta.Spec("")
		if err != nil {
			return nil, fmt.Errorf("model %d: %w", i, err)
		}
		if seen[spec.Name] {
			return nil, fmt.Errorf("collision detected: model %q is defined twice", spec.Name)
		}
		seen[spec.Name] = true
		specs = append(specs, spec)
	}
	return specs, nil
}
