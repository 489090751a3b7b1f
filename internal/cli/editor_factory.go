package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/catalog"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/registry"
)

// createEditor initializes an Editor with standard CLI conventions: models
// come from a manifest file when one is given, otherwise from the catalog
// directory through Loam.
func createEditor(ctx context.Context, opts RunOptions, logger *slog.Logger) (*espalier.Editor, error) {
	editorOpts := []espalier.Option{
		espalier.WithLogger(logger),
	}
	if opts.Debug {
		editorOpts = append(editorOpts, espalier.WithHooks(createDebugHooks(logger)))
	}

	if opts.Manifest != "" {
		specs, err := catalog.LoadFile(opts.Manifest)
		if err != nil {
			return nil, fmt.Errorf("error loading manifest: %w", err)
		}
		reg := registry.New()
		for _, spec := range specs {
			if err := reg.RegisterSpec(spec); err != nil {
				return nil, fmt.Errorf("register model %q: %w", spec.Name, err)
			}
		}
		editorOpts = append(editorOpts, espalier.WithRegistry(reg))
		return espalier.New(editorOpts...), nil
	}

	editor, err := espalier.Open(ctx, opts.CatalogPath, editorOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing editor: %w", err)
	}
	return editor, nil
}

// loadSceneFile reads a scene document from a JSON file. A missing file is
// not an error: the shell starts empty and creates it on exit.
func loadSceneFile(path string) (*domain.SceneDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var doc domain.SceneDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid scene document %q: %w", path, err)
	}
	return &doc, nil
}

// saveSceneFile writes the scene document as indented JSON.
func saveSceneFile(path string, doc *domain.SceneDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}
