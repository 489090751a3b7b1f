package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/loam"

	"github.com/aretw0/espalier/internal/catalog"
	loamAdapter "github.com/aretw0/espalier/pkg/adapters/loam"
)

func main() {
	targetDir := "examples/starter-catalog"
	if len(os.Args) > 1 {
		targetDir = os.Args[1]
	}

	// Ensure dir exists
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		panic(err)
	}

	fmt.Printf("Generating starter catalog in: %s\n", targetDir)

	// Init Loam (No Versioning = pure file generation)
	// This acts as our "Level Editor" saving to disk.
	repo, err := loam.Init(targetDir, loam.WithVersioning(false))
	if err != nil {
		panic(err)
	}

	typedRepo := loam.NewTypedRepository[loamAdapter.SpecMetadata](repo)
	ctx := context.TODO()

	// 1. Source: emits a number, shared by any number of consumers.
	err = typedRepo.Save(ctx, &loam.DocumentModel[loamAdapter.SpecMetadata]{
		ID:      "number-source",
		Content: "Produces a constant number.\nWire its output into any number input.",
		Data: catalog.Metadata{
			Name:     "number-source",
			Category: "Sources",
			Outputs: []catalog.PortEntry{
				{Name: "value", Type: "number", Policy: "many"},
			},
		},
	})
	check(err)

	// 2. Operation: two inputs, one output. Uses the mapping form of the
	// type field to carry a display name.
	err = typedRepo.Save(ctx, &loam.DocumentModel[loamAdapter.SpecMetadata]{
		ID:      "math-add",
		Content: "Adds two numbers.",
		Data: catalog.Metadata{
			Name:     "math-add",
			Category: "Operations",
			Inputs: []catalog.PortEntry{
				{Name: "a", Type: map[string]any{"id": "number", "name": "Number"}},
				{Name: "b", Type: map[string]any{"id": "number", "name": "Number"}},
			},
			Outputs: []catalog.PortEntry{
				{Name: "sum", Type: map[string]any{"id": "number", "name": "Number"}, Policy: "many"},
			},
		},
	})
	check(err)

	// 3. Sink
	err = typedRepo.Save(ctx, &loam.DocumentModel[loamAdapter.SpecMetadata]{
		ID:      "number-display",
		Content: "Shows the number arriving on its input.",
		Data: catalog.Metadata{
			Name:     "number-display",
			Category: "Displays",
			Inputs: []catalog.PortEntry{
				{Name: "value", Type: "number"},
			},
		},
	})
	check(err)

	fmt.Println("Done. Verify contents in", targetDir)
	fmt.Println("Try: espalier shell --dir", targetDir)
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}
