package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/presentation/graph"
	"github.com/aretw0/espalier/pkg/domain"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [scene file]",
	Short: "Export the scene graph visualization",
	Long: `Reads a scene document and outputs a Mermaid diagram (graph LR) of its wiring.
When the model catalog is readable, nodes are shaped by their port signature and edges carry the data type crossing them.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("dir")

		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Printf("Error reading scene: %v\n", err)
			os.Exit(1)
		}
		var doc domain.SceneDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			fmt.Printf("Error parsing scene %s: %v\n", args[0], err)
			os.Exit(1)
		}

		// Specs enrich the diagram but are not required to draw it.
		var specs map[string]domain.ModelSpec
		if editor, err := espalier.Open(cmd.Context(), dir); err == nil {
			specs = make(map[string]domain.ModelSpec, len(editor.Models()))
			for _, spec := range editor.Models() {
				specs[spec.Name] = spec
			}
		} else {
			slog.Warn("Catalog unavailable, drawing untyped graph", "dir", dir, "err", err)
		}

		fmt.Print(graph.GenerateMermaid(&doc, specs, nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
