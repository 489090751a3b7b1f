package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/presentation/tui"
)

// modelsCmd represents the models command
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models in the catalog",
	Long:  `Reads the model catalog and prints every registered model with its category and port counts.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("dir")
		if !cmd.Flags().Changed("dir") && len(args) > 0 {
			dir = args[0]
		}

		editor, err := espalier.Open(cmd.Context(), dir)
		if err != nil {
			fmt.Printf("Error initializing editor: %v\n", err)
			os.Exit(1)
		}

		var sb strings.Builder
		sb.WriteString("# Models\n\n")
		specs := editor.Models()
		if len(specs) == 0 {
			sb.WriteString("no models registered\n")
		}
		for _, spec := range specs {
			category := spec.Category
			if category == "" {
				category = "Uncategorized"
			}
			fmt.Fprintf(&sb, "- **%s** (%s): %d in / %d out\n", spec.Name, category, len(spec.Inputs), len(spec.Outputs))
		}

		render := tui.NewRenderer()
		out, err := render(sb.String())
		if err != nil {
			out = sb.String()
		}
		fmt.Println(strings.TrimSpace(out))
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
