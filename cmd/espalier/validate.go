package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/validator"
	"github.com/aretw0/espalier/pkg/domain"
)

var validateCmd = &cobra.Command{
	Use:   "validate [scene file]",
	Short: "Check a scene document against the catalog",
	Long:  `Replays a scene document through the editor and reports unknown models, dangling ports, occupied-port collisions and missing converters.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Scene is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var doc domain.SceneDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid scene document %q: %w", args[0], err)
	}

	editor, err := espalier.Open(cmd.Context(), dir)
	if err != nil {
		return fmt.Errorf("failed to init editor: %w", err)
	}

	// The validator walks the whole document instead of stopping at the
	// first defect, so one run reports everything the catalog change broke.
	return validator.ValidateDocument(editor.Registry(), &doc)
}
