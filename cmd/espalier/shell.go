package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/cli"
)

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Run the interactive scene editor",
	Long:  `Starts an interactive shell against the model catalog in the current directory. Nodes and connections live in memory; pass --scene to persist the graph between sessions.`,
	Run: func(cmd *cobra.Command, args []string) {
		catalogPath, _ := cmd.Flags().GetString("dir")
		if !cmd.Flags().Changed("dir") && len(args) > 0 {
			catalogPath = args[0]
		}

		opts := cli.RunOptions{
			CatalogPath: catalogPath,
		}
		opts.Manifest, _ = cmd.Flags().GetString("manifest")
		opts.ScenePath, _ = cmd.Flags().GetString("scene")
		opts.Headless, _ = cmd.Flags().GetBool("headless")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Watch, _ = cmd.Flags().GetBool("watch")
		opts.Debug, _ = cmd.Flags().GetBool("debug")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")

		if err := cli.Execute(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)

	shellCmd.Flags().Bool("headless", false, "Run in headless mode (no banner, no prompts, strict IO)")
	shellCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	shellCmd.Flags().BoolP("watch", "w", false, "Reload the editor when the catalog changes")
	shellCmd.Flags().String("manifest", "", "Load models from a single manifest file instead of a catalog directory")
	shellCmd.Flags().String("scene", "", "Scene file to restore on start and save on exit")
	shellCmd.Flags().Bool("debug", false, "Log lifecycle events")
	shellCmd.Flags().Bool("fresh", false, "Discard the saved watch scene before starting")

	// Make 'shell' the default when no command is provided.
	rootCmd.Run = shellCmd.Run
}
