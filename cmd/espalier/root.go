package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "espalier",
	Short: "Espalier is a headless node-graph editor engine",
	Long:  `Espalier lets you build and validate node graphs from declarative model catalogs, over a shell, an HTTP API or MCP.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		format, _ := cmd.Flags().GetString("log-format")
		slog.SetDefault(logging.New(logging.ParseLevel(level), format))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing the model catalog")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", logging.FormatText, "Log format: text or json")
}
