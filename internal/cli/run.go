package cli

import (
	"fmt"
)

// RunOptions contains all the configuration for the shell command.
type RunOptions struct {
	CatalogPath string // directory of model spec documents
	Manifest    string // single-file model manifest, takes precedence over CatalogPath
	ScenePath   string // scene document restored on start and saved on exit
	Headless    bool
	JSON        bool // NDJSON command stream instead of the interactive shell
	Watch       bool
	Debug       bool
	Fresh       bool // discard the saved watch-mode scene before starting
}

// Execute handles the 'shell' command logic, dispatching to a single session
// or watch mode.
func Execute(opts RunOptions) error {
	if opts.Watch && opts.Headless {
		return fmt.Errorf("--watch and --headless cannot be used together")
	}
	if opts.Watch && opts.JSON {
		return fmt.Errorf("--watch and --json cannot be used together")
	}

	if opts.Watch {
		RunWatch(opts)
		return nil
	}
	return RunShell(opts)
}
