package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/presentation/tui"
	"github.com/aretw0/espalier/pkg/runner"
)

// RunShell executes a single interactive shell session, or a streaming
// NDJSON session when opts.JSON is set.
func RunShell(opts RunOptions) error {
	logger := createLogger(opts.Debug)

	// JSON mode keeps stdout machine-readable; no banner, no chatter.
	quiet := opts.Headless || opts.JSON

	if !quiet {
		tui.PrintBanner(espalier.Version)
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	editor, err := createEditor(sigCtx, opts, logger)
	if err != nil {
		return err
	}

	// Rehydrate the scene when a document path is configured.
	if opts.ScenePath != "" {
		doc, err := loadSceneFile(opts.ScenePath)
		if err != nil {
			return err
		}
		if doc != nil {
			if err := editor.Load(doc); err != nil {
				return fmt.Errorf("failed to load scene %q: %w", opts.ScenePath, err)
			}
			if !quiet {
				printSystemMessage("Scene '%s' restored (%d nodes).", opts.ScenePath, len(doc.Nodes))
			}
		}
	}

	var runErr error
	if opts.JSON {
		r := runner.NewRunner()
		r.Input = newStdinPump(os.Stdin).reader(sigCtx)
		r.Output = os.Stdout
		r.Logger = logger
		runErr = handleExecutionError(r.Run(sigCtx, editor))
	} else {
		sh := espalier.NewShell()
		sh.Input = newStdinPump(os.Stdin).reader(sigCtx)
		sh.Output = os.Stdout
		sh.Headless = opts.Headless
		if !opts.Headless {
			sh.Renderer = tui.NewRenderer()
		}
		runErr = handleExecutionError(sh.Run(editor))
	}

	if opts.ScenePath != "" {
		if err := saveSceneFile(opts.ScenePath, editor.Document()); err != nil {
			return fmt.Errorf("failed to save scene %q: %w", opts.ScenePath, err)
		}
		if !quiet {
			printSystemMessage("Scene '%s' saved.", opts.ScenePath)
		}
	}

	return runErr
}
