package cli

import (
	"context"
	"crypto/md5"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/presentation/tui"
)

// RunWatch executes the shell in development mode, restarting it when the
// model catalog changes. The scene carries over between reloads as long as
// it still validates against the updated models.
func RunWatch(opts RunOptions) {
	logger := createLogger(opts.Debug)
	tui.PrintBanner(espalier.Version)

	// Default scene file for watch mode to enable stateful hot reload.
	// We scope it by path hash to prevent collisions between projects.
	if opts.ScenePath == "" {
		hash := md5.Sum([]byte(opts.CatalogPath))
		opts.ScenePath = filepath.Join(os.TempDir(), fmt.Sprintf("espalier-watch-%x.json", hash[:4]))
	}
	if opts.Fresh {
		_ = os.Remove(opts.ScenePath)
	}

	logger.Info("Starting Watcher", "path", opts.CatalogPath, "scene", opts.ScenePath)
	printSystemMessage("Watching '%s'.", opts.CatalogPath)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	// One pump for the whole session so restarted shells share Stdin.
	pump := newStdinPump(os.Stdin)

	for {
		if !runWatchIteration(sigCtx, opts, pump, logger) {
			break
		}
		logger.Info("Watcher restarting")
	}
	os.Exit(0)
}

func runWatchIteration(parentCtx *SignalContext, opts RunOptions, pump *stdinPump, logger *slog.Logger) bool {
	// A child context cancelled by reloads, without cancelling the parent
	// signal context.
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	editor, err := createEditor(ctx, opts, logger)
	if err != nil {
		logger.Error("Editor initialization failed", "err", err)
		select {
		case <-parentCtx.Done():
			return false
		case <-time.After(2 * time.Second):
			return true
		}
	}

	if doc, err := loadSceneFile(opts.ScenePath); err == nil && doc != nil {
		if err := editor.Load(doc); err != nil {
			// Models may have changed shape; start over instead of dying.
			logger.Warn("Scene no longer loads against the catalog", "err", err)
			printSystemMessage("Scene reset (models changed).")
		} else {
			printSystemMessage("Scene restored (%d nodes).", len(doc.Nodes))
		}
	}

	watchCh, err := editor.Watch(ctx)
	if err != nil {
		logger.Warn("Catalog watching unavailable", "err", err)
	}

	reloadCh := make(chan struct{}, 1)
	go func() {
		if watchCh == nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watchCh:
			if ok {
				logger.Info("Change detected, triggering reload", "event", event)
				fmt.Printf("\n")
				printSystemMessage("Change detected in '%s'.", event)
				// Delay slightly to ensure the file system is stable
				time.Sleep(100 * time.Millisecond)
				reloadCh <- struct{}{}
				cancel()
			}
		}
	}()

	sh := espalier.NewShell()
	sh.Input = pump.reader(ctx)
	sh.Output = os.Stdout
	sh.Renderer = tui.NewRenderer()

	doneCh := make(chan error, 1)
	go func() {
		doneCh <- sh.Run(editor)
	}()

	snapshot := func() {
		if err := saveSceneFile(opts.ScenePath, editor.Document()); err != nil {
			logger.Warn("Scene snapshot failed", "err", err)
		}
	}

	select {
	case <-parentCtx.Done():
		<-doneCh // Wait for the shell to unblock
		snapshot()
		logger.Info("Stopping watcher (signal received)", "signal", parentCtx.Signal())
		return false
	case <-reloadCh:
		<-doneCh
		snapshot()
		return true
	case err := <-doneCh:
		if err := handleExecutionError(err); err != nil {
			logger.Error("Shell error", "err", err)
		}
		snapshot()
		// The user left the shell; wait for a change or a signal before
		// restarting so we don't spin.
		printSystemMessage("Waiting for changes...")
		select {
		case <-parentCtx.Done():
			logger.Info("Stopping watcher (signal received)")
			return false
		case <-reloadCh:
			return true
		case <-ctx.Done():
			return true
		}
	}
}
