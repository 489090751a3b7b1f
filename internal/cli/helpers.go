package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate from Stdout shell UI).
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug, logging.FormatText)
	}
	return logging.NewNop()
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeCreated: func(e domain.NodeEvent) {
			logger.Debug("Node Created", "node_id", e.ID, "model", e.Model)
		},
		OnNodeRemoved: func(e domain.NodeEvent) {
			logger.Debug("Node Removed", "node_id", e.ID)
		},
		OnConnectionCreated: func(e domain.ConnectionEvent) {
			logger.Debug("Connection Created", "connection_id", e.ID, "out", e.OutNode, "in", e.InNode)
		},
		OnConnectionDeleted: func(e domain.ConnectionEvent) {
			logger.Debug("Connection Deleted", "connection_id", e.ID)
		},
		OnConnectionRejected: func(err error) {
			logger.Debug("Connection Rejected", "reason", domain.RejectionCode(err), "err", err)
		},
	}
}

// stdinPump owns Stdin for the whole process so restarted shells do not
// compete for reads. Lines flow through a channel, which lets a reader
// unblock on context cancellation even while Stdin itself stays blocked.
type stdinPump struct {
	lines chan string
}

func newStdinPump(r io.Reader) *stdinPump {
	p := &stdinPump{lines: make(chan string)}
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			p.lines <- scanner.Text()
		}
		close(p.lines)
	}()
	return p
}

// reader returns an io.Reader view over the pump bound to ctx. Each Read
// yields one full line with its newline restored, or fails with
// "interrupted" when ctx ends.
func (p *stdinPump) reader(ctx context.Context) io.Reader {
	return &pumpReader{pump: p, ctx: ctx}
}

type pumpReader struct {
	pump *stdinPump
	ctx  context.Context
	buf  []byte
}

func (r *pumpReader) Read(b []byte) (int, error) {
	if len(r.buf) == 0 {
		select {
		case <-r.ctx.Done():
			return 0, errors.New("interrupted")
		case line, ok := <-r.pump.lines:
			if !ok {
				return 0, io.EOF
			}
			r.buf = append([]byte(line), '\n')
		}
	}
	n := copy(b, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func isInterrupted(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) ||
		err.Error() == "interrupted" ||
		err.Error() == "input error: interrupted" ||
		errors.Is(err, io.EOF) ||
		(errors.Unwrap(err) != nil && isInterrupted(errors.Unwrap(err)))
}

func handleExecutionError(err error) error {
	if err == nil {
		return nil
	}
	if isInterrupted(err) {
		return nil // Exit 0 for interruptions
	}
	return err
}
