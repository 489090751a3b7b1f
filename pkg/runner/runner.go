package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/domain"
)

// Command is one line of the input stream. Op selects the operation; the
// remaining fields carry its arguments and are ignored by ops that do not
// use them.
type Command struct {
	Op    string  `json:"op"`
	Model string  `json:"model,omitempty"`
	ID    string  `json:"id,omitempty"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`

	Out     string `json:"out,omitempty"`
	OutPort int    `json:"out_port,omitempty"`
	In      string `json:"in,omitempty"`
	InPort  int    `json:"in_port,omitempty"`
}

// Event is one line of the output stream, answering exactly one Command.
// Reason is set only for wiring refusals and holds the rejection code.
type Event struct {
	OK     bool   `json:"ok"`
	Op     string `json:"op,omitempty"`
	Error  string `json:"error,omitempty"`
	Reason string `json:"reason,omitempty"`

	Node       *domain.NodeRecord       `json:"node,omitempty"`
	Connection *domain.ConnectionRecord `json:"connection,omitempty"`
	Models     []domain.ModelSpec       `json:"models,omitempty"`
	Scene      *domain.SceneDocument    `json:"scene,omitempty"`
}

// Runner handles the command loop of an Editor using the provided IO.
// This allows for easy testing and integration with different hosts
// (CLI, editors, test harnesses).
type Runner struct {
	Input  io.Reader
	Output io.Writer

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger
}

// NewRunner creates a new Runner with default Stdin/Stdout.
func NewRunner() *Runner {
	return &Runner{
		Input:  os.Stdin,
		Output: os.Stdout,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Run executes the command loop until EOF, an exit command, or context
// cancellation. A malformed line or an unknown op yields an error event and
// the loop continues; only IO failures end the run with an error.
func (r *Runner) Run(ctx context.Context, editor *espalier.Editor) error {
	in := r.Input
	if in == nil {
		in = os.Stdin
	}
	out := r.Output
	if out == nil {
		out = os.Stdout
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	scanner := bufio.NewScanner(in)
	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var cmd Command
		if err := json.Unmarshal([]byte(line), &cmd); err != nil {
			if encErr := encoder.Encode(Event{Error: fmt.Sprintf("invalid command: %v", err)}); encErr != nil {
				return fmt.Errorf("output error: %w", encErr)
			}
			continue
		}

		if cmd.Op == "exit" || cmd.Op == "quit" {
			return nil
		}

		event := dispatch(editor, cmd)
		logger.Debug("command handled", "op", cmd.Op, "ok", event.OK)

		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}
	return nil
}

func dispatch(editor *espalier.Editor, cmd Command) Event {
	refuse := func(err error) Event {
		ev := Event{Op: cmd.Op, Error: err.Error()}
		if errors.Is(err, domain.ErrNotConnectable) {
			ev.Reason = domain.RejectionCode(err)
		}
		return ev
	}

	event := Event{OK: true, Op: cmd.Op}
	switch cmd.Op {
	case "models":
		event.Models = editor.Models()

	case "add":
		record, err := editor.CreateNode(cmd.Model, domain.Point{X: cmd.X, Y: cmd.Y})
		if err != nil {
			return refuse(err)
		}
		event.Node = &record

	case "move":
		record, err := editor.MoveNode(domain.NodeID(cmd.ID), domain.Point{X: cmd.X, Y: cmd.Y})
		if err != nil {
			return refuse(err)
		}
		event.Node = &record

	case "remove":
		if err := editor.RemoveNode(domain.NodeID(cmd.ID)); err != nil {
			return refuse(err)
		}

	case "connect":
		record, err := editor.Connect(
			domain.NodeID(cmd.Out), domain.PortIndex(cmd.OutPort),
			domain.NodeID(cmd.In), domain.PortIndex(cmd.InPort),
		)
		if err != nil {
			return refuse(err)
		}
		event.Connection = &record

	case "disconnect":
		if err := editor.Disconnect(domain.ConnectionID(cmd.ID)); err != nil {
			return refuse(err)
		}

	case "scene":
		event.Scene = editor.Document()

	default:
		return refuse(fmt.Errorf("unknown op %q", cmd.Op))
	}
	return event
}
