package espalier

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
)

// Shell drives an Editor through a line-oriented command loop using the
// provided IO. This allows for easy testing and integration with different
// frontends (CLI, TUI, etc).
type Shell struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// ContentRenderer is a function that transforms content before outputting
// it. This allows for TUI rendering (markdown to ANSI) without coupling the
// core package.
type ContentRenderer func(string) (string, error)

// NewShell creates a new Shell. The caller must set Input and Output
// (typically os.Stdin and os.Stdout) before calling Run.
func NewShell() *Shell {
	return &Shell{}
}

const shellHelp = `# Commands

  - ` + "`models`" + ` list the registered models
  - ` + "`nodes`" + ` list the nodes in the scene
  - ` + "`add <model> [x y]`" + ` create a node, optionally placed at (x, y)
  - ` + "`move <id> <x> <y>`" + ` reposition a node
  - ` + "`remove <id>`" + ` delete a node and its connections
  - ` + "`connect <out-id> <out-port> <in-id> <in-port>`" + ` wire two ports
  - ` + "`disconnect <id>`" + ` delete a connection
  - ` + "`scene`" + ` print the scene document as JSON
  - ` + "`save <path>`" + ` write the scene document to a file
  - ` + "`load <path>`" + ` replace the scene with a saved document
  - ` + "`exit`" + ` leave the shell`

// Run executes the command loop until EOF or an exit command.
func (sh *Shell) Run(editor *Editor) error {
	if sh.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if sh.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lineReader := bufio.NewReader(sh.Input)
	w := sh.Output

	if !sh.Headless {
		fmt.Fprintln(w, "--- Espalier Shell ---")
		fmt.Fprintln(w, `Type "help" for the command list.`)
	}

	for {
		if !sh.Headless {
			fmt.Fprint(w, "> ")
		}
		text, err := lineReader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				// Graceful exit on EOF
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}
		line := strings.TrimSpace(text)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			fmt.Fprintln(w, "Bye!")
			return nil
		}

		out, err := sh.dispatch(editor, line)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			continue
		}
		if out != "" {
			sh.print(w, out)
		}
	}
}

func (sh *Shell) print(w io.Writer, content string) {
	if sh.Renderer != nil {
		if rendered, err := sh.Renderer(content); err == nil {
			content = rendered
		}
	}
	fmt.Fprintln(w, strings.TrimSpace(content))
}

func (sh *Shell) dispatch(editor *Editor, line string) (string, error) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		return shellHelp, nil

	case "models":
		return formatModels(editor.Models()), nil

	case "nodes":
		return formatNodes(editor.Document().Nodes), nil

	case "add":
		if len(args) != 1 && len(args) != 3 {
			return "", fmt.Errorf("usage: add <model> [x y]")
		}
		var at domain.Point
		if len(args) == 3 {
			var err error
			if at, err = parsePoint(args[1], args[2]); err != nil {
				return "", err
			}
		}
		record, err := editor.CreateNode(args[0], at)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("node %s (%s) at (%g, %g)", record.ID, record.Model, record.Position.X, record.Position.Y), nil

	case "move":
		if len(args) != 3 {
			return "", fmt.Errorf("usage: move <id> <x> <y>")
		}
		to, err := parsePoint(args[1], args[2])
		if err != nil {
			return "", err
		}
		record, err := editor.MoveNode(domain.NodeID(args[0]), to)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("node %s at (%g, %g)", record.ID, record.Position.X, record.Position.Y), nil

	case "remove", "rm":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: remove <id>")
		}
		if err := editor.RemoveNode(domain.NodeID(args[0])); err != nil {
			return "", err
		}
		return fmt.Sprintf("node %s removed", args[0]), nil

	case "connect":
		if len(args) != 4 {
			return "", fmt.Errorf("usage: connect <out-id> <out-port> <in-id> <in-port>")
		}
		outPort, err := strconv.Atoi(args[1])
		if err != nil {
			return "", fmt.Errorf("invalid out-port %q", args[1])
		}
		inPort, err := strconv.Atoi(args[3])
		if err != nil {
			return "", fmt.Errorf("invalid in-port %q", args[3])
		}
		record, err := editor.Connect(
			domain.NodeID(args[0]), domain.PortIndex(outPort),
			domain.NodeID(args[2]), domain.PortIndex(inPort),
		)
		if err != nil {
			if errors.Is(err, domain.ErrNotConnectable) {
				return "", fmt.Errorf("refused (%s): %w", domain.RejectionCode(err), err)
			}
			return "", err
		}
		msg := fmt.Sprintf("connection %s: %s[%d] -> %s[%d]",
			record.ID, record.OutNode, record.OutPort, record.InNode, record.InPort)
		if record.Converter != nil {
			msg += fmt.Sprintf(" via %s to %s", record.Converter.From.Name, record.Converter.To.Name)
		}
		return msg, nil

	case "disconnect":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: disconnect <id>")
		}
		if err := editor.Disconnect(domain.ConnectionID(args[0])); err != nil {
			return "", err
		}
		return fmt.Sprintf("connection %s deleted", args[0]), nil

	case "scene":
		data, err := json.MarshalIndent(editor.Document(), "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil

	case "save":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: save <path>")
		}
		data, err := json.MarshalIndent(editor.Document(), "", "  ")
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(args[0], data, 0o644); err != nil {
			return "", err
		}
		return fmt.Sprintf("scene saved to %s", args[0]), nil

	case "load":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: load <path>")
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		var doc domain.SceneDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return "", fmt.Errorf("invalid scene document %q: %w", args[0], err)
		}
		if err := editor.Load(&doc); err != nil {
			return "", err
		}
		return fmt.Sprintf("scene loaded (%d nodes, %d connections)", len(doc.Nodes), len(doc.Connections)), nil

	default:
		return "", fmt.Errorf("unknown command %q (try \"help\")", cmd)
	}
}

func parsePoint(xArg, yArg string) (domain.Point, error) {
	x, err := strconv.ParseFloat(xArg, 64)
	if err != nil {
		return domain.Point{}, fmt.Errorf("invalid x %q", xArg)
	}
	y, err := strconv.ParseFloat(yArg, 64)
	if err != nil {
		return domain.Point{}, fmt.Errorf("invalid y %q", yArg)
	}
	return domain.Point{X: x, Y: y}, nil
}

func formatNodes(nodes []domain.NodeRecord) string {
	if len(nodes) == 0 {
		return "no nodes in the scene"
	}
	var b strings.Builder
	b.WriteString("# Nodes\n\n")
	for _, n := range nodes {
		fmt.Fprintf(&b, "- **%s** %s at (%g, %g)\n", n.ID, n.Model, n.Position.X, n.Position.Y)
	}
	return b.String()
}

func formatModels(specs []domain.ModelSpec) string {
	if len(specs) == 0 {
		return "no models registered"
	}
	var b strings.Builder
	b.WriteString("# Models\n\n")
	for _, spec := range specs {
		fmt.Fprintf(&b, "- **%s**", spec.Name)
		if spec.Category != "" {
			fmt.Fprintf(&b, " (%s)", spec.Category)
		}
		fmt.Fprintf(&b, ": %d in / %d out\n", len(spec.Inputs), len(spec.Outputs))
	}
	return b.String()
}
