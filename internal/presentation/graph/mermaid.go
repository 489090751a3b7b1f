package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
)

// Overlay contains dynamic state data to emphasize on the graph.
type Overlay struct {
	Highlight []domain.NodeID
	Current   domain.NodeID
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a scene
// document. It applies semantic styling by port signature:
// - Source (outputs only): ((Circle))
// - Sink (inputs only): [/Parallelogram/]
// - Default: [Rectangle]
// Edges carry the data type crossing them; converted edges are dotted and
// name both sides. specs may be nil when no catalog is at hand, which drops
// the shapes and type labels but keeps the wiring readable.
// It also applies overlay styles (Highlight/Current) if provided.
func GenerateMermaid(doc *domain.SceneDocument, specs map[string]domain.ModelSpec, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	if doc == nil {
		return sb.String()
	}

	models := make(map[domain.NodeID]string, len(doc.Nodes))

	for _, node := range doc.Nodes {
		models[node.ID] = node.Model

		// Sanitize ID for Mermaid
		safeID := sanitizeMermaidID(string(node.ID))

		// Node Shape based on port signature
		opener, closer := "[", "]"
		if spec, ok := specs[node.Model]; ok {
			switch {
			case len(spec.Inputs) == 0 && len(spec.Outputs) > 0:
				opener, closer = "((", "))" // Circle
			case len(spec.Outputs) == 0 && len(spec.Inputs) > 0:
				opener, closer = "[/", "/]" // Parallelogram (Sink)
			}
		}

		// Annotate with the id prefix so nodes of the same model stay
		// distinguishable
		sb.WriteString(fmt.Sprintf("    %s%s\"%s <br/> %s\"%s\n", safeID, opener, node.Model, shortID(node.ID), closer))
	}

	for _, conn := range doc.Connections {
		safeFrom := sanitizeMermaidID(string(conn.OutNode))
		safeTo := sanitizeMermaidID(string(conn.InNode))

		arrow := "-->"
		switch {
		case conn.Converter != nil:
			// Dotted line marks a conversion on the wire
			arrow = fmt.Sprintf("-. \"%s to %s\" .->", conn.Converter.From.Name, conn.Converter.To.Name)
		default:
			if name := edgeTypeName(specs, models, conn); name != "" {
				arrow = fmt.Sprintf("-- \"%s\" -->", name)
			}
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeFrom, arrow, safeTo))
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef highlight fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		// Deduplicate highlighted nodes (using safeIDs)
		seen := make(map[string]bool)
		for _, id := range overlay.Highlight {
			safeID := sanitizeMermaidID(string(id))
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s highlight;\n", safeID))
			}
		}

		if overlay.Current != "" {
			safeCurrent := sanitizeMermaidID(string(overlay.Current))
			sb.WriteString(fmt.Sprintf("    class %s current;\n", safeCurrent))
		}
	}

	return sb.String()
}

// edgeTypeName resolves the data type leaving the connection's output port.
func edgeTypeName(specs map[string]domain.ModelSpec, models map[domain.NodeID]string, conn domain.ConnectionRecord) string {
	spec, ok := specs[models[conn.OutNode]]
	if !ok {
		return ""
	}
	idx := int(conn.OutPort)
	if idx < 0 || idx >= len(spec.Outputs) {
		return ""
	}
	return spec.Outputs[idx].Type.Name
}

// shortID trims a node id to a readable prefix for labels.
func shortID(id domain.NodeID) string {
	s := string(id)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
