// Package validator lints scene documents against a model registry. Unlike a
// scene load, which stops at the first defect, the validator walks the whole
// document and reports every problem at once, so one run shows everything a
// catalog change broke.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/registry"
)

// ValidateDocument checks every node and connection of doc against reg.
// A nil or empty document is valid.
func ValidateDocument(reg *registry.Registry, doc *domain.SceneDocument) error {
	if doc == nil {
		return nil
	}

	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	// 1. Nodes: unique ids, known models
	seen := make(map[domain.NodeID]bool, len(doc.Nodes))
	specs := make(map[domain.NodeID]domain.ModelSpec)
	for _, n := range doc.Nodes {
		if seen[n.ID] {
			report("Duplicate node id: '%s'", n.ID)
			continue
		}
		seen[n.ID] = true

		spec, err := reg.Spec(n.Model)
		if err != nil {
			report("Unknown model '%s' on node '%s'", n.Model, n.ID)
			continue
		}
		specs[n.ID] = spec
	}

	// 2. Connections: ends exist, ports in range, occupancy, types
	connSeen := make(map[domain.ConnectionID]bool, len(doc.Connections))
	inputUse := make(map[string]bool)
	outputUse := make(map[string]int)
	for _, c := range doc.Connections {
		if connSeen[c.ID] {
			report("Duplicate connection id: '%s'", c.ID)
			continue
		}
		connSeen[c.ID] = true

		if !seen[c.OutNode] {
			report("Connection '%s' references missing node '%s'", c.ID, c.OutNode)
		}
		if !seen[c.InNode] {
			report("Connection '%s' references missing node '%s'", c.ID, c.InNode)
		}
		if c.OutNode == c.InNode && seen[c.OutNode] {
			report("Connection '%s' wires node '%s' to itself", c.ID, c.OutNode)
		}

		outSpec, outKnown := specs[c.OutNode]
		if outKnown && (!c.OutPort.Valid() || int(c.OutPort) >= len(outSpec.Outputs)) {
			report("Connection '%s': output %d out of range on node '%s' (%d outputs)",
				c.ID, c.OutPort, c.OutNode, len(outSpec.Outputs))
			outKnown = false
		}
		inSpec, inKnown := specs[c.InNode]
		if inKnown && (!c.InPort.Valid() || int(c.InPort) >= len(inSpec.Inputs)) {
			report("Connection '%s': input %d out of range on node '%s' (%d inputs)",
				c.ID, c.InPort, c.InNode, len(inSpec.Inputs))
			inKnown = false
		}

		// Occupancy. Inputs take exactly one connection; outputs take more
		// only under a many policy.
		if inKnown {
			inKey := fmt.Sprintf("%s/%d", c.InNode, c.InPort)
			if inputUse[inKey] {
				report("Input %d on node '%s' is wired more than once", c.InPort, c.InNode)
			}
			inputUse[inKey] = true
		}
		if outKnown {
			outKey := fmt.Sprintf("%s/%d", c.OutNode, c.OutPort)
			outputUse[outKey]++
			if outputUse[outKey] > 1 && outSpec.Outputs[c.OutPort].Policy != domain.PolicyMany {
				report("Output %d on node '%s' is shared without a many policy", c.OutPort, c.OutNode)
			}
		}

		if outKnown && inKnown {
			from := outSpec.Outputs[c.OutPort].Type
			to := inSpec.Inputs[c.InPort].Type
			if !from.Matches(to) {
				if _, ok := reg.TypeConverter(from, to); !ok {
					report("Connection '%s': no converter from '%s' to '%s'", c.ID, from.ID, to.ID)
				}
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("found %d problems:\n- %s", len(problems), strings.Join(problems, "\n- "))
	}
	return nil
}
