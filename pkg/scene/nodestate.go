package scene

import (
	"fmt"
	"sort"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// NodeState records which connections occupy which ports of one node, per
// direction and index. It is sized once from the node's model and mutated
// only by the scene and the interaction engine; entries here always agree
// with the bindings held by the connections themselves.
type NodeState struct {
	in  []map[domain.ConnectionID]*Connection
	out []map[domain.ConnectionID]*Connection
}

func newNodeState(model ports.DataModel) *NodeState {
	return &NodeState{
		in:  makeSlots(model.NumPorts(domain.PortInput)),
		out: makeSlots(model.NumPorts(domain.PortOutput)),
	}
}

func makeSlots(n int) []map[domain.ConnectionID]*Connection {
	slots := make([]map[domain.ConnectionID]*Connection, n)
	for i := range slots {
		slots[i] = make(map[domain.ConnectionID]*Connection)
	}
	return slots
}

// Connections returns the connections occupying the port at (d, index),
// sorted by ID. The result is a copy; mutating it does not touch the state.
func (s *NodeState) Connections(d domain.PortDirection, index domain.PortIndex) []*Connection {
	slot := s.slot(d, index)
	conns := make([]*Connection, 0, len(slot))
	for _, c := range slot {
		conns = append(conns, c)
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].ID() < conns[j].ID() })
	return conns
}

// SetConnection records c as occupying the port at (d, index). Recording the
// same connection twice is a no-op.
func (s *NodeState) SetConnection(d domain.PortDirection, index domain.PortIndex, c *Connection) {
	s.slot(d, index)[c.ID()] = c
}

// EraseConnection removes the connection with the given ID from the port at
// (d, index). Erasing an ID that is not recorded there is a no-op.
func (s *NodeState) EraseConnection(d domain.PortDirection, index domain.PortIndex, id domain.ConnectionID) {
	delete(s.slot(d, index), id)
}

// All returns every connection touching this node, sorted by ID.
func (s *NodeState) All() []*Connection {
	var conns []*Connection
	for _, slot := range s.in {
		for _, c := range slot {
			conns = append(conns, c)
		}
	}
	for _, slot := range s.out {
		for _, c := range slot {
			conns = append(conns, c)
		}
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].ID() < conns[j].ID() })
	return conns
}

func (s *NodeState) slot(d domain.PortDirection, index domain.PortIndex) map[domain.ConnectionID]*Connection {
	var slots []map[domain.ConnectionID]*Connection
	switch d {
	case domain.PortInput:
		slots = s.in
	case domain.PortOutput:
		slots = s.out
	default:
		panic(fmt.Sprintf("scene: invalid port direction %q", d))
	}
	if int(index) < 0 || int(index) >= len(slots) {
		panic(fmt.Sprintf("scene: port index %d out of range (%d %s ports)", index, len(slots), d))
	}
	return slots[index]
}
