package scene

import (
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// Node is a data model placed in a scene, with an identity, a geometry and
// the state of its ports.
type Node struct {
	id    domain.NodeID
	model ports.DataModel
	state *NodeState
	geom  ports.NodeGeometry
}

// ID returns the node's identity within its scene.
func (n *Node) ID() domain.NodeID { return n.id }

// Model returns the data model this node wraps.
func (n *Node) Model() ports.DataModel { return n.model }

// State returns the node's port occupancy registry.
func (n *Node) State() *NodeState { return n.state }

// Geometry returns the node's placement collaborator.
func (n *Node) Geometry() ports.NodeGeometry { return n.geom }

// Position returns the node's scene position.
func (n *Node) Position() domain.Point { return n.geom.Position() }

// SetPosition moves the node; its ports move with it.
func (n *Node) SetPosition(p domain.Point) { n.geom.SetPosition(p) }

// OnDataUpdated notifies the model that its output at index is consumed and
// pushes the current output data through every connection on that port. Call
// it after the model's output value changes; the scene calls it itself when
// a connection to that port forms.
func (n *Node) OnDataUpdated(index domain.PortIndex) {
	n.model.OnDataUpdated(index)
	data := n.model.OutData(index)
	for _, c := range n.state.Connections(domain.PortOutput, index) {
		c.PropagateData(data)
	}
}
