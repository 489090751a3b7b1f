package dsl

import "github.com/aretw0/espalier/pkg/domain"

// NodeBuilder provides a fluent API for configuring a declared node.
type NodeBuilder struct {
	alias   string
	model   string
	pos     domain.Point
	hasPos  bool
	builder *Builder
}

// At places the node in scene coordinates.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.pos = domain.Point{X: x, Y: y}
	n.hasPos = true
	return n
}

// Connect declares a connection from this node's output port to another
// declared node's input port, continuing on the owning builder.
func (n *NodeBuilder) Connect(outIndex domain.PortIndex, toAlias string, inIndex domain.PortIndex) *NodeBuilder {
	n.builder.Connect(n.alias, outIndex, toAlias, inIndex)
	return n
}
