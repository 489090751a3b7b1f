package scene

import (
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// Connection joins an output port to an input port. Each end is either bound
// to a (node, index) pair or unbound; a connection with exactly one bound end
// is dangling and reports the unbound direction as its required port. An
// optional converter translates data on the way to the input side.
type Connection struct {
	id       domain.ConnectionID
	inNode   *Node
	outNode  *Node
	inPort   domain.PortIndex
	outPort  domain.PortIndex
	required domain.PortDirection

	converter domain.TypeConverter
	geom      ports.ConnectionGeometry
}

func newConnection(id domain.ConnectionID, geom ports.ConnectionGeometry) *Connection {
	return &Connection{
		id:       id,
		inPort:   domain.InvalidPort,
		outPort:  domain.InvalidPort,
		required: domain.PortNone,
		geom:     geom,
	}
}

// ID returns the connection's identity within its scene.
func (c *Connection) ID() domain.ConnectionID { return c.id }

// Node returns the node bound at the given end, or nil when that end is
// unbound.
func (c *Connection) Node(d domain.PortDirection) *Node {
	node, _ := c.end(d)
	return node
}

// PortIndex returns the port index bound at the given end, or
// domain.InvalidPort when that end is unbound.
func (c *Connection) PortIndex(d domain.PortDirection) domain.PortIndex {
	_, index := c.end(d)
	return index
}

// RequiredPort reports the direction still needing a binding. PortNone means
// the connection is complete.
func (c *Connection) RequiredPort() domain.PortDirection { return c.required }

// SetRequiredPort marks the direction still needing a binding. PortNone
// clears the requirement.
func (c *Connection) SetRequiredPort(d domain.PortDirection) {
	if d != domain.PortNone && !d.Valid() {
		panic(fmt.Sprintf("scene: invalid port direction %q", d))
	}
	c.required = d
}

// SetNodeToPort binds the given end to (node, index) and clears the required
// direction.
func (c *Connection) SetNodeToPort(node *Node, d domain.PortDirection, index domain.PortIndex) {
	switch d {
	case domain.PortInput:
		c.inNode, c.inPort = node, index
	case domain.PortOutput:
		c.outNode, c.outPort = node, index
	default:
		panic(fmt.Sprintf("scene: invalid port direction %q", d))
	}
	c.required = domain.PortNone
}

// ClearNode unbinds the given end. The required direction is left untouched;
// the caller decides whether the connection dangles again.
func (c *Connection) ClearNode(d domain.PortDirection) {
	switch d {
	case domain.PortInput:
		c.inNode, c.inPort = nil, domain.InvalidPort
	case domain.PortOutput:
		c.outNode, c.outPort = nil, domain.InvalidPort
	default:
		panic(fmt.Sprintf("scene: invalid port direction %q", d))
	}
}

// Complete reports whether both ends are bound.
func (c *Connection) Complete() bool { return c.inNode != nil && c.outNode != nil }

// Converter returns the converter riding on the wire. The zero value is the
// identity.
func (c *Connection) Converter() domain.TypeConverter { return c.converter }

// SetTypeConverter attaches a converter to apply on data flowing toward the
// input side.
func (c *Connection) SetTypeConverter(tc domain.TypeConverter) { c.converter = tc }

// Geometry returns the endpoint tracker for this connection.
func (c *Connection) Geometry() ports.ConnectionGeometry { return c.geom }

// Event summarizes the connection for lifecycle hooks. Unbound ends report
// empty node IDs and domain.InvalidPort.
func (c *Connection) Event() domain.ConnectionEvent {
	ev := domain.ConnectionEvent{
		ID:        c.id,
		OutPort:   domain.InvalidPort,
		InPort:    domain.InvalidPort,
		Converted: !c.converter.Identity(),
	}
	if c.outNode != nil {
		ev.OutNode, ev.OutPort = c.outNode.ID(), c.outPort
	}
	if c.inNode != nil {
		ev.InNode, ev.InPort = c.inNode.ID(), c.inPort
	}
	return ev
}

// DataType returns the data type the connection carries at the given end.
// For a bound end the type comes from that node's model; for a dangling end
// it comes from the opposite, bound end. Panics when neither end is bound.
func (c *Connection) DataType(d domain.PortDirection) domain.DataType {
	if node, index := c.end(d); node != nil {
		return node.Model().DataType(d, index)
	}
	opp := d.Opposite()
	if node, index := c.end(opp); node != nil {
		return node.Model().DataType(opp, index)
	}
	panic("scene: connection has no bound end")
}

// PropagateData applies the attached converter and delivers the result to
// the input-side model. Without a bound input end this is a no-op; nil data
// passes through untouched.
func (c *Connection) PropagateData(data domain.NodeData) {
	if c.inNode == nil {
		return
	}
	c.inNode.Model().SetInData(c.converter.Apply(data), c.inPort)
}

// PropagateEmptyData tells the input side its source went away. The
// converter is bypassed: absence needs no translation.
func (c *Connection) PropagateEmptyData() {
	if c.inNode == nil {
		return
	}
	c.inNode.Model().SetInData(nil, c.inPort)
}

func (c *Connection) end(d domain.PortDirection) (*Node, domain.PortIndex) {
	switch d {
	case domain.PortInput:
		return c.inNode, c.inPort
	case domain.PortOutput:
		return c.outNode, c.outPort
	default:
		panic(fmt.Sprintf("scene: invalid port direction %q", d))
	}
}
