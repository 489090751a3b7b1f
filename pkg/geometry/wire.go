package geometry

import (
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// Wire tracks the two endpoints of a connection in scene coordinates. A
// freshly started connection has both ends at the grab point; the scene
// snaps an end onto a port when that end binds.
type Wire struct {
	in  domain.Point
	out domain.Point
}

// NewWire creates a wire with both ends at origin.
func NewWire(origin domain.Point) *Wire {
	return &Wire{in: origin, out: origin}
}

// EndPoint returns the scene position of the given end.
func (w *Wire) EndPoint(d domain.PortDirection) domain.Point {
	switch d {
	case domain.PortInput:
		return w.in
	case domain.PortOutput:
		return w.out
	default:
		panic(fmt.Sprintf("geometry: invalid port direction %q", d))
	}
}

// SetEndPoint moves the given end, e.g. while the user drags it.
func (w *Wire) SetEndPoint(d domain.PortDirection, p domain.Point) {
	switch d {
	case domain.PortInput:
		w.in = p
	case domain.PortOutput:
		w.out = p
	default:
		panic(fmt.Sprintf("geometry: invalid port direction %q", d))
	}
}

var _ ports.ConnectionGeometry = (*Wire)(nil)
