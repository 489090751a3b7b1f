// Package geometry provides the default placement collaborators for scenes:
// a box node layout with evenly spaced ports and a two-point wire. Embedders
// with real rendering replace these through the scene's geometry option.
package geometry

import (
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// Layout defaults, in scene units.
const (
	DefaultWidth     = 140.0
	DefaultSpacing   = 24.0
	DefaultHitRadius = 8.0
	verticalPadding  = 12.0
)

// Box lays a node out as a rectangle with input ports down the left edge and
// output ports down the right, evenly spaced. Hit-testing is a distance
// check against each port center.
type Box struct {
	pos       domain.Point
	width     float64
	spacing   float64
	hitRadius float64
	numIn     int
	numOut    int
}

// BoxOption configures a Box.
type BoxOption func(*Box)

// WithWidth overrides the node width.
func WithWidth(w float64) BoxOption {
	return func(b *Box) { b.width = w }
}

// WithSpacing overrides the vertical distance between ports.
func WithSpacing(s float64) BoxOption {
	return func(b *Box) { b.spacing = s }
}

// WithHitRadius overrides how close a point must land to count as a hit.
func WithHitRadius(r float64) BoxOption {
	return func(b *Box) { b.hitRadius = r }
}

// NewBox creates a box layout for a node with the given port counts.
func NewBox(numIn, numOut int, opts ...BoxOption) *Box {
	b := &Box{
		width:     DefaultWidth,
		spacing:   DefaultSpacing,
		hitRadius: DefaultHitRadius,
		numIn:     numIn,
		numOut:    numOut,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Position returns the top-left corner of the box.
func (b *Box) Position() domain.Point { return b.pos }

// SetPosition moves the box; port positions follow.
func (b *Box) SetPosition(p domain.Point) { b.pos = p }

// Height is derived from the fuller port column.
func (b *Box) Height() float64 {
	rows := b.numIn
	if b.numOut > rows {
		rows = b.numOut
	}
	if rows == 0 {
		rows = 1
	}
	return float64(rows)*b.spacing + verticalPadding
}

// PortScenePosition maps (direction, index) to the port center in scene
// coordinates. The index must exist; the direction must be real.
func (b *Box) PortScenePosition(d domain.PortDirection, index domain.PortIndex) domain.Point {
	var x float64
	switch d {
	case domain.PortInput:
		b.checkIndex(index, b.numIn)
		x = b.pos.X
	case domain.PortOutput:
		b.checkIndex(index, b.numOut)
		x = b.pos.X + b.width
	default:
		panic(fmt.Sprintf("geometry: invalid port direction %q", d))
	}
	y := b.pos.Y + verticalPadding/2 + (float64(index)+0.5)*b.spacing
	return domain.Point{X: x, Y: y}
}

// PortIndexUnderScenePoint returns the port of direction d whose center lies
// within the hit radius of p, or domain.InvalidPort when the point misses
// them all.
func (b *Box) PortIndexUnderScenePoint(d domain.PortDirection, p domain.Point) domain.PortIndex {
	var count int
	switch d {
	case domain.PortInput:
		count = b.numIn
	case domain.PortOutput:
		count = b.numOut
	default:
		panic(fmt.Sprintf("geometry: invalid port direction %q", d))
	}

	for i := 0; i < count; i++ {
		center := b.PortScenePosition(d, domain.PortIndex(i))
		if p.DistanceTo(center) <= b.hitRadius {
			return domain.PortIndex(i)
		}
	}
	return domain.InvalidPort
}

func (b *Box) checkIndex(index domain.PortIndex, count int) {
	if int(index) < 0 || int(index) >= count {
		panic(fmt.Sprintf("geometry: port index %d out of range (%d ports)", index, count))
	}
}

var _ ports.NodeGeometry = (*Box)(nil)
