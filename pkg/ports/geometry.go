package ports

import "github.com/aretw0/espalier/pkg/domain"

// NodeGeometry is the placement collaborator of a node: where the node sits,
// where its ports are in scene space, and which port (if any) lies under a
// scene point. The engine consumes it for hit-testing; it never owns it.
type NodeGeometry interface {
	Position() domain.Point
	SetPosition(p domain.Point)

	// PortScenePosition maps (direction, index) to scene coordinates.
	PortScenePosition(d domain.PortDirection, index domain.PortIndex) domain.Point

	// PortIndexUnderScenePoint hit-tests the ports of one direction,
	// returning domain.InvalidPort when the point misses all of them.
	PortIndexUnderScenePoint(d domain.PortDirection, p domain.Point) domain.PortIndex
}

// ConnectionGeometry tracks the two endpoint positions of a connection in
// scene space. While an end dangles its point follows the pointer; once
// bound it snaps to the port.
type ConnectionGeometry interface {
	EndPoint(d domain.PortDirection) domain.Point
	SetEndPoint(d domain.PortDirection, p domain.Point)
}
