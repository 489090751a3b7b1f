package domain

// PortDirection identifies which side of a node a port sits on.
// The zero value PortNone means "no direction": it is what a complete
// connection reports as its required port, and what Opposite returns for
// anything that is not a real direction.
type PortDirection string

const (
	// PortNone is the absence of a direction.
	PortNone PortDirection = ""
	// PortInput marks a receiving port on the left side of a node.
	PortInput PortDirection = "input"
	// PortOutput marks an emitting port on the right side of a node.
	PortOutput PortDirection = "output"
)

// Opposite returns the other real direction, or PortNone for anything else.
func (d PortDirection) Opposite() PortDirection {
	switch d {
	case PortInput:
		return PortOutput
	case PortOutput:
		return PortInput
	default:
		return PortNone
	}
}

// Valid reports whether d is one of the two real directions.
func (d PortDirection) Valid() bool {
	return d == PortInput || d == PortOutput
}

func (d PortDirection) String() string {
	if d == PortNone {
		return "none"
	}
	return string(d)
}

// PortIndex is the zero-based slot of a port within one direction of a node.
type PortIndex int

// InvalidPort is the hit-test sentinel for "no port here".
const InvalidPort PortIndex = -1

// Valid reports whether the index refers to an actual slot.
func (i PortIndex) Valid() bool {
	return i >= 0
}

// ConnectionPolicy governs how many connections an output port may serve at
// once. It has no effect on input ports, which always hold at most one.
type ConnectionPolicy string

const (
	// PolicyOne restricts a port to a single connection.
	PolicyOne ConnectionPolicy = "one"
	// PolicyMany lets an output port fan out to any number of connections.
	PolicyMany ConnectionPolicy = "many"
)
