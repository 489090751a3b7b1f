package domain

import (
	"errors"
	"fmt"
)

// ErrNotConnectable is the umbrella for every expected reason a proposed
// connection is refused. The specific sentinels below all wrap it, so a
// caller can match the whole category with errors.Is(err, ErrNotConnectable)
// or a single cause with the narrower sentinel. Anything outside this
// category is a caller defect, not a refusal.
var ErrNotConnectable = errors.New("not connectable")

var (
	// ErrRequiresPort means the connection has both ends bound already and
	// therefore no dangling end to attach.
	ErrRequiresPort = fmt.Errorf("%w: connection requires no port", ErrNotConnectable)

	// ErrSelfConnection means both ends would land on the same node.
	ErrSelfConnection = fmt.Errorf("%w: node cannot connect to itself", ErrNotConnectable)

	// ErrConnectionPoint means the dangling end is not over any port.
	ErrConnectionPoint = fmt.Errorf("%w: connection end is not on a port", ErrNotConnectable)

	// ErrPortNotEmpty means the target slot already holds a connection and
	// its policy does not allow another.
	ErrPortNotEmpty = fmt.Errorf("%w: port is already occupied", ErrNotConnectable)

	// ErrNoConverter means the data types differ and the registry knows no
	// conversion between them.
	ErrNoConverter = fmt.Errorf("%w: no converter between data types", ErrNotConnectable)
)

// RejectionCode maps a connection refusal to a stable short code, fit for a
// metric label or an API error payload. Errors outside the known sentinels
// collapse into "other" so the code set stays bounded.
func RejectionCode(err error) string {
	switch {
	case errors.Is(err, ErrRequiresPort):
		return "requires_port"
	case errors.Is(err, ErrSelfConnection):
		return "self_connection"
	case errors.Is(err, ErrConnectionPoint):
		return "connection_point"
	case errors.Is(err, ErrPortNotEmpty):
		return "port_not_empty"
	case errors.Is(err, ErrNoConverter):
		return "no_converter"
	default:
		return "other"
	}
}

// ErrSceneNotFound is returned when a scene ID cannot be found in a store.
var ErrSceneNotFound = errors.New("scene not found")

// ErrNodeNotFound is returned when a node ID is not part of the scene.
var ErrNodeNotFound = errors.New("node not found")

// ErrConnectionNotFound is returned when a connection ID is not part of the scene.
var ErrConnectionNotFound = errors.New("connection not found")

// ErrModelNotFound is returned when a model name has no registered factory.
var ErrModelNotFound = errors.New("model not found")

// ErrModelExists is returned when registering a model name twice.
var ErrModelExists = errors.New("model already registered")

// ErrConverterExists is returned when registering a converter for a type
// pair that already has one.
var ErrConverterExists = errors.New("converter already registered")

// ErrPortOutOfRange is returned by trusted construction paths when a port
// index does not exist on the model.
var ErrPortOutOfRange = errors.New("port index out of range")
