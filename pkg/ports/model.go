package ports

import "github.com/aretw0/espalier/pkg/domain"

// DataModel is the behavior contract a node brings into a scene: how many
// ports it exposes per direction, what type each port carries, how its
// output ports share connections, and how data enters and leaves it.
//
// Implementations are plain structs owned by the embedding application; the
// engine only ever talks to them through this interface.
type DataModel interface {
	// Name is the registry identity of the model.
	Name() string

	// NumPorts returns how many ports exist in the given direction.
	NumPorts(d domain.PortDirection) int

	// DataType declares the type of the port at (d, index).
	DataType(d domain.PortDirection, index domain.PortIndex) domain.DataType

	// OutConnectionPolicy declares whether the output port at index may fan
	// out to multiple connections.
	OutConnectionPolicy(index domain.PortIndex) domain.ConnectionPolicy

	// OutData returns the model's current data at an output port, or nil
	// when it has nothing to offer.
	OutData(index domain.PortIndex) domain.NodeData

	// SetInData delivers data arriving at an input port. A nil payload
	// means the upstream source went away.
	SetInData(data domain.NodeData, index domain.PortIndex)

	// OnDataUpdated tells the model its output at index gained a consumer;
	// fired right after a connection to that port completes.
	OnDataUpdated(index domain.PortIndex)
}

// SpecProvider is the optional interface of models that can report their
// declared shape directly, port names included. Models built from a
// ModelSpec implement it; hand-written models usually do not and are probed
// through DataModel instead.
type SpecProvider interface {
	Spec() domain.ModelSpec
}

// BaseModel provides no-op defaults for the optional half of DataModel so
// leaf models only implement what they need. Identity and port declarations
// stay with the embedding type.
type BaseModel struct{}

// OutConnectionPolicy defaults every output port to a single connection.
func (BaseModel) OutConnectionPolicy(domain.PortIndex) domain.ConnectionPolicy {
	return domain.PolicyOne
}

// OutData defaults to "nothing to offer".
func (BaseModel) OutData(domain.PortIndex) domain.NodeData { return nil }

// SetInData discards incoming data.
func (BaseModel) SetInData(domain.NodeData, domain.PortIndex) {}

// OnDataUpdated ignores consumer notifications.
func (BaseModel) OnDataUpdated(domain.PortIndex) {}
