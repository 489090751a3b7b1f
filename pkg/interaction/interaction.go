/*
Package interaction implements the drag-to-connect gesture: one candidate
node, one dangling connection, and the decision whether they may join.

An Interaction is short-lived. The embedder constructs one when a dragged
connection end hovers or drops over a node, asks CanConnect or TryConnect,
and discards it. Validation is strictly ordered and free of side effects;
TryConnect is the only place a refusal is absorbed rather than returned.
*/
package interaction

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/scene"
)

// Interaction judges and performs the attachment of one dangling connection
// end to one candidate node. Not safe for concurrent use; it shares the
// scene's single-goroutine discipline.
type Interaction struct {
	node   *scene.Node
	conn   *scene.Connection
	scene  *scene.Scene
	logger *slog.Logger
}

// Option configures an Interaction.
type Option func(*Interaction)

// WithLogger overrides the scene's logger for this interaction.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interaction) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// New creates an interaction between a candidate node and a connection, both
// owned by sc. Converter resolution comes from the scene.
func New(node *scene.Node, conn *scene.Connection, sc *scene.Scene, opts ...Option) *Interaction {
	if node == nil {
		panic("interaction: nil node")
	}
	if conn == nil {
		panic("interaction: nil connection")
	}
	if sc == nil {
		panic("interaction: nil scene")
	}
	i := &Interaction{
		node:   node,
		conn:   conn,
		scene:  sc,
		logger: sc.Logger(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// CanConnect judges whether the connection's dangling end may attach to the
// candidate node. It mutates nothing and short-circuits in a fixed order:
// a required end must exist, the node must not already hold the opposite
// end, the dangling end must sit over a port, that port must be free, and
// the data types must match or have a registered converter.
//
// On success it returns the resolved port index and the converter to attach;
// the converter is the identity when the types already match. On refusal the
// error wraps domain.ErrNotConnectable plus the specific sentinel.
func (i *Interaction) CanConnect() (domain.PortIndex, domain.TypeConverter, error) {
	required := i.ConnectionRequiredPort()
	if !required.Valid() {
		return domain.InvalidPort, domain.TypeConverter{},
			fmt.Errorf("%w: connection %s is complete", domain.ErrRequiresPort, i.conn.ID())
	}

	if i.conn.Node(required.Opposite()) == i.node {
		return domain.InvalidPort, domain.TypeConverter{},
			fmt.Errorf("%w: node %s holds both ends", domain.ErrSelfConnection, i.node.ID())
	}

	end := i.ConnectionEndScenePosition(required)
	index := i.NodePortIndexUnderScenePoint(required, end)
	if !index.Valid() {
		return domain.InvalidPort, domain.TypeConverter{},
			fmt.Errorf("%w: (%.1f, %.1f) on node %s", domain.ErrConnectionPoint, end.X, end.Y, i.node.ID())
	}

	if !i.NodePortIsEmpty(required, index) {
		return domain.InvalidPort, domain.TypeConverter{},
			fmt.Errorf("%w: %s %d on node %s", domain.ErrPortNotEmpty, required, index, i.node.ID())
	}

	connType := i.conn.DataType(required.Opposite())
	portType := i.node.Model().DataType(required, index)
	if connType.Matches(portType) {
		return index, domain.TypeConverter{}, nil
	}
	// Converters run from the output side toward the input side, so the
	// lookup orientation depends on which end is dangling.
	from, to := connType, portType
	if required == domain.PortOutput {
		from, to = portType, connType
	}
	if tc, ok := i.scene.TypeConverter(from, to); ok {
		return index, tc, nil
	}
	return domain.InvalidPort, domain.TypeConverter{},
		fmt.Errorf("%w: %s to %s", domain.ErrNoConverter, from.ID, to.ID)
}

// TryConnect attempts the attachment. A refusal is logged at debug level,
// reported through the rejection hook and absorbed into a false return; no
// state changes on that path. On success the converter is attached (identity
// skipped), the node is bound into the connection, the node's port state
// records it, the wire end snaps onto the port, and the output side's
// current data flows through the completed connection.
func (i *Interaction) TryConnect() bool {
	required := i.ConnectionRequiredPort()
	index, converter, err := i.CanConnect()
	if err != nil {
		i.logger.Debug("connection refused",
			"connection", i.conn.ID(), "node", i.node.ID(), "err", err)
		if h := i.scene.Hooks().OnConnectionRejected; h != nil {
			h(err)
		}
		return false
	}

	if !converter.Identity() {
		i.conn.SetTypeConverter(converter)
	}
	i.conn.SetNodeToPort(i.node, required, index)
	i.node.State().SetConnection(required, index, i.conn)
	i.conn.Geometry().SetEndPoint(required, i.NodePortScenePosition(required, index))

	i.logger.Debug("connection completed",
		"connection", i.conn.ID(), "node", i.node.ID(), "direction", required, "index", index)
	if h := i.scene.Hooks().OnConnectionCreated; h != nil {
		h(i.conn.Event())
	}

	if out := i.conn.Node(domain.PortOutput); out != nil {
		out.OnDataUpdated(i.conn.PortIndex(domain.PortOutput))
	}
	return true
}

// Disconnect detaches the connection end bound at d to this interaction's
// node, leaving the connection dangling with d as its new required port.
// The input side downstream learns its data went away before the end comes
// loose. The connection must actually be bound at d to this node; anything
// else is a caller defect and panics.
func (i *Interaction) Disconnect(d domain.PortDirection) {
	if !d.Valid() {
		panic(fmt.Sprintf("interaction: invalid port direction %q", d))
	}
	if i.conn.Node(d) != i.node {
		panic(fmt.Sprintf("interaction: connection %s is not bound to node %s at %s", i.conn.ID(), i.node.ID(), d))
	}

	index := i.conn.PortIndex(d)
	i.node.State().EraseConnection(d, index, i.conn.ID())
	i.conn.PropagateEmptyData()
	i.conn.ClearNode(d)
	i.conn.SetRequiredPort(d)

	i.logger.Debug("connection detached",
		"connection", i.conn.ID(), "node", i.node.ID(), "direction", d, "index", index)
	if h := i.scene.Hooks().OnConnectionDetached; h != nil {
		h(domain.DetachEvent{ID: i.conn.ID(), Direction: d, Node: i.node.ID(), Port: index})
	}
}

// NodePortIsEmpty reports whether the port at (d, index) can take one more
// connection: nothing occupies it, or it is an output whose model declares a
// many policy. The many bypass affects occupancy only, never type checking.
func (i *Interaction) NodePortIsEmpty(d domain.PortDirection, index domain.PortIndex) bool {
	if len(i.node.State().Connections(d, index)) == 0 {
		return true
	}
	return d == domain.PortOutput && i.node.Model().OutConnectionPolicy(index) == domain.PolicyMany
}

// ConnectionRequiredPort returns the direction the connection still needs.
func (i *Interaction) ConnectionRequiredPort() domain.PortDirection {
	return i.conn.RequiredPort()
}

// ConnectionEndScenePosition returns where the given connection end sits in
// scene space.
func (i *Interaction) ConnectionEndScenePosition(d domain.PortDirection) domain.Point {
	return i.conn.Geometry().EndPoint(d)
}

// NodePortScenePosition returns where the candidate node's port at
// (d, index) sits in scene space.
func (i *Interaction) NodePortScenePosition(d domain.PortDirection, index domain.PortIndex) domain.Point {
	return i.node.Geometry().PortScenePosition(d, index)
}

// NodePortIndexUnderScenePoint hit-tests p against the candidate node's
// ports of direction d.
func (i *Interaction) NodePortIndexUnderScenePoint(d domain.PortDirection, p domain.Point) domain.PortIndex {
	return i.node.Geometry().PortIndexUnderScenePoint(d, p)
}
