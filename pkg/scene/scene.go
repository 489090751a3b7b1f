package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/geometry"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/registry"
)

// GeometryFactory builds the placement collaborator for a freshly created
// node.
type GeometryFactory func(model ports.DataModel) ports.NodeGeometry

// DefaultGeometry is the factory scenes use unless WithGeometry overrides
// it: a geometry.Box sized from the model's port counts.
func DefaultGeometry(model ports.DataModel) ports.NodeGeometry {
	return geometry.NewBox(
		model.NumPorts(domain.PortInput),
		model.NumPorts(domain.PortOutput),
	)
}

// Scene is the owning container for nodes and connections. It resolves
// models and converters through its registry and reports mutations through
// lifecycle hooks. Not safe for concurrent use.
type Scene struct {
	registry    *registry.Registry
	nodes       map[domain.NodeID]*Node
	connections map[domain.ConnectionID]*Connection

	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	geometry GeometryFactory
}

// Option configures a Scene.
type Option func(*Scene)

// WithLogger configures a logger for scene events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHooks installs lifecycle callbacks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Scene) {
		s.hooks = hooks
	}
}

// WithGeometry overrides how node geometries are built.
func WithGeometry(factory GeometryFactory) Option {
	return func(s *Scene) {
		if factory != nil {
			s.geometry = factory
		}
	}
}

// New creates an empty scene over the given registry.
func New(reg *registry.Registry, opts ...Option) *Scene {
	if reg == nil {
		panic("scene: nil registry")
	}
	s := &Scene{
		registry:    reg,
		nodes:       make(map[domain.NodeID]*Node),
		connections: make(map[domain.ConnectionID]*Connection),
		logger:      logging.NewNop(),
		geometry:    DefaultGeometry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Logger returns the scene's logger, for collaborators that want to log in
// the same stream.
func (s *Scene) Logger() *slog.Logger { return s.logger }

// Hooks returns the scene's lifecycle callbacks, for collaborators that
// complete or detach connections on the scene's behalf.
func (s *Scene) Hooks() domain.LifecycleHooks { return s.hooks }

// TypeConverter resolves a converter from the scene's registry. Scene
// satisfies ports.ConverterResolver with it.
func (s *Scene) TypeConverter(from, to domain.DataType) (domain.TypeConverter, bool) {
	return s.registry.TypeConverter(from, to)
}

var _ ports.ConverterResolver = (*Scene)(nil)

// CreateNode places the given model in the scene under a fresh identity.
func (s *Scene) CreateNode(model ports.DataModel) *Node {
	if model == nil {
		panic("scene: nil model")
	}
	return s.addNode(domain.NodeID(uuid.NewString()), model)
}

// CreateNodeNamed instantiates a registered model by name and places it in
// the scene.
func (s *Scene) CreateNodeNamed(name string) (*Node, error) {
	model, err := s.registry.Create(name)
	if err != nil {
		return nil, err
	}
	return s.CreateNode(model), nil
}

func (s *Scene) addNode(id domain.NodeID, model ports.DataModel) *Node {
	node := &Node{
		id:    id,
		model: model,
		state: newNodeState(model),
		geom:  s.geometry(model),
	}
	s.nodes[id] = node
	s.logger.Debug("node created", "node", id, "model", model.Name())
	if s.hooks.OnNodeCreated != nil {
		s.hooks.OnNodeCreated(domain.NodeEvent{ID: id, Model: model.Name()})
	}
	return node
}

// RemoveNode deletes the node's connections, then the node itself.
func (s *Scene) RemoveNode(id domain.NodeID) error {
	node, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	for _, c := range node.State().All() {
		_ = s.DeleteConnection(c)
	}
	delete(s.nodes, id)
	s.logger.Debug("node removed", "node", id, "model", node.Model().Name())
	if s.hooks.OnNodeRemoved != nil {
		s.hooks.OnNodeRemoved(domain.NodeEvent{ID: id, Model: node.Model().Name()})
	}
	return nil
}

// StartConnection begins a dangling connection from the port at (d, index):
// that end binds to the node, the opposite end becomes required and trails
// at the port position until an interaction completes or deletes it. An
// occupied origin is refused with the occupancy sentinel unless the port is
// an output with a many policy.
func (s *Scene) StartConnection(node *Node, d domain.PortDirection, index domain.PortIndex) (*Connection, error) {
	if !d.Valid() {
		panic(fmt.Sprintf("scene: invalid port direction %q", d))
	}
	if err := s.member(node); err != nil {
		return nil, err
	}
	if int(index) < 0 || int(index) >= node.Model().NumPorts(d) {
		return nil, fmt.Errorf("%w: %s %d on node %s", domain.ErrPortOutOfRange, d, index, node.ID())
	}
	if !portIsFree(node, d, index) {
		return nil, fmt.Errorf("%w: %s %d on node %s", domain.ErrPortNotEmpty, d, index, node.ID())
	}

	origin := node.Geometry().PortScenePosition(d, index)
	c := newConnection(domain.ConnectionID(uuid.NewString()), geometry.NewWire(origin))
	c.SetNodeToPort(node, d, index)
	c.SetRequiredPort(d.Opposite())
	node.State().SetConnection(d, index, c)
	s.connections[c.ID()] = c

	s.logger.Debug("connection started",
		"connection", c.ID(), "node", node.ID(), "direction", d, "index", index)
	return c, nil
}

// CreateConnection wires an output port straight to an input port: the
// programmatic path, validating bounds, self-connection, occupancy and type
// compatibility with the same sentinels the interactive path uses, minus
// hit-testing. On success the output node's current data flows through the
// new connection.
func (s *Scene) CreateConnection(out *Node, outIndex domain.PortIndex, in *Node, inIndex domain.PortIndex) (*Connection, error) {
	if err := s.member(out); err != nil {
		return nil, err
	}
	if err := s.member(in); err != nil {
		return nil, err
	}
	conv, err := s.validateConnection(out, outIndex, in, inIndex)
	if err != nil {
		if errors.Is(err, domain.ErrNotConnectable) {
			s.logger.Debug("connection rejected", "err", err)
			if s.hooks.OnConnectionRejected != nil {
				s.hooks.OnConnectionRejected(err)
			}
		}
		return nil, err
	}
	return s.wire(domain.ConnectionID(uuid.NewString()), out, outIndex, in, inIndex, conv), nil
}

// DeleteConnection removes a connection from the scene, erasing it from
// both node states and telling the input side its source went away. Works
// on dangling connections too, which cancels the interaction that started
// them.
func (s *Scene) DeleteConnection(c *Connection) error {
	if c == nil {
		return domain.ErrConnectionNotFound
	}
	if _, ok := s.connections[c.ID()]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrConnectionNotFound, c.ID())
	}

	ev := c.Event()
	if out := c.Node(domain.PortOutput); out != nil {
		out.State().EraseConnection(domain.PortOutput, c.PortIndex(domain.PortOutput), c.ID())
	}
	if in := c.Node(domain.PortInput); in != nil {
		in.State().EraseConnection(domain.PortInput, c.PortIndex(domain.PortInput), c.ID())
	}
	c.PropagateEmptyData()
	c.ClearNode(domain.PortOutput)
	c.ClearNode(domain.PortInput)
	delete(s.connections, c.ID())

	s.logger.Debug("connection deleted", "connection", ev.ID)
	if s.hooks.OnConnectionDeleted != nil {
		s.hooks.OnConnectionDeleted(ev)
	}
	return nil
}

// Clear removes every connection, then every node, firing the usual hooks.
func (s *Scene) Clear() {
	for _, c := range s.Connections() {
		_ = s.DeleteConnection(c)
	}
	for _, n := range s.Nodes() {
		_ = s.RemoveNode(n.ID())
	}
}

// Node looks a node up by ID.
func (s *Scene) Node(id domain.NodeID) (*Node, error) {
	node, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	return node, nil
}

// Connection looks a connection up by ID.
func (s *Scene) Connection(id domain.ConnectionID) (*Connection, error) {
	c, ok := s.connections[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrConnectionNotFound, id)
	}
	return c, nil
}

// Nodes returns every node, sorted by ID.
func (s *Scene) Nodes() []*Node {
	nodes := make([]*Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	return nodes
}

// Connections returns every connection, dangling ones included, sorted by
// ID.
func (s *Scene) Connections() []*Connection {
	conns := make([]*Connection, 0, len(s.connections))
	for _, c := range s.connections {
		conns = append(conns, c)
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].ID() < conns[j].ID() })
	return conns
}

// Document captures the scene as a value object: nodes with positions and
// every complete connection, in ID order. Dangling connections are
// transient and not captured.
func (s *Scene) Document() *domain.SceneDocument {
	doc := &domain.SceneDocument{}
	for _, n := range s.Nodes() {
		doc.Nodes = append(doc.Nodes, domain.NodeRecord{
			ID:       n.ID(),
			Model:    n.Model().Name(),
			Position: n.Position(),
		})
	}
	for _, c := range s.Connections() {
		if !c.Complete() {
			continue
		}
		rec := domain.ConnectionRecord{
			ID:      c.ID(),
			OutNode: c.Node(domain.PortOutput).ID(),
			OutPort: c.PortIndex(domain.PortOutput),
			InNode:  c.Node(domain.PortInput).ID(),
			InPort:  c.PortIndex(domain.PortInput),
		}
		if conv := c.Converter(); !conv.Identity() {
			rec.Converter = &domain.ConverterRecord{From: conv.From, To: conv.To}
		}
		doc.Connections = append(doc.Connections, rec)
	}
	return doc
}

// Load replaces the scene's contents with the document's. Models come from
// the registry and converters are re-resolved from it; the document is
// validated in full before any mutation, so a failed load leaves the scene
// untouched. Node and connection identities are preserved.
func (s *Scene) Load(doc *domain.SceneDocument) error {
	if doc == nil {
		return fmt.Errorf("scene: nil document")
	}

	models := make(map[domain.NodeID]ports.DataModel, len(doc.Nodes))
	for _, rec := range doc.Nodes {
		if _, dup := models[rec.ID]; dup {
			return fmt.Errorf("scene: duplicate node id %q", rec.ID)
		}
		model, err := s.registry.Create(rec.Model)
		if err != nil {
			return fmt.Errorf("load node %s: %w", rec.ID, err)
		}
		models[rec.ID] = model
	}

	type slot struct {
		node  domain.NodeID
		index domain.PortIndex
	}
	seen := make(map[domain.ConnectionID]bool, len(doc.Connections))
	inUsed := make(map[slot]bool)
	outUsed := make(map[slot]int)
	converters := make(map[domain.ConnectionID]domain.TypeConverter)
	for _, rec := range doc.Connections {
		if seen[rec.ID] {
			return fmt.Errorf("scene: duplicate connection id %q", rec.ID)
		}
		seen[rec.ID] = true

		outModel, ok := models[rec.OutNode]
		if !ok {
			return fmt.Errorf("load connection %s: %w: %s", rec.ID, domain.ErrNodeNotFound, rec.OutNode)
		}
		inModel, ok := models[rec.InNode]
		if !ok {
			return fmt.Errorf("load connection %s: %w: %s", rec.ID, domain.ErrNodeNotFound, rec.InNode)
		}
		if rec.OutNode == rec.InNode {
			return fmt.Errorf("load connection %s: %w", rec.ID, domain.ErrSelfConnection)
		}
		if int(rec.OutPort) < 0 || int(rec.OutPort) >= outModel.NumPorts(domain.PortOutput) {
			return fmt.Errorf("load connection %s: %w: output %d", rec.ID, domain.ErrPortOutOfRange, rec.OutPort)
		}
		if int(rec.InPort) < 0 || int(rec.InPort) >= inModel.NumPorts(domain.PortInput) {
			return fmt.Errorf("load connection %s: %w: input %d", rec.ID, domain.ErrPortOutOfRange, rec.InPort)
		}

		in := slot{rec.InNode, rec.InPort}
		if inUsed[in] {
			return fmt.Errorf("load connection %s: %w: input %d on node %s", rec.ID, domain.ErrPortNotEmpty, rec.InPort, rec.InNode)
		}
		inUsed[in] = true
		out := slot{rec.OutNode, rec.OutPort}
		outUsed[out]++
		if outUsed[out] > 1 && outModel.OutConnectionPolicy(rec.OutPort) != domain.PolicyMany {
			return fmt.Errorf("load connection %s: %w: output %d on node %s", rec.ID, domain.ErrPortNotEmpty, rec.OutPort, rec.OutNode)
		}

		outType := outModel.DataType(domain.PortOutput, rec.OutPort)
		inType := inModel.DataType(domain.PortInput, rec.InPort)
		switch {
		case rec.Converter == nil:
			if !outType.Matches(inType) {
				return fmt.Errorf("load connection %s: %w: %s to %s", rec.ID, domain.ErrNoConverter, outType.ID, inType.ID)
			}
		default:
			if !rec.Converter.From.Matches(outType) || !rec.Converter.To.Matches(inType) {
				return fmt.Errorf("load connection %s: converter %s to %s does not fit ports %s to %s",
					rec.ID, rec.Converter.From.ID, rec.Converter.To.ID, outType.ID, inType.ID)
			}
			tc, ok := s.registry.TypeConverter(rec.Converter.From, rec.Converter.To)
			if !ok {
				return fmt.Errorf("load connection %s: %w: %s to %s", rec.ID, domain.ErrNoConverter, outType.ID, inType.ID)
			}
			converters[rec.ID] = tc
		}
	}

	s.Clear()
	for _, rec := range doc.Nodes {
		node := s.addNode(rec.ID, models[rec.ID])
		node.SetPosition(rec.Position)
	}
	for _, rec := range doc.Connections {
		outNode := s.nodes[rec.OutNode]
		inNode := s.nodes[rec.InNode]
		s.wire(rec.ID, outNode, rec.OutPort, inNode, rec.InPort, converters[rec.ID])
	}
	s.logger.Debug("scene loaded", "nodes", len(doc.Nodes), "connections", len(doc.Connections))
	return nil
}

// wire performs the mutation half of connecting: both ends bound, endpoints
// snapped onto the ports, both node states updated, hooks fired and the
// output's current data pushed through. Validation belongs to the callers.
func (s *Scene) wire(id domain.ConnectionID, out *Node, outIndex domain.PortIndex, in *Node, inIndex domain.PortIndex, conv domain.TypeConverter) *Connection {
	c := newConnection(id, geometry.NewWire(out.Geometry().PortScenePosition(domain.PortOutput, outIndex)))
	c.SetNodeToPort(out, domain.PortOutput, outIndex)
	c.SetNodeToPort(in, domain.PortInput, inIndex)
	c.Geometry().SetEndPoint(domain.PortInput, in.Geometry().PortScenePosition(domain.PortInput, inIndex))
	if !conv.Identity() {
		c.SetTypeConverter(conv)
	}
	out.State().SetConnection(domain.PortOutput, outIndex, c)
	in.State().SetConnection(domain.PortInput, inIndex, c)
	s.connections[id] = c

	s.logger.Debug("connection created",
		"connection", id, "out", out.ID(), "out_index", outIndex, "in", in.ID(), "in_index", inIndex)
	if s.hooks.OnConnectionCreated != nil {
		s.hooks.OnConnectionCreated(c.Event())
	}
	out.OnDataUpdated(outIndex)
	return c
}

func (s *Scene) validateConnection(out *Node, outIndex domain.PortIndex, in *Node, inIndex domain.PortIndex) (domain.TypeConverter, error) {
	if int(outIndex) < 0 || int(outIndex) >= out.Model().NumPorts(domain.PortOutput) {
		return domain.TypeConverter{}, fmt.Errorf("%w: output %d on node %s", domain.ErrPortOutOfRange, outIndex, out.ID())
	}
	if int(inIndex) < 0 || int(inIndex) >= in.Model().NumPorts(domain.PortInput) {
		return domain.TypeConverter{}, fmt.Errorf("%w: input %d on node %s", domain.ErrPortOutOfRange, inIndex, in.ID())
	}
	if out == in {
		return domain.TypeConverter{}, fmt.Errorf("%w: node %s", domain.ErrSelfConnection, out.ID())
	}
	if !portIsFree(out, domain.PortOutput, outIndex) {
		return domain.TypeConverter{}, fmt.Errorf("%w: output %d on node %s", domain.ErrPortNotEmpty, outIndex, out.ID())
	}
	if !portIsFree(in, domain.PortInput, inIndex) {
		return domain.TypeConverter{}, fmt.Errorf("%w: input %d on node %s", domain.ErrPortNotEmpty, inIndex, in.ID())
	}

	outType := out.Model().DataType(domain.PortOutput, outIndex)
	inType := in.Model().DataType(domain.PortInput, inIndex)
	if outType.Matches(inType) {
		return domain.TypeConverter{}, nil
	}
	if tc, ok := s.registry.TypeConverter(outType, inType); ok {
		return tc, nil
	}
	return domain.TypeConverter{}, fmt.Errorf("%w: %s to %s", domain.ErrNoConverter, outType.ID, inType.ID)
}

func (s *Scene) member(node *Node) error {
	if node == nil {
		return domain.ErrNodeNotFound
	}
	if _, ok := s.nodes[node.ID()]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, node.ID())
	}
	return nil
}

// portIsFree is the occupancy rule: a slot is free when nothing occupies it,
// or when it is an output whose model allows fan-out.
func portIsFree(node *Node, d domain.PortDirection, index domain.PortIndex) bool {
	if len(node.State().Connections(d, index)) == 0 {
		return true
	}
	return d == domain.PortOutput && node.Model().OutConnectionPolicy(index) == domain.PolicyMany
}
