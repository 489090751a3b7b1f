package espalier

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	loamAdapter "github.com/aretw0/espalier/pkg/adapters/loam"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/registry"
	"github.com/aretw0/espalier/pkg/scene"
)

// Editor is the high-level entry point for the Espalier library.
// It wraps a scene and its model registry and provides a simplified,
// record-based API for consumers.
type Editor struct {
	scene    *scene.Scene
	registry *registry.Registry
	catalog  ports.CatalogSource
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	geometry scene.GeometryFactory
	Name     string
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithRegistry injects a pre-populated model registry, bypassing the default
// empty one.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Editor) {
		e.registry = reg
	}
}

// WithHooks registers observability hooks for scene lifecycle events.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Editor) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the editor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithGeometry overrides how node geometries are built, for hosts whose
// canvas sizes nodes differently than the default box layout.
func WithGeometry(factory scene.GeometryFactory) Option {
	return func(e *Editor) {
		e.geometry = factory
	}
}

// New initializes an Editor with an empty scene. Models come from the
// injected registry, or from an empty default one that the caller can fill
// through Registry().
func New(opts ...Option) *Editor {
	ed := &Editor{}
	for _, opt := range opts {
		opt(ed)
	}
	ed.build()
	return ed
}

// Open initializes an Editor whose registry is filled from a catalog of
// model spec documents at dir, read through a Loam repository. Options are
// applied the same way as in New; an injected registry receives the catalog
// models on top of whatever it already holds.
func Open(ctx context.Context, dir string, opts ...Option) (*Editor, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	catalog, err := loamAdapter.Open(absPath)
	if err != nil {
		return nil, err
	}

	specs, err := catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	ed := &Editor{
		catalog: catalog,
		Name:    filepath.Base(absPath),
	}
	for _, opt := range opts {
		opt(ed)
	}
	if ed.registry == nil {
		ed.registry = registry.New()
	}
	for _, spec := range specs {
		if err := ed.registry.RegisterSpec(spec); err != nil {
			return nil, fmt.Errorf("register model %q: %w", spec.Name, err)
		}
	}
	ed.build()
	return ed, nil
}

// build finalizes a configured Editor: defaults, logger enrichment and the
// scene itself.
func (e *Editor) build() {
	if e.registry == nil {
		e.registry = registry.New()
	}
	// Ensure logger is initialized (so we don't pass nil to the scene, which
	// would overwrite its default)
	if e.logger == nil {
		e.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if e.Name != "" {
		e.logger = e.logger.With("scene", e.Name)
	}
	sceneOpts := []scene.Option{
		scene.WithLogger(e.logger),
		scene.WithHooks(e.hooks),
	}
	if e.geometry != nil {
		sceneOpts = append(sceneOpts, scene.WithGeometry(e.geometry))
	}
	e.scene = scene.New(e.registry, sceneOpts...)
}

// Models lists every registered model spec, sorted by name.
func (e *Editor) Models() []domain.ModelSpec {
	return e.registry.Specs()
}

// Model returns the spec of a single registered model.
func (e *Editor) Model(name string) (domain.ModelSpec, error) {
	return e.registry.Spec(name)
}

// CreateNode instantiates a registered model and places the node at the
// given position.
func (e *Editor) CreateNode(model string, at domain.Point) (domain.NodeRecord, error) {
	node, err := e.scene.CreateNodeNamed(model)
	if err != nil {
		return domain.NodeRecord{}, err
	}
	node.SetPosition(at)
	return nodeRecord(node), nil
}

// MoveNode repositions an existing node.
func (e *Editor) MoveNode(id domain.NodeID, to domain.Point) (domain.NodeRecord, error) {
	node, err := e.scene.Node(id)
	if err != nil {
		return domain.NodeRecord{}, err
	}
	node.SetPosition(to)
	return nodeRecord(node), nil
}

// RemoveNode deletes a node and every connection attached to it.
func (e *Editor) RemoveNode(id domain.NodeID) error {
	return e.scene.RemoveNode(id)
}

// Connect wires an output port to an input port, resolving a type converter
// when the port types differ. Rejections carry the sentinel errors of the
// domain package, so callers can map them with domain.RejectionCode.
func (e *Editor) Connect(out domain.NodeID, outPort domain.PortIndex, in domain.NodeID, inPort domain.PortIndex) (domain.ConnectionRecord, error) {
	outNode, err := e.scene.Node(out)
	if err != nil {
		return domain.ConnectionRecord{}, err
	}
	inNode, err := e.scene.Node(in)
	if err != nil {
		return domain.ConnectionRecord{}, err
	}
	conn, err := e.scene.CreateConnection(outNode, outPort, inNode, inPort)
	if err != nil {
		return domain.ConnectionRecord{}, err
	}
	return connectionRecord(conn), nil
}

// StartConnection begins a dangling connection at the given port, for hosts
// driving an interactive drag. The returned connection feeds the interaction
// package; programmatic wiring should use Connect instead.
func (e *Editor) StartConnection(id domain.NodeID, d domain.PortDirection, port domain.PortIndex) (*scene.Connection, error) {
	node, err := e.scene.Node(id)
	if err != nil {
		return nil, err
	}
	return e.scene.StartConnection(node, d, port)
}

// Disconnect deletes a connection.
func (e *Editor) Disconnect(id domain.ConnectionID) error {
	conn, err := e.scene.Connection(id)
	if err != nil {
		return err
	}
	return e.scene.DeleteConnection(conn)
}

// Document captures the scene as a value object for persistence or
// introspection tools.
func (e *Editor) Document() *domain.SceneDocument {
	return e.scene.Document()
}

// Load replaces the scene's contents with the document's. The document is
// validated in full before any mutation, so a failed load leaves the scene
// untouched.
func (e *Editor) Load(doc *domain.SceneDocument) error {
	return e.scene.Load(doc)
}

// SaveTo snapshots the scene into a store under the given id.
func (e *Editor) SaveTo(ctx context.Context, store ports.SceneStore, id string) error {
	return store.Save(ctx, id, e.Document())
}

// LoadFrom replaces the scene with a document loaded from a store.
func (e *Editor) LoadFrom(ctx context.Context, store ports.SceneStore, id string) error {
	doc, err := store.Load(ctx, id)
	if err != nil {
		return err
	}
	return e.Load(doc)
}

// Watch returns a channel that signals when the underlying model catalog
// changes. Returns an error if the editor was not opened from a watchable
// catalog.
func (e *Editor) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := e.catalog.(ports.WatchableCatalog); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("editor has no watchable catalog")
}

// Registry returns the underlying model registry used by the editor.
func (e *Editor) Registry() *registry.Registry {
	return e.registry
}

// Scene returns the underlying scene, for callers that need the full
// interaction API (dangling connections, geometry, node state).
func (e *Editor) Scene() *scene.Scene {
	return e.scene
}

func nodeRecord(n *scene.Node) domain.NodeRecord {
	return domain.NodeRecord{
		ID:       n.ID(),
		Model:    n.Model().Name(),
		Position: n.Position(),
	}
}

func connectionRecord(c *scene.Connection) domain.ConnectionRecord {
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
	return rec
}
