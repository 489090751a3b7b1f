package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/registry"
	"github.com/aretw0/espalier/pkg/scene"
)

// Builder manages the graph construction.
type Builder struct {
	registry *registry.Registry

	order   []string // aliases in declaration order
	nodes   map[string]*NodeBuilder
	conns   []connDecl
	errs    []error
}

type connDecl struct {
	fromAlias string
	outIndex  domain.PortIndex
	toAlias   string
	inIndex   domain.PortIndex
}

// New creates a graph builder over a model registry.
func New(reg *registry.Registry) *Builder {
	return &Builder{
		registry: reg,
		nodes:    make(map[string]*NodeBuilder),
	}
}

// Node declares a node under a local alias, built from the named registry
// model. Redeclaring an alias is an error; the original declaration is
// returned so chaining stays safe.
func (b *Builder) Node(alias, modelName string) *NodeBuilder {
	if nb, ok := b.nodes[alias]; ok {
		b.errs = append(b.errs, fmt.Errorf("node alias %q declared twice", alias))
		return nb
	}
	nb := &NodeBuilder{
		alias:   alias,
		model:   modelName,
		builder: b,
	}
	b.nodes[alias] = nb
	b.order = append(b.order, alias)
	return nb
}

// Connect declares a connection from an output port to an input port, both
// addressed by alias and index. Validation happens at Build.
func (b *Builder) Connect(fromAlias string, outIndex domain.PortIndex, toAlias string, inIndex domain.PortIndex) *Builder {
	if _, ok := b.nodes[fromAlias]; !ok {
		b.errs = append(b.errs, fmt.Errorf("connect: unknown node alias %q", fromAlias))
	}
	if _, ok := b.nodes[toAlias]; !ok {
		b.errs = append(b.errs, fmt.Errorf("connect: unknown node alias %q", toAlias))
	}
	b.conns = append(b.conns, connDecl{
		fromAlias: fromAlias,
		outIndex:  outIndex,
		toAlias:   toAlias,
		inIndex:   inIndex,
	})
	return b
}

// Build compiles the declarations onto a fresh scene. Scene options (logger,
// hooks, geometry) pass through. All collected problems are returned joined;
// a non-nil scene is returned only when everything applied.
func (b *Builder) Build(opts ...scene.Option) (*scene.Scene, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	sc := scene.New(b.registry, opts...)
	built := make(map[string]*scene.Node, len(b.order))

	var errs []error
	for _, alias := range b.order {
		nb := b.nodes[alias]
		n, err := sc.CreateNodeNamed(nb.model)
		if err != nil {
			errs = append(errs, fmt.Errorf("node %q: %w", alias, err))
			continue
		}
		if nb.hasPos {
			n.SetPosition(nb.pos)
		}
		built[alias] = n
	}

	for _, c := range b.conns {
		out, okOut := built[c.fromAlias]
		in, okIn := built[c.toAlias]
		if !okOut || !okIn {
			// The failed node declaration already reported itself
			continue
		}
		if _, err := sc.CreateConnection(out, c.outIndex, in, c.inIndex); err != nil {
			errs = append(errs, fmt.Errorf("connect %s[%d] -> %s[%d]: %w",
				c.fromAlias, c.outIndex, c.toAlias, c.inIndex, err))
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return sc, nil
}
