package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// Factory produces a fresh model instance for every node that uses it.
type Factory func() ports.DataModel

// Registry manages the available node models and the type converters a
// scene may insert between mismatched ports. Safe for concurrent use: one
// registry is typically shared by every scene and server handler.
type Registry struct {
	mu         sync.RWMutex
	factories  map[string]Factory
	categories map[string]string
	converters map[converterKey]domain.TypeConverter
}

type converterKey struct {
	from string
	to   string
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		factories:  make(map[string]Factory),
		categories: make(map[string]string),
		converters: make(map[converterKey]domain.TypeConverter),
	}
}

// RegisterOption configures a model registration.
type RegisterOption func(*registration)

type registration struct {
	category string
}

// WithCategory files a model under a palette category.
func WithCategory(category string) RegisterOption {
	return func(r *registration) {
		r.category = category
	}
}

// RegisterModel adds a model factory, keyed by the name a probe instance
// reports. Registering the same name twice is an error.
func (r *Registry) RegisterModel(factory Factory, opts ...RegisterOption) error {
	if factory == nil {
		return fmt.Errorf("nil model factory")
	}
	probe := factory()
	if probe == nil {
		return fmt.Errorf("model factory returned nil")
	}
	name := probe.Name()
	if name == "" {
		return fmt.Errorf("model factory produced an unnamed model")
	}

	var reg registration
	for _, opt := range opts {
		opt(&reg)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %s", domain.ErrModelExists, name)
	}
	r.factories[name] = factory
	if reg.category != "" {
		r.categories[name] = reg.category
	}
	return nil
}

// RegisterSpec registers a declarative pass-through model built from spec.
func (r *Registry) RegisterSpec(spec domain.ModelSpec, opts ...RegisterOption) error {
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("invalid model spec: %w", err)
	}
	if spec.Category != "" {
		opts = append([]RegisterOption{WithCategory(spec.Category)}, opts...)
	}
	return r.RegisterModel(func() ports.DataModel {
		return newSpecModel(spec)
	}, opts...)
}

// Create instantiates a registered model by name.
func (r *Registry) Create(name string) (ports.DataModel, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrModelNotFound, name)
	}
	return factory(), nil
}

// Spec reports the declared shape of a registered model. Models registered
// through RegisterSpec return their full spec; hand-written models are
// probed through the DataModel interface, which cannot see port names.
func (r *Registry) Spec(name string) (domain.ModelSpec, error) {
	model, err := r.Create(name)
	if err != nil {
		return domain.ModelSpec{}, err
	}

	if provider, ok := model.(ports.SpecProvider); ok {
		spec := provider.Spec()
		spec.Category = r.CategoryOf(name)
		return spec, nil
	}

	spec := domain.ModelSpec{Name: name, Category: r.CategoryOf(name)}
	for i := 0; i < model.NumPorts(domain.PortInput); i++ {
		spec.Inputs = append(spec.Inputs, domain.PortSpec{
			Type: model.DataType(domain.PortInput, domain.PortIndex(i)),
		})
	}
	for i := 0; i < model.NumPorts(domain.PortOutput); i++ {
		spec.Outputs = append(spec.Outputs, domain.PortSpec{
			Type:   model.DataType(domain.PortOutput, domain.PortIndex(i)),
			Policy: model.OutConnectionPolicy(domain.PortIndex(i)),
		})
	}
	return spec, nil
}

// Specs returns the spec of every registered model, sorted by name.
func (r *Registry) Specs() []domain.ModelSpec {
	names := r.Names()
	specs := make([]domain.ModelSpec, 0, len(names))
	for _, name := range names {
		spec, err := r.Spec(name)
		if err != nil {
			continue
		}
		specs = append(specs, spec)
	}
	return specs
}

// Names returns every registered model name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CategoryOf returns the category a model was filed under, or "" for none.
func (r *Registry) CategoryOf(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.categories[name]
}

// Categories returns the model names grouped by category. Models without a
// category are grouped under "".
func (r *Registry) Categories() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]string)
	for name := range r.factories {
		cat := r.categories[name]
		out[cat] = append(out[cat], name)
	}
	for _, names := range out {
		sort.Strings(names)
	}
	return out
}

// RegisterTypeConverter adds a converter for its (From, To) pair.
// Identity pairs and duplicates are errors.
func (r *Registry) RegisterTypeConverter(tc domain.TypeConverter) error {
	if tc.From.ID == "" || tc.To.ID == "" {
		return fmt.Errorf("converter needs both type ids")
	}
	if tc.From.Matches(tc.To) {
		return fmt.Errorf("refusing converter from %s to itself", tc.From.ID)
	}
	if tc.Convert == nil {
		return fmt.Errorf("converter %s->%s has no conversion func", tc.From.ID, tc.To.ID)
	}

	key := converterKey{from: tc.From.ID, to: tc.To.ID}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.converters[key]; exists {
		return fmt.Errorf("%w: %s->%s", domain.ErrConverterExists, tc.From.ID, tc.To.ID)
	}
	r.converters[key] = tc
	return nil
}

// TypeConverter implements ports.ConverterResolver.
func (r *Registry) TypeConverter(from, to domain.DataType) (domain.TypeConverter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tc, ok := r.converters[converterKey{from: from.ID, to: to.ID}]
	return tc, ok
}

var _ ports.ConverterResolver = (*Registry)(nil)
