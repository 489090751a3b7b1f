package domain

import "fmt"

// PortSpec declares one port of a declarative model.
type PortSpec struct {
	Name string   `json:"name" yaml:"name"`
	Type DataType `json:"type" yaml:"type"`
	// Policy only applies to output ports; empty defaults to PolicyOne.
	Policy ConnectionPolicy `json:"policy,omitempty" yaml:"policy,omitempty"`
}

// ModelSpec is a data-driven node model definition, the kind a catalog
// document declares. The registry can turn one into a working pass-through
// model without any code.
type ModelSpec struct {
	Name     string     `json:"name" yaml:"name"`
	Category string     `json:"category,omitempty" yaml:"category,omitempty"`
	Inputs   []PortSpec `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs  []PortSpec `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// Validate checks structural soundness: a name, typed ports, known policies.
func (s ModelSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("model spec missing name")
	}
	for i, p := range s.Inputs {
		if p.Type.ID == "" {
			return fmt.Errorf("model %q: input %d has no type id", s.Name, i)
		}
		if p.Policy != "" {
			return fmt.Errorf("model %q: input %d declares a policy (policies apply to outputs)", s.Name, i)
		}
	}
	for i, p := range s.Outputs {
		if p.Type.ID == "" {
			return fmt.Errorf("model %q: output %d has no type id", s.Name, i)
		}
		switch p.Policy {
		case "", PolicyOne, PolicyMany:
		default:
			return fmt.Errorf("model %q: output %d has unknown policy %q", s.Name, i, p.Policy)
		}
	}
	return nil
}
