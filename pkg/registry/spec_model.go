package registry

import (
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// specModel is the generic model behind RegisterSpec: port counts, types and
// policies come from the spec, and data passes through from each input to
// the first output sharing its type. It has no behavior of its own beyond
// that, which is all a wiring-focused catalog needs.
type specModel struct {
	spec domain.ModelSpec
	in   []domain.NodeData
}

func newSpecModel(spec domain.ModelSpec) *specModel {
	return &specModel{
		spec: spec,
		in:   make([]domain.NodeData, len(spec.Inputs)),
	}
}

func (m *specModel) Name() string { return m.spec.Name }

func (m *specModel) Spec() domain.ModelSpec { return m.spec }

func (m *specModel) NumPorts(d domain.PortDirection) int {
	switch d {
	case domain.PortInput:
		return len(m.spec.Inputs)
	case domain.PortOutput:
		return len(m.spec.Outputs)
	default:
		return 0
	}
}

func (m *specModel) DataType(d domain.PortDirection, index domain.PortIndex) domain.DataType {
	switch d {
	case domain.PortInput:
		return m.spec.Inputs[index].Type
	case domain.PortOutput:
		return m.spec.Outputs[index].Type
	default:
		return domain.DataType{}
	}
}

func (m *specModel) OutConnectionPolicy(index domain.PortIndex) domain.ConnectionPolicy {
	policy := m.spec.Outputs[index].Policy
	if policy == "" {
		return domain.PolicyOne
	}
	return policy
}

func (m *specModel) OutData(index domain.PortIndex) domain.NodeData {
	want := m.spec.Outputs[index].Type
	for i, data := range m.in {
		if data != nil && m.spec.Inputs[i].Type.Matches(want) {
			return data
		}
	}
	return nil
}

func (m *specModel) SetInData(data domain.NodeData, index domain.PortIndex) {
	m.in[index] = data
}

func (m *specModel) OnDataUpdated(domain.PortIndex) {}

var (
	_ ports.DataModel    = (*specModel)(nil)
	_ ports.SpecProvider = (*specModel)(nil)
)
