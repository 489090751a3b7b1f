package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

var (
	typeNumber = domain.DataType{ID: "number", Name: "Number"}
	typeText   = domain.DataType{ID: "text", Name: "Text"}
)

type probeModel struct {
	ports.BaseModel
	name string
}

func (m *probeModel) Name() string                         { return m.name }
func (m *probeModel) NumPorts(domain.PortDirection) int    { return 1 }
func (m *probeModel) DataType(domain.PortDirection, domain.PortIndex) domain.DataType {
	return typeNumber
}

func TestRegisterModelAndCreate(t *testing.T) {
	r := New()
	err := r.RegisterModel(func() ports.DataModel {
		return &probeModel{name: "Probe"}
	}, WithCategory("Testing"))
	require.NoError(t, err)

	model, err := r.Create("Probe")
	require.NoError(t, err)
	assert.Equal(t, "Probe", model.Name())
	assert.Equal(t, "Testing", r.CategoryOf("Probe"))

	first, err := r.Create("Probe")
	require.NoError(t, err)
	second, err := r.Create("Probe")
	require.NoError(t, err)
	assert.NotSame(t, first, second, "Create must return fresh instances")
}

func TestRegisterModelDuplicate(t *testing.T) {
	r := New()
	factory := func() ports.DataModel { return &probeModel{name: "Probe"} }
	require.NoError(t, r.RegisterModel(factory))

	err := r.RegisterModel(factory)
	assert.ErrorIs(t, err, domain.ErrModelExists)
}

func TestCreateUnknownModel(t *testing.T) {
	r := New()
	_, err := r.Create("ghost")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
}

func TestNamesAndCategories(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterModel(func() ports.DataModel {
		return &probeModel{name: "Beta"}
	}, WithCategory("Sources")))
	require.NoError(t, r.RegisterModel(func() ports.DataModel {
		return &probeModel{name: "Alpha"}
	}, WithCategory("Sources")))
	require.NoError(t, r.RegisterModel(func() ports.DataModel {
		return &probeModel{name: "Loose"}
	}))

	assert.Equal(t, []string{"Alpha", "Beta", "Loose"}, r.Names())

	cats := r.Categories()
	assert.Equal(t, []string{"Alpha", "Beta"}, cats["Sources"])
	assert.Equal(t, []string{"Loose"}, cats[""])
}

func TestTypeConverterRegistration(t *testing.T) {
	r := New()

	_, ok := r.TypeConverter(typeNumber, typeText)
	assert.False(t, ok, "empty registry must resolve nothing")

	tc := domain.TypeConverter{
		From:    typeNumber,
		To:      typeText,
		Convert: func(d domain.NodeData) domain.NodeData { return d },
	}
	require.NoError(t, r.RegisterTypeConverter(tc))

	got, ok := r.TypeConverter(typeNumber, typeText)
	require.True(t, ok)
	assert.Equal(t, typeNumber, got.From)
	assert.Equal(t, typeText, got.To)

	_, ok = r.TypeConverter(typeText, typeNumber)
	assert.False(t, ok, "converters are directional")

	err := r.RegisterTypeConverter(tc)
	assert.ErrorIs(t, err, domain.ErrConverterExists)
}

func TestRegisterTypeConverterRejectsIdentity(t *testing.T) {
	r := New()
	err := r.RegisterTypeConverter(domain.TypeConverter{
		From:    typeNumber,
		To:      typeNumber,
		Convert: func(d domain.NodeData) domain.NodeData { return d },
	})
	assert.Error(t, err)
}

func TestRegisterSpec(t *testing.T) {
	r := New()
	spec := domain.ModelSpec{
		Name:     "Relay",
		Category: "Plumbing",
		Inputs:   []domain.PortSpec{{Name: "in", Type: typeNumber}},
		Outputs:  []domain.PortSpec{{Name: "out", Type: typeNumber, Policy: domain.PolicyMany}},
	}
	require.NoError(t, r.RegisterSpec(spec))

	model, err := r.Create("Relay")
	require.NoError(t, err)
	assert.Equal(t, 1, model.NumPorts(domain.PortInput))
	assert.Equal(t, 1, model.NumPorts(domain.PortOutput))
	assert.Equal(t, typeNumber, model.DataType(domain.PortOutput, 0))
	assert.Equal(t, domain.PolicyMany, model.OutConnectionPolicy(0))
	assert.Equal(t, "Plumbing", r.CategoryOf("Relay"))
}

func TestSpec(t *testing.T) {
	r := New()
	spec := domain.ModelSpec{
		Name:    "Relay",
		Inputs:  []domain.PortSpec{{Name: "in", Type: typeNumber}},
		Outputs: []domain.PortSpec{{Name: "out", Type: typeNumber, Policy: domain.PolicyMany}},
	}
	require.NoError(t, r.RegisterSpec(spec, WithCategory("Plumbing")))
	require.NoError(t, r.RegisterModel(func() ports.DataModel {
		return &probeModel{name: "Probe"}
	}))

	got, err := r.Spec("Relay")
	require.NoError(t, err)
	assert.Equal(t, "Plumbing", got.Category, "category reflects the registration, not the spec")
	assert.Equal(t, "in", got.Inputs[0].Name, "spec-built models keep their port names")
	assert.Equal(t, domain.PolicyMany, got.Outputs[0].Policy)

	probed, err := r.Spec("Probe")
	require.NoError(t, err)
	assert.Empty(t, probed.Inputs[0].Name, "probed models have no port names to report")
	assert.Equal(t, typeNumber, probed.Inputs[0].Type)
	assert.Equal(t, domain.PolicyOne, probed.Outputs[0].Policy)

	_, err = r.Spec("missing")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)

	specs := r.Specs()
	require.Len(t, specs, 2)
	assert.Equal(t, "Probe", specs[0].Name)
	assert.Equal(t, "Relay", specs[1].Name)
}

func TestRegisterSpecInvalid(t *testing.T) {
	r := New()
	err := r.RegisterSpec(domain.ModelSpec{Name: ""})
	assert.Error(t, err)

	err = r.RegisterSpec(domain.ModelSpec{
		Name:    "BadPolicy",
		Outputs: []domain.PortSpec{{Type: typeNumber, Policy: "sometimes"}},
	})
	assert.Error(t, err)
}

func TestSpecModelPassThrough(t *testing.T) {
	spec := domain.ModelSpec{
		Name:    "Relay",
		Inputs:  []domain.PortSpec{{Type: typeText}, {Type: typeNumber}},
		Outputs: []domain.PortSpec{{Type: typeNumber}},
	}
	m := newSpecModel(spec)

	assert.Nil(t, m.OutData(0), "no input yet")

	payload := testData{dt: typeNumber}
	m.SetInData(payload, 1)
	assert.Equal(t, payload, m.OutData(0), "number input feeds number output")

	m.SetInData(nil, 1)
	assert.Nil(t, m.OutData(0), "cleared input clears output")
}

type testData struct{ dt domain.DataType }

func (d testData) Type() domain.DataType { return d.dt }
