package scene_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/registry"
	"github.com/aretw0/espalier/pkg/scene"
)

var (
	numberType = domain.DataType{ID: "number", Name: "Number"}
	textType   = domain.DataType{ID: "text", Name: "Text"}
)

// payload is the test currency flowing between fixture models.
type payload struct {
	dt    domain.DataType
	value string
}

func (p payload) Type() domain.DataType { return p.dt }

type capture struct {
	index domain.PortIndex
	data  domain.NodeData
}

// fixtureModel declares ports from slices and records everything delivered
// to it.
type fixtureModel struct {
	ports.BaseModel
	name    string
	inputs  []domain.DataType
	outputs []domain.DataType

	manyOut  map[domain.PortIndex]bool
	produce  map[domain.PortIndex]domain.NodeData
	received []capture
	updated  []domain.PortIndex
}

func newFixture(name string, inputs, outputs []domain.DataType) *fixtureModel {
	return &fixtureModel{
		name:    name,
		inputs:  inputs,
		outputs: outputs,
		manyOut: make(map[domain.PortIndex]bool),
		produce: make(map[domain.PortIndex]domain.NodeData),
	}
}

func (m *fixtureModel) Name() string { return m.name }

func (m *fixtureModel) NumPorts(d domain.PortDirection) int {
	if d == domain.PortInput {
		return len(m.inputs)
	}
	return len(m.outputs)
}

func (m *fixtureModel) DataType(d domain.PortDirection, index domain.PortIndex) domain.DataType {
	if d == domain.PortInput {
		return m.inputs[index]
	}
	return m.outputs[index]
}

func (m *fixtureModel) OutConnectionPolicy(index domain.PortIndex) domain.ConnectionPolicy {
	if m.manyOut[index] {
		return domain.PolicyMany
	}
	return domain.PolicyOne
}

func (m *fixtureModel) OutData(index domain.PortIndex) domain.NodeData { return m.produce[index] }

func (m *fixtureModel) SetInData(data domain.NodeData, index domain.PortIndex) {
	m.received = append(m.received, capture{index: index, data: data})
}

func (m *fixtureModel) OnDataUpdated(index domain.PortIndex) {
	m.updated = append(m.updated, index)
}

func (m *fixtureModel) lastReceived(t *testing.T) capture {
	t.Helper()
	require.NotEmpty(t, m.received, "model %s received no data", m.name)
	return m.received[len(m.received)-1]
}

func numberToText() domain.TypeConverter {
	return domain.TypeConverter{
		From: numberType,
		To:   textType,
		Convert: func(data domain.NodeData) domain.NodeData {
			p := data.(payload)
			return payload{dt: textType, value: "text:" + p.value}
		},
	}
}

func TestCreateNode(t *testing.T) {
	s := scene.New(registry.New())

	a := s.CreateNode(newFixture("source", nil, []domain.DataType{numberType}))
	b := s.CreateNode(newFixture("sink", []domain.DataType{numberType}, nil))

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Len(t, s.Nodes(), 2)

	got, err := s.Node(a.ID())
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = s.Node("missing")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestCreateNodeNamed(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.RegisterModel(func() ports.DataModel {
		return newFixture("source", nil, []domain.DataType{numberType})
	}))
	s := scene.New(reg)

	node, err := s.CreateNodeNamed("source")
	require.NoError(t, err)
	assert.Equal(t, "source", node.Model().Name())

	_, err = s.CreateNodeNamed("ghost")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
}

func TestStartConnection(t *testing.T) {
	s := scene.New(registry.New())
	node := s.CreateNode(newFixture("source", nil, []domain.DataType{numberType}))

	c, err := s.StartConnection(node, domain.PortOutput, 0)
	require.NoError(t, err)

	assert.False(t, c.Complete())
	assert.Equal(t, domain.PortInput, c.RequiredPort())
	assert.Same(t, node, c.Node(domain.PortOutput))
	assert.Equal(t, domain.PortIndex(0), c.PortIndex(domain.PortOutput))
	assert.Nil(t, c.Node(domain.PortInput))
	assert.Equal(t, domain.InvalidPort, c.PortIndex(domain.PortInput))

	require.Len(t, node.State().Connections(domain.PortOutput, 0), 1)
	assert.Len(t, s.Connections(), 1)

	port := node.Geometry().PortScenePosition(domain.PortOutput, 0)
	assert.Equal(t, port, c.Geometry().EndPoint(domain.PortOutput))
	assert.Equal(t, port, c.Geometry().EndPoint(domain.PortInput), "dangling end starts at the grab point")
}

func TestStartConnectionRefusals(t *testing.T) {
	s := scene.New(registry.New())
	src := newFixture("source", nil, []domain.DataType{numberType, numberType})
	src.manyOut[1] = true
	node := s.CreateNode(src)
	sink := s.CreateNode(newFixture("sink", []domain.DataType{numberType}, nil))

	_, err := s.StartConnection(node, domain.PortOutput, 5)
	assert.ErrorIs(t, err, domain.ErrPortOutOfRange)

	t.Run("Occupied Single Output", func(t *testing.T) {
		_, err := s.StartConnection(node, domain.PortOutput, 0)
		require.NoError(t, err)
		_, err = s.StartConnection(node, domain.PortOutput, 0)
		assert.ErrorIs(t, err, domain.ErrPortNotEmpty)
		assert.ErrorIs(t, err, domain.ErrNotConnectable)
	})

	t.Run("Many Output Reused", func(t *testing.T) {
		_, err := s.StartConnection(node, domain.PortOutput, 1)
		require.NoError(t, err)
		_, err = s.StartConnection(node, domain.PortOutput, 1)
		assert.NoError(t, err)
	})

	t.Run("Occupied Input", func(t *testing.T) {
		_, err := s.StartConnection(sink, domain.PortInput, 0)
		require.NoError(t, err)
		_, err = s.StartConnection(sink, domain.PortInput, 0)
		assert.ErrorIs(t, err, domain.ErrPortNotEmpty)
	})

	t.Run("Foreign Node", func(t *testing.T) {
		other := scene.New(registry.New())
		stray := other.CreateNode(newFixture("stray", nil, []domain.DataType{numberType}))
		_, err := s.StartConnection(stray, domain.PortOutput, 0)
		assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	})

	t.Run("Invalid Direction", func(t *testing.T) {
		require.Panics(t, func() { _, _ = s.StartConnection(node, domain.PortNone, 0) })
	})
}

func TestCreateConnection(t *testing.T) {
	s := scene.New(registry.New())
	src := newFixture("source", nil, []domain.DataType{numberType})
	src.produce[0] = payload{dt: numberType, value: "42"}
	snk := newFixture("sink", []domain.DataType{numberType}, nil)
	out := s.CreateNode(src)
	in := s.CreateNode(snk)

	c, err := s.CreateConnection(out, 0, in, 0)
	require.NoError(t, err)

	assert.True(t, c.Complete())
	assert.Equal(t, domain.PortNone, c.RequiredPort())
	assert.True(t, c.Converter().Identity())
	assert.Len(t, out.State().Connections(domain.PortOutput, 0), 1)
	assert.Len(t, in.State().Connections(domain.PortInput, 0), 1)

	got := snk.lastReceived(t)
	assert.Equal(t, domain.PortIndex(0), got.index)
	assert.Equal(t, payload{dt: numberType, value: "42"}, got.data, "output data flows on creation")
	assert.Equal(t, []domain.PortIndex{0}, src.updated, "source model hears about its new consumer")

	inPort := in.Geometry().PortScenePosition(domain.PortInput, 0)
	assert.Equal(t, inPort, c.Geometry().EndPoint(domain.PortInput), "endpoint snaps onto the port")
}

func TestCreateConnectionConverter(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.RegisterTypeConverter(numberToText()))
	s := scene.New(reg)

	src := newFixture("source", nil, []domain.DataType{numberType})
	src.produce[0] = payload{dt: numberType, value: "7"}
	snk := newFixture("sink", []domain.DataType{textType}, nil)
	out := s.CreateNode(src)
	in := s.CreateNode(snk)

	c, err := s.CreateConnection(out, 0, in, 0)
	require.NoError(t, err)

	assert.False(t, c.Converter().Identity())
	got := snk.lastReceived(t)
	assert.Equal(t, payload{dt: textType, value: "text:7"}, got.data, "converter rides the wire")
}

func TestCreateConnectionRefusals(t *testing.T) {
	s := scene.New(registry.New())
	src := newFixture("source", nil, []domain.DataType{numberType, numberType})
	src.manyOut[1] = true
	loop := newFixture("loop", []domain.DataType{numberType}, []domain.DataType{numberType})
	out := s.CreateNode(src)
	both := s.CreateNode(loop)
	text := s.CreateNode(newFixture("text-sink", []domain.DataType{textType}, nil))

	t.Run("Self Connection", func(t *testing.T) {
		_, err := s.CreateConnection(both, 0, both, 0)
		assert.ErrorIs(t, err, domain.ErrSelfConnection)
		assert.ErrorIs(t, err, domain.ErrNotConnectable)
	})

	t.Run("No Converter", func(t *testing.T) {
		_, err := s.CreateConnection(out, 0, text, 0)
		assert.ErrorIs(t, err, domain.ErrNoConverter)
	})

	t.Run("Out Of Range", func(t *testing.T) {
		_, err := s.CreateConnection(out, 9, both, 0)
		assert.ErrorIs(t, err, domain.ErrPortOutOfRange)
		assert.NotErrorIs(t, err, domain.ErrNotConnectable, "misuse is not a refusal")

		_, err = s.CreateConnection(out, 0, both, 9)
		assert.ErrorIs(t, err, domain.ErrPortOutOfRange)
	})

	t.Run("Occupied", func(t *testing.T) {
		_, err := s.CreateConnection(out, 0, both, 0)
		require.NoError(t, err)

		_, err = s.CreateConnection(out, 0, both, 0)
		assert.ErrorIs(t, err, domain.ErrPortNotEmpty)
	})

	t.Run("Many Output Fans Out", func(t *testing.T) {
		sinkA := s.CreateNode(newFixture("sink-a", []domain.DataType{numberType}, nil))
		sinkB := s.CreateNode(newFixture("sink-b", []domain.DataType{numberType}, nil))

		_, err := s.CreateConnection(out, 1, sinkA, 0)
		require.NoError(t, err)
		_, err = s.CreateConnection(out, 1, sinkB, 0)
		assert.NoError(t, err, "many policy allows fan-out")
	})

	t.Run("Foreign Node", func(t *testing.T) {
		other := scene.New(registry.New())
		stray := other.CreateNode(newFixture("stray", []domain.DataType{numberType}, nil))
		_, err := s.CreateConnection(out, 0, stray, 0)
		assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	})
}

func TestDeleteConnection(t *testing.T) {
	s := scene.New(registry.New())
	src := newFixture("source", nil, []domain.DataType{numberType})
	src.produce[0] = payload{dt: numberType, value: "1"}
	snk := newFixture("sink", []domain.DataType{numberType}, nil)
	out := s.CreateNode(src)
	in := s.CreateNode(snk)

	c, err := s.CreateConnection(out, 0, in, 0)
	require.NoError(t, err)

	require.NoError(t, s.DeleteConnection(c))

	assert.Empty(t, out.State().Connections(domain.PortOutput, 0))
	assert.Empty(t, in.State().Connections(domain.PortInput, 0))
	assert.Nil(t, snk.lastReceived(t).data, "input side learns its source went away")
	_, err = s.Connection(c.ID())
	assert.ErrorIs(t, err, domain.ErrConnectionNotFound)

	assert.ErrorIs(t, s.DeleteConnection(c), domain.ErrConnectionNotFound)
	assert.ErrorIs(t, s.DeleteConnection(nil), domain.ErrConnectionNotFound)
}

func TestRemoveNode(t *testing.T) {
	s := scene.New(registry.New())
	src := newFixture("source", nil, []domain.DataType{numberType})
	snk := newFixture("sink", []domain.DataType{numberType}, nil)
	out := s.CreateNode(src)
	in := s.CreateNode(snk)

	_, err := s.CreateConnection(out, 0, in, 0)
	require.NoError(t, err)

	require.NoError(t, s.RemoveNode(out.ID()))

	assert.Len(t, s.Nodes(), 1)
	assert.Empty(t, s.Connections(), "connections go with the node")
	assert.Empty(t, in.State().Connections(domain.PortInput, 0))
	assert.Nil(t, snk.lastReceived(t).data)

	assert.ErrorIs(t, s.RemoveNode(out.ID()), domain.ErrNodeNotFound)
}

func TestClear(t *testing.T) {
	s := scene.New(registry.New())
	out := s.CreateNode(newFixture("source", nil, []domain.DataType{numberType}))
	in := s.CreateNode(newFixture("sink", []domain.DataType{numberType}, nil))
	_, err := s.CreateConnection(out, 0, in, 0)
	require.NoError(t, err)

	s.Clear()

	assert.Empty(t, s.Nodes())
	assert.Empty(t, s.Connections())
}

func TestLifecycleHooks(t *testing.T) {
	var created, removed []domain.NodeEvent
	var wired, deleted []domain.ConnectionEvent
	var rejected []error
	hooks := domain.LifecycleHooks{
		OnNodeCreated:        func(ev domain.NodeEvent) { created = append(created, ev) },
		OnNodeRemoved:        func(ev domain.NodeEvent) { removed = append(removed, ev) },
		OnConnectionCreated:  func(ev domain.ConnectionEvent) { wired = append(wired, ev) },
		OnConnectionDeleted:  func(ev domain.ConnectionEvent) { deleted = append(deleted, ev) },
		OnConnectionRejected: func(err error) { rejected = append(rejected, err) },
	}

	reg := registry.New()
	require.NoError(t, reg.RegisterTypeConverter(numberToText()))
	s := scene.New(reg, scene.WithHooks(hooks))

	out := s.CreateNode(newFixture("source", nil, []domain.DataType{numberType}))
	in := s.CreateNode(newFixture("sink", []domain.DataType{textType}, nil))
	require.Len(t, created, 2)
	assert.Equal(t, "source", created[0].Model)

	c, err := s.CreateConnection(out, 0, in, 0)
	require.NoError(t, err)
	require.Len(t, wired, 1)
	assert.Equal(t, c.ID(), wired[0].ID)
	assert.Equal(t, out.ID(), wired[0].OutNode)
	assert.Equal(t, in.ID(), wired[0].InNode)
	assert.True(t, wired[0].Converted)

	_, err = s.CreateConnection(out, 0, in, 0)
	require.ErrorIs(t, err, domain.ErrPortNotEmpty)
	require.Len(t, rejected, 1)
	assert.ErrorIs(t, rejected[0], domain.ErrNotConnectable)

	require.NoError(t, s.DeleteConnection(c))
	require.Len(t, deleted, 1)
	assert.Equal(t, c.ID(), deleted[0].ID)

	require.NoError(t, s.RemoveNode(out.ID()))
	require.Len(t, removed, 1)
	assert.Equal(t, out.ID(), removed[0].ID)
}
