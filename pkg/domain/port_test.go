package domain

import (
	"errors"
	"testing"
)

func TestPortDirectionOpposite(t *testing.T) {
	cases := []struct {
		in   PortDirection
		want PortDirection
	}{
		{PortInput, PortOutput},
		{PortOutput, PortInput},
		{PortNone, PortNone},
		{PortDirection("sideways"), PortNone},
	}
	for _, tc := range cases {
		if got := tc.in.Opposite(); got != tc.want {
			t.Errorf("Opposite(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPortDirectionValid(t *testing.T) {
	if !PortInput.Valid() || !PortOutput.Valid() {
		t.Error("real directions must be valid")
	}
	if PortNone.Valid() {
		t.Error("PortNone must not be valid")
	}
	if PortDirection("diagonal").Valid() {
		t.Error("junk direction must not be valid")
	}
}

func TestPortDirectionString(t *testing.T) {
	if got := PortNone.String(); got != "none" {
		t.Errorf("PortNone.String() = %q", got)
	}
	if got := PortInput.String(); got != "input" {
		t.Errorf("PortInput.String() = %q", got)
	}
}

func TestPortIndexValid(t *testing.T) {
	if InvalidPort.Valid() {
		t.Error("InvalidPort must not be valid")
	}
	if !PortIndex(0).Valid() {
		t.Error("index 0 must be valid")
	}
}

func TestConnectionFailureSentinels(t *testing.T) {
	sentinels := []error{
		ErrRequiresPort,
		ErrSelfConnection,
		ErrConnectionPoint,
		ErrPortNotEmpty,
		ErrNoConverter,
	}
	for _, s := range sentinels {
		if !errors.Is(s, ErrNotConnectable) {
			t.Errorf("%v must match ErrNotConnectable", s)
		}
	}
	if errors.Is(ErrSceneNotFound, ErrNotConnectable) {
		t.Error("store sentinel must not match the connection category")
	}
	if errors.Is(ErrPortNotEmpty, ErrSelfConnection) {
		t.Error("distinct failure kinds must not match each other")
	}
}

func TestRejectionCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{ErrRequiresPort, "requires_port"},
		{ErrSelfConnection, "self_connection"},
		{ErrConnectionPoint, "connection_point"},
		{ErrPortNotEmpty, "port_not_empty"},
		{ErrNoConverter, "no_converter"},
		{errors.New("surprise"), "other"},
	}
	for _, tc := range cases {
		if got := RejectionCode(tc.err); got != tc.want {
			t.Errorf("RejectionCode(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestTypeConverterIdentity(t *testing.T) {
	var id TypeConverter
	if !id.Identity() {
		t.Error("zero converter must be identity")
	}
	if got := id.Apply(nil); got != nil {
		t.Errorf("identity on nil = %v", got)
	}

	integer := DataType{ID: "int", Name: "Integer"}
	text := DataType{ID: "string", Name: "Text"}
	conv := TypeConverter{
		From: integer,
		To:   text,
		Convert: func(d NodeData) NodeData {
			if d == nil {
				return nil
			}
			return stubData{t: text}
		},
	}
	if conv.Identity() {
		t.Error("converter with a func must not be identity")
	}
	if got := conv.Apply(nil); got != nil {
		t.Error("nil data must pass through without conversion")
	}
	if got := conv.Apply(stubData{t: integer}); got.Type() != text {
		t.Errorf("converted type = %v, want %v", got.Type(), text)
	}
}

type stubData struct{ t DataType }

func (s stubData) Type() DataType { return s.t }

func TestSceneDocumentClone(t *testing.T) {
	conv := &ConverterRecord{From: DataType{ID: "a"}, To: DataType{ID: "b"}}
	doc := &SceneDocument{
		Nodes:       []NodeRecord{{ID: "n1", Model: "m"}},
		Connections: []ConnectionRecord{{ID: "c1", Converter: conv}},
	}
	clone := doc.Clone()
	clone.Nodes[0].Model = "changed"
	clone.Connections[0].Converter.From.ID = "changed"
	if doc.Nodes[0].Model != "m" {
		t.Error("clone shares node slice")
	}
	if doc.Connections[0].Converter.From.ID != "a" {
		t.Error("clone shares converter pointer")
	}
}
