package dsl

import (
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/registry"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	number := domain.DataType{ID: "number", Name: "Number"}
	reg := registry.New()

	specs := []domain.ModelSpec{
		{
			Name: "source",
			Outputs: []domain.PortSpec{
				{Name: "value", Type: number, Policy: domain.PolicyMany},
			},
		},
		{
			Name: "adder",
			Inputs: []domain.PortSpec{
				{Name: "a", Type: number},
				{Name: "b", Type: number},
			},
			Outputs: []domain.PortSpec{
				{Name: "sum", Type: number},
			},
		},
		{
			Name: "display",
			Inputs: []domain.PortSpec{
				{Name: "value", Type: number},
			},
		},
	}
	for _, spec := range specs {
		if err := reg.RegisterSpec(spec); err != nil {
			t.Fatalf("RegisterSpec(%s) failed: %v", spec.Name, err)
		}
	}
	return reg
}

func TestBuilder_SimpleGraph(t *testing.T) {
	b := New(testRegistry(t))

	b.Node("src", "source").At(40, 80)
	b.Node("sum", "adder").At(240, 80)
	b.Node("out", "display").At(440, 80)
	b.Connect("src", 0, "sum", 0).
		Connect("src", 0, "sum", 1).
		Connect("sum", 0, "out", 0)

	sc, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if got := len(sc.Nodes()); got != 3 {
		t.Fatalf("Expected 3 nodes, got %d", got)
	}
	if got := len(sc.Connections()); got != 3 {
		t.Fatalf("Expected 3 connections, got %d", got)
	}

	// Positions from At land on the scene nodes
	byModel := make(map[string]domain.Point)
	for _, n := range sc.Nodes() {
		byModel[n.Model().Name()] = n.Position()
	}
	if byModel["source"] != (domain.Point{X: 40, Y: 80}) {
		t.Errorf("Expected source at (40,80), got %+v", byModel["source"])
	}
	if byModel["adder"] != (domain.Point{X: 240, Y: 80}) {
		t.Errorf("Expected adder at (240,80), got %+v", byModel["adder"])
	}
}

func TestBuilder_ChainedConnect(t *testing.T) {
	b := New(testRegistry(t))

	b.Node("out", "display")
	b.Node("src", "source").Connect(0, "out", 0)

	sc, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if got := len(sc.Connections()); got != 1 {
		t.Errorf("Expected 1 connection, got %d", got)
	}
}

func TestBuilder_CollectsDeclarationErrors(t *testing.T) {
	b := New(testRegistry(t))

	b.Node("src", "source")
	b.Node("src", "display") // duplicate alias
	b.Connect("src", 0, "ghost", 0)

	_, err := b.Build()
	if err == nil {
		t.Fatal("Expected Build() to fail")
	}

	msg := err.Error()
	if !strings.Contains(msg, "declared twice") {
		t.Errorf("Expected duplicate alias error, got: %v", err)
	}
	if !strings.Contains(msg, `unknown node alias "ghost"`) {
		t.Errorf("Expected unknown alias error, got: %v", err)
	}
}

func TestBuilder_CollectsBuildErrors(t *testing.T) {
	b := New(testRegistry(t))

	b.Node("mystery", "unregistered-model")
	b.Node("out", "display")
	b.Node("src", "source").Connect(0, "out", 0)
	b.Connect("src", 0, "out", 0) // input already taken by the line above

	_, err := b.Build()
	if err == nil {
		t.Fatal("Expected Build() to fail")
	}

	if !errors.Is(err, domain.ErrModelNotFound) {
		t.Errorf("Expected model-not-found through the joined error, got: %v", err)
	}
	if !errors.Is(err, domain.ErrNotConnectable) {
		t.Errorf("Expected connection refusal through the joined error, got: %v", err)
	}
	if !strings.Contains(err.Error(), `node "mystery"`) {
		t.Errorf("Expected alias context on the model error, got: %v", err)
	}
}
