package validator

import (
	"strings"
	"testing"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/registry"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	number := domain.DataType{ID: "number", Name: "Number"}
	text := domain.DataType{ID: "text", Name: "Text"}
	specs := []domain.ModelSpec{
		{
			Name:    "source",
			Outputs: []domain.PortSpec{{Name: "out", Type: number, Policy: domain.PolicyMany}},
		},
		{
			Name:    "strict-source",
			Outputs: []domain.PortSpec{{Name: "out", Type: number}},
		},
		{
			Name:   "sink",
			Inputs: []domain.PortSpec{{Name: "in", Type: number}},
		},
		{
			Name:   "text-sink",
			Inputs: []domain.PortSpec{{Name: "in", Type: text}},
		},
	}
	for _, s := range specs {
		if err := reg.RegisterSpec(s); err != nil {
			t.Fatalf("RegisterSpec(%s): %v", s.Name, err)
		}
	}
	return reg
}

func TestValidateDocument(t *testing.T) {
	reg := testRegistry(t)

	// 1. Scenario A: Valid Document
	// src -> dst, matching types, ports in range
	valid := &domain.SceneDocument{
		Nodes: []domain.NodeRecord{
			{ID: "src", Model: "source"},
			{ID: "dst", Model: "sink"},
		},
		Connections: []domain.ConnectionRecord{
			{ID: "c1", OutNode: "src", OutPort: 0, InNode: "dst", InPort: 0},
		},
	}
	if err := ValidateDocument(reg, valid); err != nil {
		t.Errorf("Scenario A (Valid) failed: %v", err)
	}

	// An empty or absent document is also fine.
	if err := ValidateDocument(reg, nil); err != nil {
		t.Errorf("nil document should be valid, got: %v", err)
	}
	if err := ValidateDocument(reg, &domain.SceneDocument{}); err != nil {
		t.Errorf("empty document should be valid, got: %v", err)
	}

	// 2. Scenario B: Unknown Model
	unknown := &domain.SceneDocument{
		Nodes: []domain.NodeRecord{{ID: "n1", Model: "ghost-model"}},
	}
	err := ValidateDocument(reg, unknown)
	if err == nil {
		t.Error("Scenario B (Unknown Model) should have failed, but got nil")
	} else if !strings.Contains(err.Error(), "Unknown model 'ghost-model'") {
		t.Errorf("Expected 'Unknown model' error, got: %v", err)
	}

	// 3. Scenario C: Broken Link
	// A connection referencing a node the document does not declare.
	broken := &domain.SceneDocument{
		Nodes: []domain.NodeRecord{{ID: "src", Model: "source"}},
		Connections: []domain.ConnectionRecord{
			{ID: "c1", OutNode: "src", OutPort: 0, InNode: "ghost", InPort: 0},
		},
	}
	err = ValidateDocument(reg, broken)
	if err == nil {
		t.Error("Scenario C (Broken Link) should have failed, but got nil")
	} else if !strings.Contains(err.Error(), "missing node 'ghost'") {
		t.Errorf("Expected 'missing node' error, got: %v", err)
	}

	// 4. Scenario D: Port Out Of Range
	outOfRange := &domain.SceneDocument{
		Nodes: []domain.NodeRecord{
			{ID: "src", Model: "source"},
			{ID: "dst", Model: "sink"},
		},
		Connections: []domain.ConnectionRecord{
			{ID: "c1", OutNode: "src", OutPort: 3, InNode: "dst", InPort: 0},
		},
	}
	err = ValidateDocument(reg, outOfRange)
	if err == nil {
		t.Error("Scenario D (Out Of Range) should have failed, but got nil")
	} else if !strings.Contains(err.Error(), "output 3 out of range") {
		t.Errorf("Expected 'out of range' error, got: %v", err)
	}
}

func TestValidateDocumentOccupancy(t *testing.T) {
	reg := testRegistry(t)

	// 1. Scenario A: Double-Wired Input
	doubleIn := &domain.SceneDocument{
		Nodes: []domain.NodeRecord{
			{ID: "a", Model: "source"},
			{ID: "b", Model: "source"},
			{ID: "dst", Model: "sink"},
		},
		Connections: []domain.ConnectionRecord{
			{ID: "c1", OutNode: "a", OutPort: 0, InNode: "dst", InPort: 0},
			{ID: "c2", OutNode: "b", OutPort: 0, InNode: "dst", InPort: 0},
		},
	}
	err := ValidateDocument(reg, doubleIn)
	if err == nil {
		t.Error("Scenario A (Double-Wired Input) should have failed, but got nil")
	} else if !strings.Contains(err.Error(), "wired more than once") {
		t.Errorf("Expected 'wired more than once' error, got: %v", err)
	}

	// 2. Scenario B: Shared Output
	// A many-policy output fans out freely; a one-policy output does not.
	fanOut := &domain.SceneDocument{
		Nodes: []domain.NodeRecord{
			{ID: "src", Model: "source"},
			{ID: "d1", Model: "sink"},
			{ID: "d2", Model: "sink"},
		},
		Connections: []domain.ConnectionRecord{
			{ID: "c1", OutNode: "src", OutPort: 0, InNode: "d1", InPort: 0},
			{ID: "c2", OutNode: "src", OutPort: 0, InNode: "d2", InPort: 0},
		},
	}
	if err := ValidateDocument(reg, fanOut); err != nil {
		t.Errorf("Scenario B (many-policy fan-out) should be valid, got: %v", err)
	}

	strictFanOut := &domain.SceneDocument{
		Nodes: []domain.NodeRecord{
			{ID: "src", Model: "strict-source"},
			{ID: "d1", Model: "sink"},
			{ID: "d2", Model: "sink"},
		},
		Connections: []domain.ConnectionRecord{
			{ID: "c1", OutNode: "src", OutPort: 0, InNode: "d1", InPort: 0},
			{ID: "c2", OutNode: "src", OutPort: 0, InNode: "d2", InPort: 0},
		},
	}
	err = ValidateDocument(reg, strictFanOut)
	if err == nil {
		t.Error("Scenario B (one-policy fan-out) should have failed, but got nil")
	} else if !strings.Contains(err.Error(), "shared without a many policy") {
		t.Errorf("Expected 'shared without a many policy' error, got: %v", err)
	}
}

func TestValidateDocumentTypes(t *testing.T) {
	reg := testRegistry(t)

	mismatch := &domain.SceneDocument{
		Nodes: []domain.NodeRecord{
			{ID: "src", Model: "source"},
			{ID: "dst", Model: "text-sink"},
		},
		Connections: []domain.ConnectionRecord{
			{ID: "c1", OutNode: "src", OutPort: 0, InNode: "dst", InPort: 0},
		},
	}

	// 1. Without a converter the edge is a type error.
	err := ValidateDocument(reg, mismatch)
	if err == nil {
		t.Error("type mismatch should have failed, but got nil")
	} else if !strings.Contains(err.Error(), "no converter from 'number' to 'text'") {
		t.Errorf("Expected 'no converter' error, got: %v", err)
	}

	// 2. Registering number->text makes the same document valid.
	converter := domain.TypeConverter{
		From: domain.DataType{ID: "number", Name: "Number"},
		To:   domain.DataType{ID: "text", Name: "Text"},
		Convert: func(d domain.NodeData) domain.NodeData {
			return d
		},
	}
	if err := reg.RegisterTypeConverter(converter); err != nil {
		t.Fatalf("RegisterTypeConverter: %v", err)
	}
	if err := ValidateDocument(reg, mismatch); err != nil {
		t.Errorf("converter-backed edge should be valid, got: %v", err)
	}
}

func TestValidateDocumentCollectsAll(t *testing.T) {
	reg := testRegistry(t)

	// One document, several independent defects. The report should list all
	// of them, not stop at the first.
	messy := &domain.SceneDocument{
		Nodes: []domain.NodeRecord{
			{ID: "src", Model: "source"},
			{ID: "src", Model: "source"},
			{ID: "dst", Model: "ghost-model"},
		},
		Connections: []domain.ConnectionRecord{
			{ID: "c1", OutNode: "src", OutPort: 0, InNode: "nowhere", InPort: 0},
			{ID: "c2", OutNode: "src", OutPort: 0, InNode: "src", InPort: 0},
		},
	}

	err := ValidateDocument(reg, messy)
	if err == nil {
		t.Fatal("messy document should have failed, but got nil")
	}
	for _, want := range []string{
		"Duplicate node id: 'src'",
		"Unknown model 'ghost-model'",
		"missing node 'nowhere'",
		"wires node 'src' to itself",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("report missing %q, got:\n%v", want, err)
		}
	}
	if !strings.HasPrefix(err.Error(), "found ") {
		t.Errorf("report should open with a problem count, got: %v", err)
	}
}
