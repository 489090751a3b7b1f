package espalier_test

import (
	"fmt"
	"log"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/registry"
)

// ExampleNew demonstrates how to use the Editor with models registered from
// Go code. This is useful for testing, embedded scenarios, or when you don't
// want to rely on the file system.
func ExampleNew() {
	number := domain.DataType{ID: "number", Name: "Number"}

	// 1. Declare your models as specs for clean, declarative construction.
	reg := registry.New()
	err := reg.RegisterSpec(domain.ModelSpec{
		Name:     "number-source",
		Category: "Sources",
		Outputs: []domain.PortSpec{
			{Name: "value", Type: number, Policy: domain.PolicyMany},
		},
	})
	if err != nil {
		log.Fatal(err)
	}
	err = reg.RegisterSpec(domain.ModelSpec{
		Name:     "number-display",
		Category: "Displays",
		Inputs: []domain.PortSpec{
			{Name: "value", Type: number},
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	// 2. Initialize the Editor with the custom registry
	editor := espalier.New(espalier.WithRegistry(reg))

	// 3. Place two nodes and wire them
	src, err := editor.CreateNode("number-source", domain.Point{X: 0, Y: 0})
	if err != nil {
		log.Fatal(err)
	}
	dst, err := editor.CreateNode("number-display", domain.Point{X: 240, Y: 0})
	if err != nil {
		log.Fatal(err)
	}

	conn, err := editor.Connect(src.ID, 0, dst.ID, 0)
	if err != nil {
		log.Fatal(err)
	}

	doc := editor.Document()
	fmt.Printf("nodes: %d\n", len(doc.Nodes))
	fmt.Printf("connections: %d\n", len(doc.Connections))
	fmt.Println("wired:", conn.OutNode == src.ID && conn.InNode == dst.ID)
	// Output:
	// nodes: 2
	// connections: 1
	// wired: true
}
