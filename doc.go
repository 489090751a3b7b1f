/*
Package espalier is a headless node-graph editor engine for building visual
dataflow tools, pipeline editors, and agent-driven graph construction.

It implements the connection-interaction core of a node editor, separating
the graph structure (Scene) from the processing logic (DataModels) and the
model inventory (Registry). Ports carry typed data; the engine validates
every wiring attempt and propagates data the moment an output reaches an
input.

# Concept

Espalier treats a node graph as a scene of typed ports. The engine manages
node placement, connection validation, type conversion, and data
propagation, while your application ("Host") supplies the models and the
surface: CLI, HTTP server, or AI agent infrastructure. This Hexagonal
Architecture allows Espalier to be embedded in any interface without
dragging a GUI along.

# Key Features

  - Validated Wiring: self-connections, occupied ports, and type mismatches
    are refused with typed sentinel errors that carry the reason.
  - Type Converters: registered converters let an output of one data type
    feed an input of another, recorded on the connection.
  - Declarative Models: node models can be registered from Go code or from
    catalog documents (Markdown front matter, YAML, JSON) read through Loam.
  - Scene Documents: the whole scene serializes to a value object and loads
    back with full validation, preserving node and connection identities.

# Usage

Initialize the editor with a registry, or point it at a catalog directory
with Open.

	package main

	import (
		"fmt"
		"log"

		"github.com/aretw0/espalier"
		"github.com/aretw0/espalier/pkg/domain"
		"github.com/aretw0/espalier/pkg/registry"
	)

	func main() {
		number := domain.DataType{ID: "number", Name: "Number"}

		reg := registry.New()
		err := reg.RegisterSpec(domain.ModelSpec{
			Name:    "number-source",
			Outputs: []domain.PortSpec{{Name: "value", Type: number}},
		})
		if err != nil {
			log.Fatal(err)
		}
		err = reg.RegisterSpec(domain.ModelSpec{
			Name:   "number-display",
			Inputs: []domain.PortSpec{{Name: "value", Type: number}},
		})
		if err != nil {
			log.Fatal(err)
		}

		editor := espalier.New(espalier.WithRegistry(reg))

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
		fmt.Println("wired:", conn.ID)
	}
*/
package espalier
