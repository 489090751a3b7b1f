/*
Package domain contains the core domain models for the espalier engine.

It defines the vocabulary of a node-graph editor: directional ports, data
types, type converters, connection policies, scene documents and lifecycle
events. This package is kept pure and free of external dependencies like I/O
or persistence, following Hexagonal Architecture principles.

# Key Entities

  - PortDirection / PortIndex: addresses a port on a node by direction and slot.
  - DataType: the identifier ports and connections are typed with.
  - TypeConverter: a registered transformation between two data types.
  - SceneDocument: the serializable snapshot of a scene's nodes and wires.
  - LifecycleHooks: observer callbacks fired on scene mutations.
*/
package domain
