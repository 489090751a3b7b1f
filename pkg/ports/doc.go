/*
Package ports defines the driven ports (interfaces) for the espalier engine.

These interfaces decouple the connection engine from external implementations,
allowing the same validation and wiring rules to run against any node model,
geometry, catalog source or storage backend.

# Key Interfaces

  - DataModel: the behavior a node contributes (port counts, types, policies, data).
  - NodeGeometry / ConnectionGeometry: placement and hit-testing collaborators.
  - ConverterResolver: looks up registered type converters.
  - SceneStore: persists scene documents.
  - CatalogSource: supplies declarative model specs (e.g. from Loam or memory).
  - SceneLocker: distributed edit locks for shared scene stores.
*/
package ports
