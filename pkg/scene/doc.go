/*
Package scene owns the live object graph of the editor: nodes wrapping data
models, connections binding ports together, and the bookkeeping that keeps
both sides in agreement.

Key Types:
  - Scene: the owning container. Creates and removes nodes, wires and
    deletes connections, fires lifecycle hooks, and round-trips the whole
    graph through domain.SceneDocument.
  - Node: a data model placed in the scene, with identity, geometry and
    per-port connection state.
  - Connection: two logical ends, each bound to a (node, port) pair or
    dangling, plus an optional type converter riding on the wire.
  - NodeState: the per-node registry of which connections occupy which
    ports.

A Scene and everything it owns is single-goroutine: operations run to
completion on the caller's goroutine and are not safe for concurrent use.
Share scenes between goroutines with external coordination, or keep one
scene per goroutine.
*/
package scene
