package domain

// NodeID uniquely identifies a node within a scene.
type NodeID string

// ConnectionID uniquely identifies a connection within a scene.
type ConnectionID string
