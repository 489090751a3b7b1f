package domain

// NodeEvent describes a node being added to or removed from a scene.
type NodeEvent struct {
	ID    NodeID `json:"id"`
	Model string `json:"model"`
}

// ConnectionEvent describes a connection reaching or leaving the complete
// state. Converted is true when a non-identity converter rides on the wire.
type ConnectionEvent struct {
	ID        ConnectionID `json:"id"`
	OutNode   NodeID       `json:"out_id"`
	OutPort   PortIndex    `json:"out_index"`
	InNode    NodeID       `json:"in_id"`
	InPort    PortIndex    `json:"in_index"`
	Converted bool         `json:"converted,omitempty"`
}

// DetachEvent describes one end of a connection coming loose. The embedder
// typically resumes pointer tracking for the dangling end on this signal.
type DetachEvent struct {
	ID        ConnectionID  `json:"id"`
	Direction PortDirection `json:"direction"`
	Node      NodeID        `json:"node_id"`
	Port      PortIndex     `json:"port_index"`
}

// LifecycleHooks defines callbacks for scene observability. Any field may be
// nil; hooks run synchronously on the mutating goroutine and must not call
// back into the scene.
type LifecycleHooks struct {
	OnNodeCreated        func(NodeEvent)
	OnNodeRemoved        func(NodeEvent)
	OnConnectionCreated  func(ConnectionEvent)
	OnConnectionDeleted  func(ConnectionEvent)
	OnConnectionDetached func(DetachEvent)
	// OnConnectionRejected fires when an interactive attach attempt is
	// refused; err matches ErrNotConnectable.
	OnConnectionRejected func(err error)
}

// CombineHooks fans each event out to every hook set, in order. Use it when
// more than one consumer wants lifecycle events, say metrics plus an event
// stream.
func CombineHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeCreated: func(e NodeEvent) {
			for _, h := range hooks {
				if h.OnNodeCreated != nil {
					h.OnNodeCreated(e)
				}
			}
		},
		OnNodeRemoved: func(e NodeEvent) {
			for _, h := range hooks {
				if h.OnNodeRemoved != nil {
					h.OnNodeRemoved(e)
				}
			}
		},
		OnConnectionCreated: func(e ConnectionEvent) {
			for _, h := range hooks {
				if h.OnConnectionCreated != nil {
					h.OnConnectionCreated(e)
				}
			}
		},
		OnConnectionDeleted: func(e ConnectionEvent) {
			for _, h := range hooks {
				if h.OnConnectionDeleted != nil {
					h.OnConnectionDeleted(e)
				}
			}
		},
		OnConnectionDetached: func(e DetachEvent) {
			for _, h := range hooks {
				if h.OnConnectionDetached != nil {
					h.OnConnectionDetached(e)
				}
			}
		},
		OnConnectionRejected: func(err error) {
			for _, h := range hooks {
				if h.OnConnectionRejected != nil {
					h.OnConnectionRejected(err)
				}
			}
		},
	}
}
