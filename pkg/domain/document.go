package domain

// SceneDocument is the serializable snapshot of a scene: which nodes exist,
// where they sit, and how they are wired. It is a value object; the byte
// encoding belongs to whichever store persists it.
type SceneDocument struct {
	Nodes       []NodeRecord       `json:"nodes"`
	Connections []ConnectionRecord `json:"connections"`
}

// NodeRecord captures one node: its identity, the registered model name used
// to rebuild it, and its placement.
type NodeRecord struct {
	ID       NodeID `json:"id"`
	Model    string `json:"model"`
	Position Point  `json:"position"`
}

// ConnectionRecord captures one complete connection between two ports.
type ConnectionRecord struct {
	ID        ConnectionID     `json:"id"`
	OutNode   NodeID           `json:"out_id"`
	OutPort   PortIndex        `json:"out_index"`
	InNode    NodeID           `json:"in_id"`
	InPort    PortIndex        `json:"in_index"`
	Converter *ConverterRecord `json:"converter,omitempty"`
}

// ConverterRecord names the type pair of a converter riding on a connection.
// The converter function itself is re-resolved from the registry on load.
type ConverterRecord struct {
	From DataType `json:"from"`
	To   DataType `json:"to"`
}

// Clone returns a deep copy. Stores hand out clones so callers cannot mutate
// persisted state through a shared pointer.
func (d *SceneDocument) Clone() *SceneDocument {
	if d == nil {
		return nil
	}
	out := &SceneDocument{
		Nodes:       make([]NodeRecord, len(d.Nodes)),
		Connections: make([]ConnectionRecord, len(d.Connections)),
	}
	copy(out.Nodes, d.Nodes)
	for i, c := range d.Connections {
		if c.Converter != nil {
			conv := *c.Converter
			c.Converter = &conv
		}
		out.Connections[i] = c
	}
	return out
}
