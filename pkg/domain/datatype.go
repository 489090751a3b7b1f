package domain

// DataType identifies what kind of data a port produces or accepts.
// Two types are the same when their IDs are equal; Name is display-only.
type DataType struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Matches reports whether both types share the same identifier.
func (t DataType) Matches(other DataType) bool {
	return t.ID == other.ID
}

// NodeData is a unit of data flowing through a connection. A nil NodeData
// means "no data" and is what disconnecting propagates downstream.
type NodeData interface {
	Type() DataType
}

// ConvertFunc transforms data of one type into another.
type ConvertFunc func(NodeData) NodeData

// TypeConverter couples a (From, To) type pair with its transformation.
// The zero value is the identity converter: it converts nothing and is what
// a connection between equal types carries implicitly.
type TypeConverter struct {
	From    DataType
	To      DataType
	Convert ConvertFunc
}

// Identity reports whether the converter performs no transformation.
func (c TypeConverter) Identity() bool {
	return c.Convert == nil
}

// Apply runs the conversion. Identity converters and nil data pass through
// untouched.
func (c TypeConverter) Apply(data NodeData) NodeData {
	if c.Identity() || data == nil {
		return data
	}
	return c.Convert(data)
}
