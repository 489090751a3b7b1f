package ports

import "github.com/aretw0/espalier/pkg/domain"

// ConverterResolver looks up a registered transformation between two data
// types. The boolean follows the comma-ok convention: false means no
// converter is known for the pair.
//
// The engine receives this capability explicitly at construction; there is
// no ambient registry.
type ConverterResolver interface {
	TypeConverter(from, to domain.DataType) (domain.TypeConverter, bool)
}

// ConverterResolverFunc adapts a function to the ConverterResolver interface.
type ConverterResolverFunc func(from, to domain.DataType) (domain.TypeConverter, bool)

// TypeConverter calls f.
func (f ConverterResolverFunc) TypeConverter(from, to domain.DataType) (domain.TypeConverter, bool) {
	return f(from, to)
}
