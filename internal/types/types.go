package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindNothing
	KindAny
	KindBool
	KindInt
	KindString
	KindNominal
	KindTypeParam
	KindFn
	KindNullable
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "unit"
	case KindNothing:
		return "nothing"
	case KindAny:
		return "any"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindNominal:
		return "nominal"
	case KindTypeParam:
		return "type-param"
	case KindFn:
		return "fn"
	case KindNullable:
		return "nullable"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a compact descriptor. Payload indexes kind-specific side tables
// (nominal info, type parameter names, function info); Elem is the wrapped
// type of a nullable.
type Type struct {
	Kind    Kind
	Elem    TypeID
	Payload uint32
}

// MakeNullable describes T?.
func MakeNullable(elem TypeID) Type {
	return Type{Kind: KindNullable, Elem: elem}
}
