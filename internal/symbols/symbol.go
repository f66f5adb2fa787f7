package symbols

import (
	"callmodel/internal/source"
	"callmodel/internal/types"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolClass
	SymbolFunction
	SymbolConstructor
	SymbolLocalVar
	SymbolProperty
	SymbolValueParam
	SymbolTypeParam
)

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint16

const (
	SymbolFlagPublic SymbolFlags = 1 << iota
	SymbolFlagMutable
	SymbolFlagOperator
	SymbolFlagVararg
	SymbolFlagMember    // needs a dispatch receiver
	SymbolFlagExtension // needs an extension receiver
	SymbolFlagAnnotation
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolClass:
		return "class"
	case SymbolFunction:
		return "function"
	case SymbolConstructor:
		return "constructor"
	case SymbolLocalVar:
		return "local"
	case SymbolProperty:
		return "property"
	case SymbolValueParam:
		return "param"
	case SymbolTypeParam:
		return "type-param"
	default:
		return "invalid"
	}
}

// IsFunctionLike reports whether symbols of kind k are invoked with arguments.
func (k SymbolKind) IsFunctionLike() bool {
	return k == SymbolFunction || k == SymbolConstructor
}

// IsVariableLike reports whether symbols of kind k are read or written.
func (k SymbolKind) IsVariableLike() bool {
	return k == SymbolLocalVar || k == SymbolProperty || k == SymbolValueParam
}

// Strings returns a slice of textual flag labels.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	if f&SymbolFlagPublic != 0 {
		labels = append(labels, "public")
	}
	if f&SymbolFlagMutable != 0 {
		labels = append(labels, "mutable")
	}
	if f&SymbolFlagOperator != 0 {
		labels = append(labels, "operator")
	}
	if f&SymbolFlagVararg != 0 {
		labels = append(labels, "vararg")
	}
	if f&SymbolFlagMember != 0 {
		labels = append(labels, "member")
	}
	if f&SymbolFlagExtension != 0 {
		labels = append(labels, "extension")
	}
	if f&SymbolFlagAnnotation != 0 {
		labels = append(labels, "annotation")
	}
	return labels
}

// Symbol describes a declared entity. Type is the declared type of variables
// and the return type of functions; Receiver is the owning class type for
// members or the receiver type for extensions.
type Symbol struct {
	Name       source.StringID
	Kind       SymbolKind
	Flags      SymbolFlags
	Owner      SymbolID
	Type       types.TypeID
	Receiver   types.TypeID
	TypeParams []SymbolID
	Params     []SymbolID
}
