package calls

import (
	"fmt"

	"callmodel/internal/lifetime"
	"callmodel/internal/symbols"
)

// Kind tags the concrete Call variant.
type Kind uint8

const (
	KindSimpleFunction Kind = iota + 1
	KindAnnotation
	KindDelegatedConstructor
	KindSimpleVariableAccess
	KindCompoundVariableAccess
	KindCompoundArrayAccess
)

func (k Kind) String() string {
	switch k {
	case KindSimpleFunction:
		return "SimpleFunctionCall"
	case KindAnnotation:
		return "AnnotationCall"
	case KindDelegatedConstructor:
		return "DelegatedConstructorCall"
	case KindSimpleVariableAccess:
		return "SimpleVariableAccessCall"
	case KindCompoundVariableAccess:
		return "CompoundVariableAccessCall"
	case KindCompoundArrayAccess:
		return "CompoundArrayAccessCall"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IsFunction reports whether calls of kind k carry an ArgumentMapping.
func (k Kind) IsFunction() bool {
	return k == KindSimpleFunction || k == KindAnnotation || k == KindDelegatedConstructor
}

// IsCompound reports whether calls of kind k carry a CompoundOperation.
func (k Kind) IsCompound() bool {
	return k == KindCompoundVariableAccess || k == KindCompoundArrayAccess
}

// Call is the resolved form of one call-shaped expression.
type Call interface {
	lifetime.Owner
	Kind() Kind
	isCall()
}

// CallableMemberCall is a call to a function or an access to a variable.
type CallableMemberCall interface {
	Call
	// TypeArguments returns the inferred type arguments of the resolved signature.
	TypeArguments() *TypeArgumentMapping
	memberSymbol() symbols.SymbolID
}

// FunctionCall is a call with arguments.
type FunctionCall interface {
	CallableMemberCall
	PartiallyApplied() *FunctionSymbol
	ArgumentMapping() *ArgumentMapping
	isFunctionCall()
}

// VariableAccessCall is a read or write of a variable or property.
type VariableAccessCall interface {
	CallableMemberCall
	PartiallyApplied() *VariableSymbol
	isVariableAccessCall()
}

// CompoundAccessCall is a read-modify-write synthesized by the compiler.
type CompoundAccessCall interface {
	Call
	CompoundOperation() CompoundOperation
	isCompoundAccessCall()
}

// SymbolOf returns the resolved declaration of a function call or variable access.
func SymbolOf(c CallableMemberCall) symbols.SymbolID {
	lifetime.Assert(c)
	return c.memberSymbol()
}

// Symbols lists every declaration c invokes, in evaluation order. For compound
// accesses this includes the operator function and, for indexed access, the
// get and set functions.
func Symbols(c Call) []symbols.SymbolID {
	switch c := c.(type) {
	case CallableMemberCall:
		return []symbols.SymbolID{SymbolOf(c)}
	case *CompoundVariableAccessCall:
		return []symbols.SymbolID{c.VariableSymbol().Symbol(), c.CompoundOperation().Operation().Symbol()}
	case *CompoundArrayAccessCall:
		return []symbols.SymbolID{
			c.GetSymbol().Symbol(),
			c.CompoundOperation().Operation().Symbol(),
			c.SetSymbol().Symbol(),
		}
	}
	panic(fmt.Sprintf("calls: unknown call variant %T", c))
}
