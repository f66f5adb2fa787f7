package calls

import (
	"callmodel/internal/ast"
	"callmodel/internal/diag"
	"callmodel/internal/lifetime"
	"callmodel/internal/symbols"
)

// AccessKind tells whether a simple variable access reads or writes.
type AccessKind uint8

const (
	AccessRead AccessKind = iota + 1
	AccessWrite
)

func (k AccessKind) String() string {
	switch k {
	case AccessRead:
		return "READ"
	case AccessWrite:
		return "WRITE"
	default:
		return "UNKNOWN"
	}
}

// VariableAccess is the access performed by a SimpleVariableAccessCall.
type VariableAccess interface {
	AccessKind() AccessKind
	isVariableAccess()
}

// VariableRead reads the variable.
type VariableRead struct{}

func (VariableRead) AccessKind() AccessKind { return AccessRead }
func (VariableRead) isVariableAccess()      {}

// VariableWrite assigns Value to the variable. Value is NoExprID when the
// assigned expression is not available, e.g. for a synthetic write.
type VariableWrite struct {
	Value ast.ExprID
}

func (VariableWrite) AccessKind() AccessKind { return AccessWrite }
func (VariableWrite) isVariableAccess()      {}

// SimpleVariableAccessCall is a plain read or write of a variable or property.
type SimpleVariableAccessCall struct {
	symbol   *VariableSymbol
	typeArgs *TypeArgumentMapping
	access   VariableAccess
}

// NewSimpleVariableAccessCall builds a variable access.
func NewSimpleVariableAccessCall(pas *VariableSymbol, typeArgs *TypeArgumentMapping, access VariableAccess) (*SimpleVariableAccessCall, error) {
	if pas == nil || typeArgs == nil || access == nil {
		return nil, violation(diag.CallNilComponent, "variable access without symbol, type arguments or access kind")
	}
	if err := checkToken(pas.Token(), typeArgs); err != nil {
		return nil, err
	}
	sig := pas.signature
	if !sig.SymbolKind().IsVariableLike() {
		return nil, violation(diag.CallWrongSymbolKind, "symbol %d is a %s", sig.Symbol(), sig.SymbolKind())
	}
	if err := typeArgs.matches(sig); err != nil {
		return nil, err
	}
	return &SimpleVariableAccessCall{symbol: pas, typeArgs: typeArgs, access: access}, nil
}

func (c *SimpleVariableAccessCall) Token() *lifetime.Token { return c.symbol.Token() }
func (c *SimpleVariableAccessCall) Kind() Kind             { return lifetime.Valid(c, KindSimpleVariableAccess) }

// PartiallyApplied returns the variable and its receivers.
func (c *SimpleVariableAccessCall) PartiallyApplied() *VariableSymbol {
	return lifetime.Valid(c, c.symbol)
}

func (c *SimpleVariableAccessCall) TypeArguments() *TypeArgumentMapping {
	return lifetime.Valid(c, c.typeArgs)
}

// Access returns the read or write performed.
func (c *SimpleVariableAccessCall) Access() VariableAccess { return lifetime.Valid(c, c.access) }

func (c *SimpleVariableAccessCall) memberSymbol() symbols.SymbolID { return c.symbol.signature.Symbol() }

func (*SimpleVariableAccessCall) isCall()               {}
func (*SimpleVariableAccessCall) isVariableAccessCall() {}
