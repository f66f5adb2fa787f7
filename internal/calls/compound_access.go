package calls

import (
	"slices"

	"callmodel/internal/ast"
	"callmodel/internal/diag"
	"callmodel/internal/lifetime"
	"callmodel/internal/symbols"
)

// CompoundVariableAccessCall is `x op= y`, `x++` or `++x` on a plain variable
// when the compiler synthesizes the read-modify-write itself.
//
// If x's type declares a dedicated in-place operator (e.g. plusAssign), the
// expression resolves to a SimpleFunctionCall of that operator instead; its
// dispatch receiver is x, resolved separately as a read access.
type CompoundVariableAccessCall struct {
	variable  *VariableSymbol
	operation CompoundOperation
}

// NewCompoundVariableAccessCall builds a compound access of a mutable variable.
func NewCompoundVariableAccessCall(variable *VariableSymbol, op CompoundOperation) (*CompoundVariableAccessCall, error) {
	if variable == nil || op == nil {
		return nil, violation(diag.CallNilComponent, "compound variable access without variable or operation")
	}
	if err := checkToken(variable.Token(), op); err != nil {
		return nil, err
	}
	sig := variable.signature
	if !sig.SymbolKind().IsVariableLike() {
		return nil, violation(diag.CallWrongSymbolKind, "symbol %d is a %s", sig.Symbol(), sig.SymbolKind())
	}
	if sig.SymbolFlags()&symbols.SymbolFlagMutable == 0 {
		return nil, violation(diag.CallWrongSymbolKind, "variable %d is not mutable", sig.Symbol())
	}
	return &CompoundVariableAccessCall{variable: variable, operation: op}, nil
}

func (c *CompoundVariableAccessCall) Token() *lifetime.Token { return c.variable.Token() }
func (c *CompoundVariableAccessCall) Kind() Kind             { return lifetime.Valid(c, KindCompoundVariableAccess) }

// VariableSymbol returns the mutated variable and its receivers.
func (c *CompoundVariableAccessCall) VariableSymbol() *VariableSymbol {
	return lifetime.Valid(c, c.variable)
}

// PartiallyApplied returns VariableSymbol.
//
// Deprecated: use VariableSymbol.
func (c *CompoundVariableAccessCall) PartiallyApplied() *VariableSymbol {
	return c.VariableSymbol()
}

func (c *CompoundVariableAccessCall) CompoundOperation() CompoundOperation {
	return lifetime.Valid(c, c.operation)
}

func (*CompoundVariableAccessCall) isCall()               {}
func (*CompoundVariableAccessCall) isCompoundAccessCall() {}

// CompoundArrayAccessCall is `a[i] op= y` or `a[i]++` through the indexing
// convention: get reads a[i], the operation computes the new value, set
// stores it. Both accessors are dispatched against the same receivers.
//
// When a[i] yields a container that has its own in-place operator, the
// expression is instead a SimpleFunctionCall of that operator whose receiver
// is the get call.
type CompoundArrayAccessCall struct {
	operation CompoundOperation
	indices   []ast.ExprID
	get       *FunctionSymbol
	set       *FunctionSymbol
}

// NewCompoundArrayAccessCall builds a paired get/set compound access.
func NewCompoundArrayAccessCall(op CompoundOperation, indices []ast.ExprID, get, set *FunctionSymbol) (*CompoundArrayAccessCall, error) {
	if op == nil || get == nil || set == nil {
		return nil, violation(diag.CallNilComponent, "compound array access without operation, get or set")
	}
	if err := checkToken(op.Token(), get, set); err != nil {
		return nil, err
	}
	if len(indices) == 0 {
		return nil, violation(diag.CallEmptyIndex, "indexed access needs at least one index argument")
	}
	seen := make(map[ast.ExprID]struct{}, len(indices))
	for _, idx := range indices {
		if !idx.IsValid() {
			return nil, violation(diag.CallNilComponent, "index argument without expression")
		}
		if _, dup := seen[idx]; dup {
			return nil, violation(diag.CallDuplicateArgument, "index expression %d listed twice", idx)
		}
		seen[idx] = struct{}{}
	}
	for _, acc := range []*FunctionSymbol{get, set} {
		sig := acc.signature
		if sig.SymbolKind() != symbols.SymbolFunction || sig.SymbolFlags()&symbols.SymbolFlagOperator == 0 {
			return nil, violation(diag.CallNonOperator, "indexed accessor %d is not an operator function", sig.Symbol())
		}
	}
	if !get.sameReceivers(set) {
		return nil, violation(diag.CallReceiverMismatch, "get %d and set %d are dispatched against different receivers", get.signature.Symbol(), set.signature.Symbol())
	}
	return &CompoundArrayAccessCall{
		operation: op,
		indices:   slices.Clone(indices),
		get:       get,
		set:       set,
	}, nil
}

func (c *CompoundArrayAccessCall) Token() *lifetime.Token { return c.operation.Token() }
func (c *CompoundArrayAccessCall) Kind() Kind             { return lifetime.Valid(c, KindCompoundArrayAccess) }

func (c *CompoundArrayAccessCall) CompoundOperation() CompoundOperation {
	return lifetime.Valid(c, c.operation)
}

// IndexArguments returns the index expressions in source order.
func (c *CompoundArrayAccessCall) IndexArguments() []ast.ExprID {
	return lifetime.Valid(c, slices.Clone(c.indices))
}

// GetSymbol is the get operator invoked to read the indexed value.
func (c *CompoundArrayAccessCall) GetSymbol() *FunctionSymbol { return lifetime.Valid(c, c.get) }

// SetSymbol is the set operator invoked with the indices and the computed value.
func (c *CompoundArrayAccessCall) SetSymbol() *FunctionSymbol { return lifetime.Valid(c, c.set) }

func (*CompoundArrayAccessCall) isCall()               {}
func (*CompoundArrayAccessCall) isCompoundAccessCall() {}
