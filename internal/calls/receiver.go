package calls

import (
	"callmodel/internal/ast"
	"callmodel/internal/diag"
	"callmodel/internal/lifetime"
	"callmodel/internal/symbols"
	"callmodel/internal/types"
)

// ReceiverKind discriminates the Receiver union.
type ReceiverKind uint8

const (
	ReceiverExpr ReceiverKind = iota + 1
	ReceiverImplicit
	ReceiverSmartCast
)

func (k ReceiverKind) String() string {
	switch k {
	case ReceiverExpr:
		return "explicit"
	case ReceiverImplicit:
		return "implicit"
	case ReceiverSmartCast:
		return "smart-cast"
	default:
		return "unknown"
	}
}

// Receiver is a value a member or extension is dispatched against.
type Receiver interface {
	lifetime.Owner
	ReceiverKind() ReceiverKind
	Type() types.TypeID
	isReceiver()
}

// ExprReceiver is a receiver written in source, e.g. `m` in `m.add(x)`.
type ExprReceiver struct {
	token *lifetime.Token
	expr  ast.ExprID
	typ   types.TypeID
}

// NewExprReceiver binds an explicit receiver expression.
func NewExprReceiver(tok *lifetime.Token, expr ast.ExprID, typ types.TypeID) *ExprReceiver {
	return &ExprReceiver{token: tok, expr: expr, typ: typ}
}

func (r *ExprReceiver) Token() *lifetime.Token     { return r.token }
func (r *ExprReceiver) ReceiverKind() ReceiverKind { return lifetime.Valid(r, ReceiverExpr) }
func (r *ExprReceiver) Type() types.TypeID         { return lifetime.Valid(r, r.typ) }

// Expr returns the receiver expression.
func (r *ExprReceiver) Expr() ast.ExprID { return lifetime.Valid(r, r.expr) }

func (*ExprReceiver) isReceiver() {}

// ImplicitReceiver is a receiver taken from scope, such as `this` of the
// enclosing class. Symbol names the class or function that provides it.
type ImplicitReceiver struct {
	token  *lifetime.Token
	symbol symbols.SymbolID
	typ    types.TypeID
}

// NewImplicitReceiver binds an implicit receiver provided by owner.
func NewImplicitReceiver(tok *lifetime.Token, owner symbols.SymbolID, typ types.TypeID) *ImplicitReceiver {
	return &ImplicitReceiver{token: tok, symbol: owner, typ: typ}
}

func (r *ImplicitReceiver) Token() *lifetime.Token     { return r.token }
func (r *ImplicitReceiver) ReceiverKind() ReceiverKind { return lifetime.Valid(r, ReceiverImplicit) }
func (r *ImplicitReceiver) Type() types.TypeID         { return lifetime.Valid(r, r.typ) }

// Symbol returns the declaration that provides the receiver.
func (r *ImplicitReceiver) Symbol() symbols.SymbolID { return lifetime.Valid(r, r.symbol) }

func (*ImplicitReceiver) isReceiver() {}

// SmartCastReceiver wraps a receiver whose type was narrowed by flow analysis.
// Type returns the narrowed type; Original returns the receiver as written.
type SmartCastReceiver struct {
	token    *lifetime.Token
	original Receiver
	typ      types.TypeID
}

// NewSmartCastReceiver narrows original to typ. The result shares the token
// of original.
func NewSmartCastReceiver(original Receiver, typ types.TypeID) (*SmartCastReceiver, error) {
	if original == nil {
		return nil, violation(diag.CallNilComponent, "smart cast without original receiver")
	}
	if typ == types.NoTypeID {
		return nil, violation(diag.CallNilComponent, "smart cast to no type")
	}
	if err := original.Token().AssertLive(); err != nil {
		return nil, err
	}
	return &SmartCastReceiver{token: original.Token(), original: original, typ: typ}, nil
}

func (r *SmartCastReceiver) Token() *lifetime.Token     { return r.token }
func (r *SmartCastReceiver) ReceiverKind() ReceiverKind { return lifetime.Valid(r, ReceiverSmartCast) }
func (r *SmartCastReceiver) Type() types.TypeID         { return lifetime.Valid(r, r.typ) }
func (r *SmartCastReceiver) Original() Receiver         { return lifetime.Valid(r, r.original) }

func (*SmartCastReceiver) isReceiver() {}

// SameReceiver compares receivers structurally. Two absent receivers are equal.
func SameReceiver(a, b Receiver) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *ExprReceiver:
		y, ok := b.(*ExprReceiver)
		return ok && x.Expr() == y.Expr() && x.Type() == y.Type()
	case *ImplicitReceiver:
		y, ok := b.(*ImplicitReceiver)
		return ok && x.Symbol() == y.Symbol() && x.Type() == y.Type()
	case *SmartCastReceiver:
		y, ok := b.(*SmartCastReceiver)
		return ok && x.Type() == y.Type() && SameReceiver(x.Original(), y.Original())
	}
	return false
}
