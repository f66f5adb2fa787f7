package ast

import (
	"callmodel/internal/source"
)

type ExprKind uint8

const (
	ExprIdent ExprKind = iota
	ExprLit
	ExprCall
	ExprBinary
	ExprUnary
	ExprIndex
	ExprAssign
	ExprAnnotation
	ExprDelegation
)

func (k ExprKind) String() string {
	switch k {
	case ExprIdent:
		return "ident"
	case ExprLit:
		return "lit"
	case ExprCall:
		return "call"
	case ExprBinary:
		return "binary"
	case ExprUnary:
		return "unary"
	case ExprIndex:
		return "index"
	case ExprAssign:
		return "assign"
	case ExprAnnotation:
		return "annotation"
	case ExprDelegation:
		return "delegation"
	default:
		return "invalid"
	}
}

// Expr keeps just enough of a source expression to print it back.
type Expr struct {
	Kind ExprKind
	Span source.Span
	Text string
}

type Exprs struct {
	Arena *Arena[Expr]
}

func NewExprs(capHint uint) *Exprs {
	return &Exprs{
		Arena: NewArena[Expr](capHint),
	}
}

func (e *Exprs) New(kind ExprKind, span source.Span, text string) ExprID {
	return ExprID(e.Arena.Allocate(Expr{
		Kind: kind,
		Span: span,
		Text: text,
	}))
}

func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

// Text returns the source text of id or "<no expr>" for unknown ids.
func (e *Exprs) Text(id ExprID) string {
	if x := e.Get(id); x != nil {
		return x.Text
	}
	return "<no expr>"
}
