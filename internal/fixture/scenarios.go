package fixture

import (
	"context"
	"fmt"

	"callmodel/internal/ast"
	"callmodel/internal/calls"
	"callmodel/internal/session"
)

// Scenario is one source expression resolved against a fresh World.
type Scenario struct {
	Name   string
	Source string
	Want   calls.Kind
	Build  func(r *Resolver) (calls.Call, error)
}

// Result is a resolved scenario. The caller owns Session and must close it.
type Result struct {
	Scenario Scenario
	World    *World
	Session  *session.Session
	Call     calls.Call
}

// Run resolves sc in a new session named after it. opts.Name and opts.Exprs
// are filled in.
func Run(ctx context.Context, sc Scenario, opts session.Options) (*Result, error) {
	w, err := NewWorld()
	if err != nil {
		return nil, err
	}
	opts.Name = sc.Name
	opts.Exprs = w.Exprs
	s := session.New(ctx, opts)
	call, err := sc.Build(NewResolver(w, s))
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	if got := call.Kind(); got != sc.Want {
		_ = s.Close()
		return nil, fmt.Errorf("scenario %s: resolved to %s, want %s", sc.Name, got, sc.Want)
	}
	return &Result{Scenario: sc, World: w, Session: s, Call: call}, nil
}

// Lookup returns the scenario called name.
func Lookup(name string) (Scenario, bool) {
	for _, sc := range Scenarios() {
		if sc.Name == name {
			return sc, true
		}
	}
	return Scenario{}, false
}

func lit(r *Resolver, text string) Arg {
	w := r.World()
	typ := w.Int
	if len(text) > 0 && text[0] == '"' {
		typ = w.String
	}
	return Arg{Expr: w.Expr(ast.ExprLit, text), Type: typ}
}

func ident(r *Resolver, text string) ast.ExprID {
	return r.World().Expr(ast.ExprIdent, text)
}

// Scenarios lists every scenario in a stable order.
func Scenarios() []Scenario {
	return []Scenario{
		{
			Name:   "plus-assign-variable",
			Source: "i += 1",
			Want:   calls.KindCompoundVariableAccess,
			Build: func(r *Resolver) (calls.Call, error) {
				target := ident(r, "i")
				one := lit(r, "1")
				expr := r.World().Expr(ast.ExprAssign, "i += 1")
				return r.Compound(expr, target, r.World().I, AssignStep{Kind: calls.AssignPlus, Operand: one})
			},
		},
		{
			Name:   "postfix-increment",
			Source: "i++",
			Want:   calls.KindCompoundVariableAccess,
			Build: func(r *Resolver) (calls.Call, error) {
				target := ident(r, "i")
				expr := r.World().Expr(ast.ExprUnary, "i++")
				return r.Compound(expr, target, r.World().I, IncDecStep{Kind: calls.Inc, Precedence: calls.Postfix})
			},
		},
		{
			Name:   "prefix-decrement",
			Source: "--i",
			Want:   calls.KindCompoundVariableAccess,
			Build: func(r *Resolver) (calls.Call, error) {
				target := ident(r, "i")
				expr := r.World().Expr(ast.ExprUnary, "--i")
				return r.Compound(expr, target, r.World().I, IncDecStep{Kind: calls.Dec, Precedence: calls.Prefix})
			},
		},
		{
			Name:   "extension-operator-assign",
			Source: `s += "x"`,
			Want:   calls.KindCompoundVariableAccess,
			Build: func(r *Resolver) (calls.Call, error) {
				target := ident(r, "s")
				x := lit(r, `"x"`)
				expr := r.World().Expr(ast.ExprAssign, `s += "x"`)
				return r.Compound(expr, target, r.World().S, AssignStep{Kind: calls.AssignPlus, Operand: x})
			},
		},
		{
			Name:   "member-property-times-assign",
			Source: "count *= 2",
			Want:   calls.KindCompoundVariableAccess,
			Build: func(r *Resolver) (calls.Call, error) {
				target := ident(r, "count")
				two := lit(r, "2")
				expr := r.World().Expr(ast.ExprAssign, "count *= 2")
				return r.Compound(expr, target, r.World().Count, AssignStep{Kind: calls.AssignTimes, Operand: two})
			},
		},
		{
			Name:   "in-place-plus-assign",
			Source: `m += "a"`,
			Want:   calls.KindSimpleFunction,
			Build: func(r *Resolver) (calls.Call, error) {
				target := ident(r, "m")
				a := lit(r, `"a"`)
				expr := r.World().Expr(ast.ExprAssign, `m += "a"`)
				return r.Compound(expr, target, r.World().M, AssignStep{Kind: calls.AssignPlus, Operand: a})
			},
		},
		{
			Name:   "indexed-plus-assign",
			Source: `map["a"] += "b"`,
			Want:   calls.KindCompoundArrayAccess,
			Build: func(r *Resolver) (calls.Call, error) {
				container := ident(r, "map")
				key := lit(r, `"a"`)
				indexed := r.World().Expr(ast.ExprIndex, `map["a"]`)
				b := lit(r, `"b"`)
				expr := r.World().Expr(ast.ExprAssign, `map["a"] += "b"`)
				return r.IndexedCompound(expr, indexed, container, r.World().Map, []Arg{key}, AssignStep{Kind: calls.AssignPlus, Operand: b})
			},
		},
		{
			Name:   "indexed-postfix-increment",
			Source: `tally["a"]++`,
			Want:   calls.KindCompoundArrayAccess,
			Build: func(r *Resolver) (calls.Call, error) {
				container := ident(r, "tally")
				key := lit(r, `"a"`)
				indexed := r.World().Expr(ast.ExprIndex, `tally["a"]`)
				expr := r.World().Expr(ast.ExprUnary, `tally["a"]++`)
				return r.IndexedCompound(expr, indexed, container, r.World().Tally, []Arg{key}, IncDecStep{Kind: calls.Inc, Precedence: calls.Postfix})
			},
		},
		{
			Name:   "indexed-in-place-chain",
			Source: `multi["a"] += "b"`,
			Want:   calls.KindSimpleFunction,
			Build: func(r *Resolver) (calls.Call, error) {
				container := ident(r, "multi")
				key := lit(r, `"a"`)
				indexed := r.World().Expr(ast.ExprIndex, `multi["a"]`)
				b := lit(r, `"b"`)
				expr := r.World().Expr(ast.ExprAssign, `multi["a"] += "b"`)
				return r.IndexedCompound(expr, indexed, container, r.World().Multi, []Arg{key}, AssignStep{Kind: calls.AssignPlus, Operand: b})
			},
		},
		{
			Name:   "implicit-invoke",
			Source: "f(1)",
			Want:   calls.KindSimpleFunction,
			Build: func(r *Resolver) (calls.Call, error) {
				callee := ident(r, "f")
				one := lit(r, "1")
				expr := r.World().Expr(ast.ExprCall, "f(1)")
				return r.Invoke(expr, callee, r.World().F, one)
			},
		},
		{
			Name:   "member-call",
			Source: `m.add("x")`,
			Want:   calls.KindSimpleFunction,
			Build: func(r *Resolver) (calls.Call, error) {
				w := r.World()
				recv := ident(r, "m")
				if _, err := r.Read(recv, w.M); err != nil {
					return nil, err
				}
				x := lit(r, `"x"`)
				expr := w.Expr(ast.ExprCall, `m.add("x")`)
				return r.CallMember(expr, recv, w.MutableList, "add", x)
			},
		},
		{
			Name:   "named-arguments",
			Source: `map.set(value = "v", key = "k")`,
			Want:   calls.KindSimpleFunction,
			Build: func(r *Resolver) (calls.Call, error) {
				w := r.World()
				recv := ident(r, "map")
				v := lit(r, `"v"`)
				v.Param = "value"
				k := lit(r, `"k"`)
				k.Param = "key"
				expr := w.Expr(ast.ExprCall, `map.set(value = "v", key = "k")`)
				return r.CallMember(expr, recv, w.MutableMap, "set", v, k)
			},
		},
		{
			Name:   "generic-vararg-call",
			Source: `listOf("x", "y")`,
			Want:   calls.KindSimpleFunction,
			Build: func(r *Resolver) (calls.Call, error) {
				x, y := lit(r, `"x"`), lit(r, `"y"`)
				expr := r.World().Expr(ast.ExprCall, `listOf("x", "y")`)
				return r.Call(expr, r.World().ListOf, x, y)
			},
		},
		{
			Name:   "generic-inference-failed",
			Source: "listOf()",
			Want:   calls.KindSimpleFunction,
			Build: func(r *Resolver) (calls.Call, error) {
				expr := r.World().Expr(ast.ExprCall, "listOf()")
				return r.Call(expr, r.World().ListOf)
			},
		},
		{
			Name:   "variable-write",
			Source: "i = 5",
			Want:   calls.KindSimpleVariableAccess,
			Build: func(r *Resolver) (calls.Call, error) {
				target := ident(r, "i")
				five := lit(r, "5")
				return r.Write(target, r.World().I, five.Expr)
			},
		},
		{
			Name:   "annotation",
			Source: `@Deprecated("old")`,
			Want:   calls.KindAnnotation,
			Build: func(r *Resolver) (calls.Call, error) {
				msg := lit(r, `"old"`)
				expr := r.World().Expr(ast.ExprAnnotation, `@Deprecated("old")`)
				return r.Annotate(expr, r.World().DeprecatedInit, msg)
			},
		},
		{
			Name:   "super-delegation",
			Source: "constructor(i: Int) : super(i)",
			Want:   calls.KindDelegatedConstructor,
			Build: func(r *Resolver) (calls.Call, error) {
				i := Arg{Expr: ident(r, "i"), Type: r.World().Int}
				expr := r.World().Expr(ast.ExprDelegation, "super(i)")
				return r.Delegate(expr, r.World().BaseInit, calls.SuperCall, i)
			},
		},
		{
			Name:   "this-delegation",
			Source: "constructor() : this(0)",
			Want:   calls.KindDelegatedConstructor,
			Build: func(r *Resolver) (calls.Call, error) {
				zero := lit(r, "0")
				expr := r.World().Expr(ast.ExprDelegation, "this(0)")
				return r.Delegate(expr, r.World().DerivedInit, calls.ThisCall, zero)
			},
		},
	}
}
