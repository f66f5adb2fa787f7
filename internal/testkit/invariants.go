package testkit

import (
	"fmt"

	"callmodel/internal/ast"
	"callmodel/internal/calls"
	"callmodel/internal/lifetime"
	"callmodel/internal/session"
	"callmodel/internal/source"
)

// CheckSessionInvariants runs a minimal set of invariants on a live session:
// 1) every recorded expression exists, has a non-empty span, and all spans share one file
// 2) every call and each of its receivers is bound to the session token
// 3) receiver, argument and index expressions exist in exprs
func CheckSessionInvariants(s *session.Session, exprs *ast.Exprs) error {
	if s == nil || exprs == nil {
		return fmt.Errorf("nil session or exprs")
	}
	if s.Closed() {
		return fmt.Errorf("session %s is closed", s.Name())
	}
	tok := s.Token()

	var file source.FileID
	haveFile := false
	for _, e := range s.Calls() {
		x := exprs.Get(e.Expr)
		if x == nil {
			return fmt.Errorf("recorded expr %d not found", e.Expr)
		}
		if x.Span.End <= x.Span.Start {
			return fmt.Errorf("empty span for %q: %v", x.Text, x.Span)
		}
		if !haveFile {
			file, haveFile = x.Span.File, true
		} else if x.Span.File != file {
			return fmt.Errorf("%q is in file %d, session started in %d", x.Text, x.Span.File, file)
		}
		if err := checkCall(tok, exprs, x.Text, e.Call); err != nil {
			return err
		}
	}
	return nil
}

func checkCall(tok *lifetime.Token, exprs *ast.Exprs, at string, call calls.Call) error {
	if call.Token() != tok {
		return fmt.Errorf("%q: call is bound to another token", at)
	}
	for _, recv := range receivers(call) {
		if recv == nil {
			continue
		}
		if recv.Token() != tok {
			return fmt.Errorf("%q: receiver is bound to another token", at)
		}
		if r, ok := recv.(*calls.SmartCastReceiver); ok {
			recv = r.Original()
		}
		if r, ok := recv.(*calls.ExprReceiver); ok && exprs.Get(r.Expr()) == nil {
			return fmt.Errorf("%q: receiver expr %d not found", at, r.Expr())
		}
	}
	var operands []ast.ExprID
	switch c := call.(type) {
	case calls.FunctionCall:
		operands = c.ArgumentMapping().Arguments()
	case *calls.CompoundArrayAccessCall:
		operands = c.IndexArguments()
	}
	for _, id := range operands {
		if exprs.Get(id) == nil {
			return fmt.Errorf("%q: operand expr %d not found", at, id)
		}
	}
	return nil
}

func receivers(call calls.Call) []calls.Receiver {
	var out []calls.Receiver
	add := func(dispatch, extension calls.Receiver) {
		out = append(out, dispatch, extension)
	}
	switch c := call.(type) {
	case *calls.CompoundVariableAccessCall:
		v := c.VariableSymbol()
		add(v.DispatchReceiver(), v.ExtensionReceiver())
		op := c.CompoundOperation().Operation()
		add(op.DispatchReceiver(), op.ExtensionReceiver())
	case *calls.CompoundArrayAccessCall:
		for _, f := range []*calls.FunctionSymbol{c.GetSymbol(), c.CompoundOperation().Operation(), c.SetSymbol()} {
			add(f.DispatchReceiver(), f.ExtensionReceiver())
		}
	case calls.FunctionCall:
		add(c.PartiallyApplied().DispatchReceiver(), c.PartiallyApplied().ExtensionReceiver())
	case calls.VariableAccessCall:
		add(c.PartiallyApplied().DispatchReceiver(), c.PartiallyApplied().ExtensionReceiver())
	}
	return out
}
