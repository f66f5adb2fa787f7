package calls

import (
	"errors"
	"testing"

	"callmodel/internal/diag"
	"callmodel/internal/lifetime"
	"callmodel/internal/symbols"
	"callmodel/internal/types"
)

func TestPartiallyAppliedMemberNeedsDispatch(t *testing.T) {
	w := newTestWorld(t)
	_, err := NewPartiallyApplied(w.tok, w.fnSig(w.intPlus), nil, nil)
	expectCode(t, err, diag.CallMissingReceiver)

	recv := w.receiver("i", w.intType)
	pas, err := NewPartiallyApplied(w.tok, w.fnSig(w.intPlus), recv, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pas.DispatchReceiver() != Receiver(recv) {
		t.Fatalf("dispatch receiver not kept")
	}
	if pas.ExtensionReceiver() != nil {
		t.Fatalf("unexpected extension receiver")
	}
	if pas.Symbol() != w.intPlus {
		t.Fatalf("symbol = %d, want %d", pas.Symbol(), w.intPlus)
	}
}

func TestPartiallyAppliedRejectsUnexpectedReceivers(t *testing.T) {
	w := newTestWorld(t)
	recv := w.receiver("x", w.intType)
	_, err := NewPartiallyApplied(w.tok, w.fnSig(w.pair), recv, nil)
	expectCode(t, err, diag.CallUnexpectedReceiver)
	_, err = NewPartiallyApplied(w.tok, w.varSig(w.counter), nil, recv)
	expectCode(t, err, diag.CallUnexpectedReceiver)
}

func TestPartiallyAppliedExtension(t *testing.T) {
	w := newTestWorld(t)
	strNullable := w.table.Types.Nullable(w.strType)
	fn := w.table.DeclareFunction("plus", 0, strNullable, w.strType, symbols.SymbolFlagExtension|symbols.SymbolFlagOperator)
	w.table.AddParam(fn, "other", w.table.Types.Builtins().Any, 0)

	_, err := NewPartiallyApplied(w.tok, w.fnSig(fn), nil, nil)
	expectCode(t, err, diag.CallMissingReceiver)

	ext := w.receiver("s", strNullable)
	pas, err := NewPartiallyApplied(w.tok, w.fnSig(fn), nil, ext)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pas.ExtensionReceiver().Type() != strNullable {
		t.Fatalf("extension receiver type lost")
	}
}

func TestPartiallyAppliedNilSignature(t *testing.T) {
	w := newTestWorld(t)
	_, err := NewPartiallyApplied[*symbols.FunctionSignature](w.tok, nil, nil, nil)
	expectCode(t, err, diag.CallNilComponent)
}

func TestPartiallyAppliedTokenMismatch(t *testing.T) {
	w := newTestWorld(t)
	other := lifetime.NewToken("other")
	recv := NewExprReceiver(other, w.expr(0, "i"), w.intType)
	_, err := NewPartiallyApplied(w.tok, w.fnSig(w.intPlus), recv, nil)
	expectCode(t, err, diag.CallTokenMismatch)
}

func TestPartiallyAppliedExpiredToken(t *testing.T) {
	w := newTestWorld(t)
	w.tok.Invalidate()
	_, err := NewPartiallyApplied(w.tok, w.varSig(w.counter), nil, nil)
	if !errors.Is(err, lifetime.ErrStale) {
		t.Fatalf("expected stale error, got %v", err)
	}
}

func TestPartiallyAppliedEqual(t *testing.T) {
	w := newTestWorld(t)
	recv := w.receiver("i", w.intType)
	a := w.fnSymbol(w.intPlus, recv)
	b := w.fnSymbol(w.intPlus, NewExprReceiver(w.tok, recv.Expr(), w.intType))
	if !a.Equal(b) {
		t.Fatalf("structurally equal symbols compare unequal")
	}
	c := w.fnSymbol(w.intPlus, w.receiver("j", w.intType))
	if a.Equal(c) {
		t.Fatalf("different receivers compare equal")
	}
	if a.Equal(nil) {
		t.Fatalf("nil compares equal")
	}
}

func TestSameReceiver(t *testing.T) {
	w := newTestWorld(t)
	cls := w.table.Get(w.intPlus).Owner
	implicit := NewImplicitReceiver(w.tok, cls, w.intType)
	if !SameReceiver(implicit, NewImplicitReceiver(w.tok, cls, w.intType)) {
		t.Fatalf("implicit receivers differ")
	}
	expr := w.receiver("x", w.table.Types.Builtins().Any)
	cast, err := NewSmartCastReceiver(expr, w.intType)
	if err != nil {
		t.Fatalf("smart cast: %v", err)
	}
	if cast.ReceiverKind() != ReceiverSmartCast || cast.Original() != Receiver(expr) {
		t.Fatalf("smart cast lost its original receiver")
	}
	if cast.Token() != w.tok {
		t.Fatalf("smart cast must share its original's token")
	}
	if SameReceiver(cast, expr) {
		t.Fatalf("smart cast equals its original")
	}
	if !SameReceiver(nil, nil) || SameReceiver(expr, nil) {
		t.Fatalf("absent receiver comparison is wrong")
	}
}

func TestSmartCastReceiverRejectsBadInput(t *testing.T) {
	w := newTestWorld(t)
	expr := w.receiver("x", w.table.Types.Builtins().Any)

	_, err := NewSmartCastReceiver(nil, w.intType)
	expectCode(t, err, diag.CallNilComponent)
	_, err = NewSmartCastReceiver(expr, types.NoTypeID)
	expectCode(t, err, diag.CallNilComponent)

	w.tok.Invalidate()
	_, err = NewSmartCastReceiver(expr, w.intType)
	if !errors.Is(err, lifetime.ErrStale) {
		t.Fatalf("smart cast of a stale receiver = %v", err)
	}
}
