package calls

import (
	"slices"
	"testing"

	"callmodel/internal/ast"
	"callmodel/internal/diag"
	"callmodel/internal/lifetime"
	"callmodel/internal/symbols"
	"callmodel/internal/types"
)

func TestSimpleFunctionCall(t *testing.T) {
	w := newTestWorld(t)
	pas := w.fnSymbol(w.listOf, nil)
	sig := pas.Signature()
	x := w.expr(ast.ExprLit, `"x"`)
	typeArgs, err := InferredTypeArguments(w.tok, sig, map[symbols.SymbolID]types.TypeID{w.listOfT: w.strType})
	if err != nil {
		t.Fatalf("type arguments: %v", err)
	}
	call, err := NewSimpleFunctionCall(pas, w.args(sig, x), typeArgs, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if call.Kind() != KindSimpleFunction || !call.Kind().IsFunction() || call.Kind().IsCompound() {
		t.Fatalf("kind = %s", call.Kind())
	}
	if call.IsImplicitInvoke() {
		t.Fatalf("direct call marked as implicit invoke")
	}
	if SymbolOf(call) != w.listOf {
		t.Fatalf("symbol = %d", SymbolOf(call))
	}
	if call.TypeArguments() != typeArgs || call.ArgumentMapping().Len() != 1 {
		t.Fatalf("components not kept")
	}
}

func TestSimpleFunctionCallGenericNeedsInferenceOutcome(t *testing.T) {
	w := newTestWorld(t)
	pas := w.fnSymbol(w.listOf, nil)
	_, err := NewSimpleFunctionCall(pas, w.args(pas.Signature()), NoTypeArguments(w.tok), false)
	expectCode(t, err, diag.CallTypeArgumentKeys)

	call, err := NewSimpleFunctionCall(pas, w.args(pas.Signature()), FailedTypeArguments(w.tok, pas.Signature()), false)
	if err != nil {
		t.Fatalf("failed inference must still build a call: %v", err)
	}
	if call.TypeArguments().Inference() != InferenceFailed {
		t.Fatalf("inference = %s", call.TypeArguments().Inference())
	}
}

func TestSimpleFunctionCallRejects(t *testing.T) {
	w := newTestWorld(t)
	plus := w.fnSymbol(w.intPlus, w.receiver("i", w.intType))
	one := w.expr(ast.ExprLit, "1")

	_, err := NewSimpleFunctionCall(plus, w.args(plus.Signature(), one), nil, false)
	expectCode(t, err, diag.CallNilComponent)

	_, err = NewSimpleFunctionCall(plus, w.args(w.fnSig(w.pair), one), NoTypeArguments(w.tok), false)
	expectCode(t, err, diag.CallUnknownParameter)

	minus := w.fnSymbol(w.intMinus, w.receiver("i", w.intType))
	_, err = NewSimpleFunctionCall(minus, w.args(minus.Signature(), one), NoTypeArguments(w.tok), true)
	expectCode(t, err, diag.CallNonOperator)

	other := lifetime.NewToken("other")
	_, err = NewSimpleFunctionCall(plus, w.args(plus.Signature(), one), NoTypeArguments(other), false)
	expectCode(t, err, diag.CallTokenMismatch)
}

func TestImplicitInvoke(t *testing.T) {
	w := newTestWorld(t)
	call, err := NewSimpleFunctionCall(
		w.fnSymbol(w.intPlus, w.receiver("f", w.intType)),
		w.args(w.fnSig(w.intPlus), w.expr(ast.ExprLit, "1")),
		NoTypeArguments(w.tok),
		true,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !call.IsImplicitInvoke() {
		t.Fatalf("implicit invoke flag lost")
	}
}

func TestAnnotationCall(t *testing.T) {
	w := newTestWorld(t)
	pas := w.fnSymbol(w.annCtor, nil)
	call, err := NewAnnotationCall(pas, w.args(pas.Signature(), w.expr(ast.ExprLit, `"old"`)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if call.Kind() != KindAnnotation {
		t.Fatalf("kind = %s", call.Kind())
	}
	ta := call.TypeArguments()
	if ta.Len() != 0 || ta.Inference() != InferenceNotApplicable {
		t.Fatalf("annotation type arguments must be empty")
	}

	base := w.fnSymbol(w.baseCtor, nil)
	_, err = NewAnnotationCall(base, w.args(base.Signature(), w.expr(ast.ExprLit, "1")))
	expectCode(t, err, diag.CallWrongSymbolKind)

	fn := w.fnSymbol(w.pair, nil)
	_, err = NewAnnotationCall(fn, w.args(fn.Signature()))
	expectCode(t, err, diag.CallWrongSymbolKind)
}

func TestDelegatedConstructorCall(t *testing.T) {
	w := newTestWorld(t)
	pas := w.fnSymbol(w.baseCtor, nil)
	args := w.args(pas.Signature(), w.expr(ast.ExprIdent, "i"))
	call, err := NewDelegatedConstructorCall(pas, SuperCall, args, NoTypeArguments(w.tok))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if call.DelegationKind() != SuperCall || call.Kind() != KindDelegatedConstructor {
		t.Fatalf("delegation = %s, kind = %s", call.DelegationKind(), call.Kind())
	}

	_, err = NewDelegatedConstructorCall(pas, DelegationKind(9), args, NoTypeArguments(w.tok))
	expectCode(t, err, diag.CallUnknownKind)

	fn := w.fnSymbol(w.pair, nil)
	_, err = NewDelegatedConstructorCall(fn, ThisCall, w.args(fn.Signature()), NoTypeArguments(w.tok))
	expectCode(t, err, diag.CallWrongSymbolKind)
}

func TestSimpleVariableAccessCall(t *testing.T) {
	w := newTestWorld(t)
	value := w.expr(ast.ExprLit, "5")
	call, err := NewSimpleVariableAccessCall(w.varSymbol(w.counter), NoTypeArguments(w.tok), VariableWrite{Value: value})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	write, ok := call.Access().(VariableWrite)
	if !ok || write.Value != value || call.Access().AccessKind() != AccessWrite {
		t.Fatalf("access = %#v", call.Access())
	}
	if SymbolOf(call) != w.counter {
		t.Fatalf("symbol = %d", SymbolOf(call))
	}

	_, err = NewSimpleVariableAccessCall(w.varSymbol(w.counter), NoTypeArguments(w.tok), nil)
	expectCode(t, err, diag.CallNilComponent)
}

func TestCompoundVariableAccessCall(t *testing.T) {
	w := newTestWorld(t)
	op := w.plusOne()
	call, err := NewCompoundVariableAccessCall(w.varSymbol(w.counter), op)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if call.VariableSymbol().Symbol() != w.counter || call.PartiallyApplied() != call.VariableSymbol() {
		t.Fatalf("variable symbol lost")
	}
	assign, ok := call.CompoundOperation().(*CompoundAssign)
	if !ok || assign.Kind() != AssignPlus || assign.Shape() != ShapeAssign {
		t.Fatalf("operation = %#v", call.CompoundOperation())
	}
	if got := Symbols(call); !slices.Equal(got, []symbols.SymbolID{w.counter, w.intPlus}) {
		t.Fatalf("symbols = %v", got)
	}

	_, err = NewCompoundVariableAccessCall(w.varSymbol(w.constant), op)
	expectCode(t, err, diag.CallWrongSymbolKind)
}

func TestCompoundOperationNeedsOperator(t *testing.T) {
	w := newTestWorld(t)
	minus := w.fnSymbol(w.intMinus, w.receiver("i", w.intType))
	_, err := NewCompoundAssign(AssignMinus, w.expr(ast.ExprLit, "1"), minus)
	expectCode(t, err, diag.CallNonOperator)

	_, err = NewCompoundIncDec(Inc, Postfix, minus)
	expectCode(t, err, diag.CallNonOperator)

	inc := w.fnSymbol(w.intInc, w.receiver("i", w.intType))
	_, err = NewCompoundIncDec(Inc, Precedence(0), inc)
	expectCode(t, err, diag.CallUnknownKind)

	op, err := NewCompoundIncDec(Inc, Prefix, inc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op.Shape() != ShapeIncDec || op.Precedence() != Prefix || op.Kind().OperatorName() != "inc" {
		t.Fatalf("inc/dec lost its parts")
	}
}

func TestAssignOperatorNames(t *testing.T) {
	if AssignPlus.AssignOperatorName() != "plusAssign" || AssignRem.OperatorName() != "rem" {
		t.Fatalf("unexpected operator names")
	}
	if AssignKind(0).AssignOperatorName() != "" {
		t.Fatalf("unknown kind must have no operator name")
	}
}

func (w *testWorld) indexedAccess(getRecv, setRecv Receiver) (*CompoundArrayAccessCall, error) {
	w.t.Helper()
	return NewCompoundArrayAccessCall(
		w.plusOne(),
		[]ast.ExprID{w.expr(ast.ExprLit, `"k"`)},
		w.fnSymbol(w.mapGet, getRecv),
		w.fnSymbol(w.mapSet, setRecv),
	)
}

func TestCompoundArrayAccessCall(t *testing.T) {
	w := newTestWorld(t)
	m := w.receiver("m", w.mapType)
	call, err := w.indexedAccess(m, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(call.IndexArguments()) != 1 {
		t.Fatalf("indices = %v", call.IndexArguments())
	}
	if got := Symbols(call); !slices.Equal(got, []symbols.SymbolID{w.mapGet, w.intPlus, w.mapSet}) {
		t.Fatalf("symbols = %v", got)
	}

	_, err = w.indexedAccess(m, w.receiver("n", w.mapType))
	expectCode(t, err, diag.CallReceiverMismatch)
}

func TestCompoundArrayAccessRejects(t *testing.T) {
	w := newTestWorld(t)
	m := w.receiver("m", w.mapType)
	get, set := w.fnSymbol(w.mapGet, m), w.fnSymbol(w.mapSet, m)

	_, err := NewCompoundArrayAccessCall(w.plusOne(), nil, get, set)
	expectCode(t, err, diag.CallEmptyIndex)

	k := w.expr(ast.ExprLit, `"k"`)
	_, err = NewCompoundArrayAccessCall(w.plusOne(), []ast.ExprID{k, k}, get, set)
	expectCode(t, err, diag.CallDuplicateArgument)

	minus := w.fnSymbol(w.intMinus, w.receiver("i", w.intType))
	_, err = NewCompoundArrayAccessCall(w.plusOne(), []ast.ExprID{k}, get, minus)
	expectCode(t, err, diag.CallNonOperator)

	_, err = NewCompoundArrayAccessCall(w.plusOne(), []ast.ExprID{k}, get, nil)
	expectCode(t, err, diag.CallNilComponent)
}

func TestCompoundArrayAccessCopiesIndices(t *testing.T) {
	w := newTestWorld(t)
	m := w.receiver("m", w.mapType)
	k := w.expr(ast.ExprLit, `"k"`)
	indices := []ast.ExprID{k}
	call, err := NewCompoundArrayAccessCall(w.plusOne(), indices, w.fnSymbol(w.mapGet, m), w.fnSymbol(w.mapSet, m))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	indices[0] = ast.NoExprID
	call.IndexArguments()[0] = ast.NoExprID
	if call.IndexArguments()[0] != k {
		t.Fatalf("index arguments are aliased")
	}
}
