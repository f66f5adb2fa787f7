package calls

import (
	"testing"

	"callmodel/internal/ast"
)

type kindVisitor struct{}

func (kindVisitor) VisitSimpleFunctionCall(*SimpleFunctionCall) Kind { return KindSimpleFunction }
func (kindVisitor) VisitAnnotationCall(*AnnotationCall) Kind         { return KindAnnotation }
func (kindVisitor) VisitDelegatedConstructorCall(*DelegatedConstructorCall) Kind {
	return KindDelegatedConstructor
}
func (kindVisitor) VisitSimpleVariableAccessCall(*SimpleVariableAccessCall) Kind {
	return KindSimpleVariableAccess
}
func (kindVisitor) VisitCompoundVariableAccessCall(*CompoundVariableAccessCall) Kind {
	return KindCompoundVariableAccess
}
func (kindVisitor) VisitCompoundArrayAccessCall(*CompoundArrayAccessCall) Kind {
	return KindCompoundArrayAccess
}

func (w *testWorld) everyVariant() []Call {
	w.t.Helper()
	must := func(c Call, err error) Call {
		w.t.Helper()
		if err != nil {
			w.t.Fatalf("build call: %v", err)
		}
		return c
	}
	pair := w.fnSymbol(w.pair, nil)
	ann := w.fnSymbol(w.annCtor, nil)
	base := w.fnSymbol(w.baseCtor, nil)
	m := w.receiver("m", w.mapType)
	return []Call{
		must(NewSimpleFunctionCall(pair, w.args(pair.Signature(), w.expr(ast.ExprLit, "1"), w.expr(ast.ExprLit, "2")), NoTypeArguments(w.tok), false)),
		must(NewAnnotationCall(ann, w.args(ann.Signature(), w.expr(ast.ExprLit, `"x"`)))),
		must(NewDelegatedConstructorCall(base, ThisCall, w.args(base.Signature(), w.expr(ast.ExprLit, "0")), NoTypeArguments(w.tok))),
		must(NewSimpleVariableAccessCall(w.varSymbol(w.counter), NoTypeArguments(w.tok), VariableRead{})),
		must(NewCompoundVariableAccessCall(w.varSymbol(w.counter), w.plusOne())),
		must(w.indexedAccess(m, m)),
	}
}

func TestAcceptDispatchesEveryVariant(t *testing.T) {
	w := newTestWorld(t)
	for _, c := range w.everyVariant() {
		if got := Accept[Kind](c, kindVisitor{}); got != c.Kind() {
			t.Fatalf("Accept(%s) visited %s", c.Kind(), got)
		}
	}
}

func TestKindMatchesInterfaces(t *testing.T) {
	w := newTestWorld(t)
	for _, c := range w.everyVariant() {
		_, isFn := c.(FunctionCall)
		_, isCompound := c.(CompoundAccessCall)
		_, isVar := c.(VariableAccessCall)
		if isFn != c.Kind().IsFunction() || isCompound != c.Kind().IsCompound() {
			t.Fatalf("%s: interface membership disagrees with kind", c.Kind())
		}
		if isVar != (c.Kind() == KindSimpleVariableAccess) {
			t.Fatalf("%s: variable access membership is wrong", c.Kind())
		}
		if len(Symbols(c)) == 0 {
			t.Fatalf("%s: no symbols", c.Kind())
		}
	}
}

func TestAcceptPanicsOnNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Accept(nil) did not panic")
		}
	}()
	Accept[Kind](nil, kindVisitor{})
}
