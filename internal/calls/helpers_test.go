package calls

import (
	"errors"
	"testing"

	"callmodel/internal/ast"
	"callmodel/internal/diag"
	"callmodel/internal/lifetime"
	"callmodel/internal/source"
	"callmodel/internal/symbols"
	"callmodel/internal/types"
)

type testWorld struct {
	t     *testing.T
	table *symbols.Table
	exprs *ast.Exprs
	tok   *lifetime.Token

	intType  types.TypeID
	strType  types.TypeID
	mapType  types.TypeID
	intCls   symbols.SymbolID
	intPlus  symbols.SymbolID
	intInc   symbols.SymbolID
	intMinus symbols.SymbolID // not an operator
	mapGet   symbols.SymbolID
	mapSet   symbols.SymbolID
	listOf   symbols.SymbolID // fun <T> listOf(vararg elements: T): List<T>
	listOfT  symbols.SymbolID
	pair     symbols.SymbolID // fun pair(a: Int, b: Int)
	annCtor  symbols.SymbolID
	baseCtor symbols.SymbolID
	counter  symbols.SymbolID // var counter: Int
	constant symbols.SymbolID // val constant: Int
}

func newTestWorld(t *testing.T) *testWorld {
	t.Helper()
	table := symbols.NewTable(symbols.Hints{}, nil)
	b := table.Types.Builtins()
	w := &testWorld{
		t:       t,
		table:   table,
		exprs:   ast.NewExprs(16),
		tok:     lifetime.NewToken(t.Name()),
		intType: b.Int,
		strType: b.String,
	}
	w.mapType = table.Types.Named("MutableMap", b.String, b.Int)

	w.intCls = table.DeclareClass("Int", b.Int, symbols.SymbolFlagPublic)
	w.intPlus = table.DeclareFunction("plus", w.intCls, b.Int, b.Int, symbols.SymbolFlagMember|symbols.SymbolFlagOperator)
	table.AddParam(w.intPlus, "other", b.Int, 0)
	w.intInc = table.DeclareFunction("inc", w.intCls, b.Int, b.Int, symbols.SymbolFlagMember|symbols.SymbolFlagOperator)
	w.intMinus = table.DeclareFunction("minusNotOperator", w.intCls, b.Int, b.Int, symbols.SymbolFlagMember)
	table.AddParam(w.intMinus, "other", b.Int, 0)

	mapCls := table.DeclareClass("MutableMap", w.mapType, 0)
	w.mapGet = table.DeclareFunction("get", mapCls, w.mapType, table.Types.Nullable(b.Int), symbols.SymbolFlagMember|symbols.SymbolFlagOperator)
	table.AddParam(w.mapGet, "key", b.String, 0)
	w.mapSet = table.DeclareFunction("set", mapCls, w.mapType, b.Unit, symbols.SymbolFlagMember|symbols.SymbolFlagOperator)
	table.AddParam(w.mapSet, "key", b.String, 0)
	table.AddParam(w.mapSet, "value", b.Int, 0)

	w.listOf = table.DeclareFunction("listOf", symbols.NoSymbolID, types.NoTypeID, types.NoTypeID, 0)
	var tType types.TypeID
	w.listOfT, tType = table.AddTypeParam(w.listOf, "T")
	table.AddParam(w.listOf, "elements", tType, symbols.SymbolFlagVararg)
	table.SetResult(w.listOf, table.Types.Named("List", tType))

	w.pair = table.DeclareFunction("pair", symbols.NoSymbolID, types.NoTypeID, b.Unit, 0)
	table.AddParam(w.pair, "a", b.Int, 0)
	table.AddParam(w.pair, "b", b.Int, 0)

	annCls := table.DeclareClass("Deprecated", table.Types.Named("Deprecated"), symbols.SymbolFlagAnnotation)
	w.annCtor = table.DeclareConstructor(annCls, 0)
	table.AddParam(w.annCtor, "message", b.String, 0)

	baseCls := table.DeclareClass("Base", table.Types.Named("Base"), 0)
	w.baseCtor = table.DeclareConstructor(baseCls, 0)
	table.AddParam(w.baseCtor, "i", b.Int, 0)

	w.counter = table.DeclareVariable(symbols.SymbolLocalVar, "counter", symbols.NoSymbolID, types.NoTypeID, b.Int, symbols.SymbolFlagMutable)
	w.constant = table.DeclareVariable(symbols.SymbolLocalVar, "constant", symbols.NoSymbolID, types.NoTypeID, b.Int, 0)

	if err := table.Validate(); err != nil {
		t.Fatalf("world: %v", err)
	}
	return w
}

func (w *testWorld) expr(kind ast.ExprKind, text string) ast.ExprID {
	n := uint32(w.exprs.Arena.Len())
	return w.exprs.New(kind, source.Span{File: 1, Start: n * 10, End: n*10 + uint32(len(text))}, text)
}

func (w *testWorld) fnSig(fn symbols.SymbolID) *symbols.FunctionSignature {
	w.t.Helper()
	sig, err := w.table.FunctionSignatureOf(fn)
	if err != nil {
		w.t.Fatalf("signature of %d: %v", fn, err)
	}
	return sig
}

func (w *testWorld) varSig(v symbols.SymbolID) *symbols.VariableSignature {
	w.t.Helper()
	sig, err := w.table.VariableSignatureOf(v)
	if err != nil {
		w.t.Fatalf("signature of %d: %v", v, err)
	}
	return sig
}

func (w *testWorld) receiver(text string, typ types.TypeID) *ExprReceiver {
	return NewExprReceiver(w.tok, w.expr(ast.ExprIdent, text), typ)
}

func (w *testWorld) fnSymbol(fn symbols.SymbolID, dispatch Receiver) *FunctionSymbol {
	w.t.Helper()
	pas, err := NewPartiallyApplied(w.tok, w.fnSig(fn), dispatch, nil)
	if err != nil {
		w.t.Fatalf("partially apply %d: %v", fn, err)
	}
	return pas
}

func (w *testWorld) varSymbol(v symbols.SymbolID) *VariableSymbol {
	w.t.Helper()
	pas, err := NewPartiallyApplied(w.tok, w.varSig(v), nil, nil)
	if err != nil {
		w.t.Fatalf("partially apply %d: %v", v, err)
	}
	return pas
}

// args maps exprs to the signature's parameters positionally.
func (w *testWorld) args(sig *symbols.FunctionSignature, exprs ...ast.ExprID) *ArgumentMapping {
	w.t.Helper()
	params := sig.ValueParameters()
	b := NewArgumentMapping(w.tok, sig)
	for i, e := range exprs {
		p := params[len(params)-1]
		if i < len(params) {
			p = params[i]
		}
		b.Add(e, p)
	}
	m, err := b.Build()
	if err != nil {
		w.t.Fatalf("argument mapping: %v", err)
	}
	return m
}

func (w *testWorld) plusOne() *CompoundAssign {
	w.t.Helper()
	op, err := NewCompoundAssign(AssignPlus, w.expr(ast.ExprLit, "1"), w.fnSymbol(w.intPlus, w.receiver("i", w.intType)))
	if err != nil {
		w.t.Fatalf("compound assign: %v", err)
	}
	return op
}

func expectCode(t *testing.T, err error, want diag.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", want.ID())
	}
	if !errors.Is(err, ErrInvariant) || CodeOf(err) != want {
		t.Fatalf("expected %s, got %v", want.ID(), err)
	}
}

func expectStale(t *testing.T, name string, read func()) {
	t.Helper()
	defer func() {
		r := recover()
		if _, ok := r.(*lifetime.StaleAccessError); !ok {
			t.Fatalf("%s: expected stale access panic, got %v", name, r)
		}
	}()
	read()
}
