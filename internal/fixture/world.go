// Package fixture declares a small world of classes, operators and variables
// and resolves call-shaped expressions against it the way a compiler front end
// would. It feeds the scenarios used by tests and by the CLI.
package fixture

import (
	"fmt"

	"callmodel/internal/ast"
	"callmodel/internal/source"
	"callmodel/internal/symbols"
	"callmodel/internal/types"
)

// World holds the declarations every scenario resolves against.
type World struct {
	Table *symbols.Table
	Exprs *ast.Exprs

	Int, String, NullableString, Unit, NullableAny types.TypeID
	MutableList, MutableMap, MultiMap, Counts       types.TypeID
	Formatter                                       types.TypeID
	Base, Derived, Deprecated                       types.TypeID

	BaseClass, DerivedClass symbols.SymbolID

	BaseInit, DerivedInit, DerivedEmptyInit, DeprecatedInit symbols.SymbolID
	ListOf, ListOfT                                         symbols.SymbolID
	ListAdd                                                 symbols.SymbolID

	// Variables in scope of the scenarios.
	I, N, S, M, Map, Multi, Tally, F, Count symbols.SymbolID

	file source.FileID
	next uint32
}

// NewWorld declares the fixture world.
func NewWorld() (*World, error) {
	table := symbols.NewTable(symbols.Hints{Symbols: 64}, nil)
	ty := table.Types
	b := ty.Builtins()
	w := &World{
		Table:          table,
		Exprs:          ast.NewExprs(64),
		Int:            b.Int,
		String:         b.String,
		NullableString: ty.Nullable(b.String),
		Unit:           b.Unit,
		NullableAny:    ty.Nullable(b.Any),
		MutableList:    ty.Named("MutableList", b.String),
		MutableMap:     ty.Named("MutableMap", b.String, b.String),
		MultiMap:       ty.Named("MultiMap"),
		Counts:         ty.Named("Counts"),
		Formatter:      ty.Named("Formatter"),
		Base:           ty.Named("Base"),
		Derived:        ty.Named("Derived"),
		Deprecated:     ty.Named("Deprecated"),
		file:           1,
	}
	w.declareInt()
	w.declareString()
	w.declareContainers()
	w.declareClasses()
	w.declareTopLevel()
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("fixture world: %w", err)
	}
	return w, nil
}

const (
	member   = symbols.SymbolFlagPublic | symbols.SymbolFlagMember
	operator = member | symbols.SymbolFlagOperator
)

func (w *World) method(owner symbols.SymbolID, recv types.TypeID, name string, flags symbols.SymbolFlags, result types.TypeID, params ...param) symbols.SymbolID {
	fn := w.Table.DeclareFunction(name, owner, recv, result, flags)
	for _, p := range params {
		w.Table.AddParam(fn, p.name, p.typ, p.flags)
	}
	return fn
}

type param struct {
	name  string
	typ   types.TypeID
	flags symbols.SymbolFlags
}

func (w *World) declareInt() {
	cls := w.Table.DeclareClass("Int", w.Int, symbols.SymbolFlagPublic)
	for _, name := range []string{"plus", "minus", "times", "div", "rem"} {
		w.method(cls, w.Int, name, operator, w.Int, param{name: "other", typ: w.Int})
	}
	w.method(cls, w.Int, "inc", operator, w.Int)
	w.method(cls, w.Int, "dec", operator, w.Int)
}

func (w *World) declareString() {
	cls := w.Table.DeclareClass("String", w.String, symbols.SymbolFlagPublic)
	w.method(cls, w.String, "plus", operator, w.String, param{name: "other", typ: w.NullableAny})
	// operator fun String?.plus(other: Any?): String
	w.method(symbols.NoSymbolID, w.NullableString, "plus",
		symbols.SymbolFlagPublic|symbols.SymbolFlagExtension|symbols.SymbolFlagOperator,
		w.String, param{name: "other", typ: w.NullableAny})
}

func (w *World) declareContainers() {
	boolType := w.Table.Types.Builtins().Bool

	list := w.Table.DeclareClass("MutableList", w.MutableList, symbols.SymbolFlagPublic)
	w.ListAdd = w.method(list, w.MutableList, "add", member, boolType, param{name: "element", typ: w.String})
	w.method(list, w.MutableList, "plusAssign", operator, w.Unit, param{name: "element", typ: w.String})

	m := w.Table.DeclareClass("MutableMap", w.MutableMap, symbols.SymbolFlagPublic)
	w.method(m, w.MutableMap, "get", operator, w.NullableString, param{name: "key", typ: w.String})
	w.method(m, w.MutableMap, "set", operator, w.Unit, param{name: "key", typ: w.String}, param{name: "value", typ: w.String})

	// MultiMap has no set: its get hands out a mutable list.
	multi := w.Table.DeclareClass("MultiMap", w.MultiMap, symbols.SymbolFlagPublic)
	w.method(multi, w.MultiMap, "get", operator, w.MutableList, param{name: "key", typ: w.String})

	counts := w.Table.DeclareClass("Counts", w.Counts, symbols.SymbolFlagPublic)
	w.method(counts, w.Counts, "get", operator, w.Int, param{name: "key", typ: w.String})
	w.method(counts, w.Counts, "set", operator, w.Unit, param{name: "key", typ: w.String}, param{name: "value", typ: w.Int})

	f := w.Table.DeclareClass("Formatter", w.Formatter, symbols.SymbolFlagPublic)
	w.method(f, w.Formatter, "invoke", operator, w.String, param{name: "value", typ: w.Int})
}

func (w *World) declareClasses() {
	w.BaseClass = w.Table.DeclareClass("Base", w.Base, symbols.SymbolFlagPublic)
	w.BaseInit = w.Table.DeclareConstructor(w.BaseClass, symbols.SymbolFlagPublic)
	w.Table.AddParam(w.BaseInit, "i", w.Int, 0)

	w.DerivedClass = w.Table.DeclareClass("Derived", w.Derived, symbols.SymbolFlagPublic)
	w.DerivedInit = w.Table.DeclareConstructor(w.DerivedClass, symbols.SymbolFlagPublic)
	w.Table.AddParam(w.DerivedInit, "i", w.Int, 0)
	w.DerivedEmptyInit = w.Table.DeclareConstructor(w.DerivedClass, symbols.SymbolFlagPublic)
	w.Count = w.Table.DeclareVariable(symbols.SymbolProperty, "count", w.DerivedClass, w.Derived, w.Int, member|symbols.SymbolFlagMutable)

	ann := w.Table.DeclareClass("Deprecated", w.Deprecated, symbols.SymbolFlagPublic|symbols.SymbolFlagAnnotation)
	w.DeprecatedInit = w.Table.DeclareConstructor(ann, symbols.SymbolFlagPublic)
	w.Table.AddParam(w.DeprecatedInit, "message", w.String, 0)
}

func (w *World) declareTopLevel() {
	w.ListOf = w.Table.DeclareFunction("listOf", symbols.NoSymbolID, types.NoTypeID, types.NoTypeID, symbols.SymbolFlagPublic)
	var t types.TypeID
	w.ListOfT, t = w.Table.AddTypeParam(w.ListOf, "T")
	w.Table.AddParam(w.ListOf, "elements", t, symbols.SymbolFlagVararg)
	w.Table.SetResult(w.ListOf, w.Table.Types.Named("List", t))

	local := func(name string, typ types.TypeID, flags symbols.SymbolFlags) symbols.SymbolID {
		return w.Table.DeclareVariable(symbols.SymbolLocalVar, name, symbols.NoSymbolID, types.NoTypeID, typ, flags)
	}
	w.I = local("i", w.Int, symbols.SymbolFlagMutable)
	w.N = local("n", w.Int, 0)
	w.S = local("s", w.NullableString, symbols.SymbolFlagMutable)
	w.M = local("m", w.MutableList, 0)
	w.Map = local("map", w.MutableMap, 0)
	w.Multi = local("multi", w.MultiMap, 0)
	w.Tally = local("tally", w.Counts, 0)
	w.F = local("f", w.Formatter, 0)
}

// Expr allocates a source expression. Spans are laid out one after another in
// a single synthetic file.
func (w *World) Expr(kind ast.ExprKind, text string) ast.ExprID {
	start := w.next
	w.next += uint32(len(text)) + 1
	return w.Exprs.New(kind, source.Span{File: w.file, Start: start, End: start + uint32(len(text))}, text)
}

// Operator finds an operator function callable on recv: a member of recv's
// class or an extension on recv.
func (w *World) Operator(recv types.TypeID, name string) (symbols.SymbolID, bool) {
	return w.find(recv, name, func(sym *symbols.Symbol) bool {
		return sym.Flags&symbols.SymbolFlagOperator != 0
	})
}

// Member finds any function named name callable on recv.
func (w *World) Member(recv types.TypeID, name string) (symbols.SymbolID, bool) {
	return w.find(recv, name, func(*symbols.Symbol) bool { return true })
}

func (w *World) find(recv types.TypeID, name string, accept func(*symbols.Symbol) bool) (symbols.SymbolID, bool) {
	for idx, sym := range w.Table.Symbols.Data() {
		if sym.Kind != symbols.SymbolFunction || sym.Receiver != recv || !accept(&sym) {
			continue
		}
		if w.Table.Strings.MustLookup(sym.Name) == name {
			return symbols.SymbolID(idx + 1), true
		}
	}
	return symbols.NoSymbolID, false
}

// TypeOf returns the declared type of a variable or the result of a function.
func (w *World) TypeOf(sym symbols.SymbolID) types.TypeID {
	if s := w.Table.Get(sym); s != nil {
		return s.Type
	}
	return types.NoTypeID
}
