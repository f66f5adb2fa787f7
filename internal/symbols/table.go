package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"callmodel/internal/source"
	"callmodel/internal/types"
)

// ConstructorName is the reserved name of every constructor symbol.
const ConstructorName = "<init>"

// Hints provide optional capacity suggestions for the symbol table arenas.
type Hints struct{ Symbols uint }

// Table aggregates the symbol arena with the shared string and type interners.
// Declarations are single-threaded; reads are safe once declaration is done.
type Table struct {
	Symbols *Symbols
	Strings *source.Interner
	Types   *types.Interner
}

// NewTable builds a fresh table. If tys is nil, a fresh type interner is allocated.
func NewTable(h Hints, tys *types.Interner) *Table {
	symCap, err := safecast.Conv[uint32](h.Symbols)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	if tys == nil {
		tys = types.NewInterner(nil)
	}
	return &Table{
		Symbols: NewSymbols(symCap),
		Strings: tys.Strings,
		Types:   tys,
	}
}

// Get returns the symbol for id or nil.
func (t *Table) Get(id SymbolID) *Symbol {
	return t.Symbols.Get(id)
}

// Name returns the symbol's name or "<invalid>".
func (t *Table) Name(id SymbolID) string {
	sym := t.Get(id)
	if sym == nil {
		return "<invalid>"
	}
	return t.Strings.MustLookup(sym.Name)
}

// QualifiedName renders Owner.name for members and constructors.
func (t *Table) QualifiedName(id SymbolID) string {
	sym := t.Get(id)
	if sym == nil {
		return "<invalid>"
	}
	name := t.Strings.MustLookup(sym.Name)
	if sym.Kind == SymbolConstructor {
		return t.Name(sym.Owner) + "." + name
	}
	if sym.Flags&(SymbolFlagMember|SymbolFlagExtension) != 0 && sym.Receiver != types.NoTypeID {
		return t.Types.Format(sym.Receiver) + "." + name
	}
	return name
}

// DeclareClass declares a class whose instances have type typ.
func (t *Table) DeclareClass(name string, typ types.TypeID, flags SymbolFlags) SymbolID {
	return t.Symbols.New(&Symbol{
		Name:  t.Strings.Intern(name),
		Kind:  SymbolClass,
		Flags: flags,
		Type:  typ,
	})
}

// DeclareFunction declares a named function. receiver is the dispatch receiver
// type for members (SymbolFlagMember) or the extension receiver type
// (SymbolFlagExtension); owner is the declaring class, if any.
func (t *Table) DeclareFunction(name string, owner SymbolID, receiver, result types.TypeID, flags SymbolFlags) SymbolID {
	return t.Symbols.New(&Symbol{
		Name:     t.Strings.Intern(name),
		Kind:     SymbolFunction,
		Flags:    flags,
		Owner:    owner,
		Type:     result,
		Receiver: receiver,
	})
}

// DeclareConstructor declares a constructor of class.
func (t *Table) DeclareConstructor(class SymbolID, flags SymbolFlags) SymbolID {
	cls := t.Get(class)
	if cls == nil || cls.Kind != SymbolClass {
		panic(fmt.Errorf("symbols: constructor owner %d is not a class", class))
	}
	return t.Symbols.New(&Symbol{
		Name:  t.Strings.Intern(ConstructorName),
		Kind:  SymbolConstructor,
		Flags: flags | cls.Flags&SymbolFlagAnnotation,
		Owner: class,
		Type:  cls.Type,
	})
}

// DeclareVariable declares a local variable or property of type typ.
func (t *Table) DeclareVariable(kind SymbolKind, name string, owner SymbolID, receiver, typ types.TypeID, flags SymbolFlags) SymbolID {
	if kind != SymbolLocalVar && kind != SymbolProperty {
		panic(fmt.Errorf("symbols: %s is not a variable kind", kind))
	}
	return t.Symbols.New(&Symbol{
		Name:     t.Strings.Intern(name),
		Kind:     kind,
		Flags:    flags,
		Owner:    owner,
		Type:     typ,
		Receiver: receiver,
	})
}

// AddTypeParam declares a type parameter on owner and returns its symbol and type.
func (t *Table) AddTypeParam(owner SymbolID, name string) (SymbolID, types.TypeID) {
	typ := t.Types.TypeParam(name)
	id := t.Symbols.New(&Symbol{
		Name:  t.Strings.Intern(name),
		Kind:  SymbolTypeParam,
		Owner: owner,
		Type:  typ,
	})
	if sym := t.Get(owner); sym != nil {
		sym.TypeParams = append(sym.TypeParams, id)
	}
	return id, typ
}

// AddParam appends a value parameter to the function-like symbol fn.
func (t *Table) AddParam(fn SymbolID, name string, typ types.TypeID, flags SymbolFlags) SymbolID {
	owner := t.Get(fn)
	if owner == nil || !owner.Kind.IsFunctionLike() {
		panic(fmt.Errorf("symbols: parameter owner %d is not function-like", fn))
	}
	id := t.Symbols.New(&Symbol{
		Name:  t.Strings.Intern(name),
		Kind:  SymbolValueParam,
		Flags: flags,
		Owner: fn,
		Type:  typ,
	})
	owner = t.Get(fn)
	owner.Params = append(owner.Params, id)
	return id
}

// SetResult replaces the declared return type of fn, for results that mention
// type parameters declared after the function itself.
func (t *Table) SetResult(fn SymbolID, result types.TypeID) {
	if sym := t.Get(fn); sym != nil && sym.Kind.IsFunctionLike() {
		sym.Type = result
	}
}
