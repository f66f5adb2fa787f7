package types

import (
	"fmt"

	"fortio.org/safecast"

	"callmodel/internal/source"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid TypeID
	Unit    TypeID
	Nothing TypeID
	Any     TypeID
	Bool    TypeID
	Int     TypeID
	String  TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Registration is single-threaded; lookups are safe once registration is done.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
	nominals []NominalInfo
	params   []source.StringID
	fns      []FnInfo
	Strings  *source.Interner
}

// NewInterner constructs an interner seeded with built-in primitives.
// If strings is nil, a fresh string interner is allocated.
func NewInterner(strings *source.Interner) *Interner {
	if strings == nil {
		strings = source.NewInterner()
	}
	in := &Interner{
		index:   make(map[typeKey]TypeID, 64),
		Strings: strings,
	}
	in.nominals = append(in.nominals, NominalInfo{}) // reserve 0 as invalid sentinel
	in.params = append(in.params, source.NoStringID)
	in.fns = append(in.fns, FnInfo{})
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Nothing = in.Intern(Type{Kind: KindNothing})
	in.builtins.Any = in.Intern(Type{Kind: KindAny})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Int = in.Intern(Type{Kind: KindInt})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// Nullable returns T? for elem; nullable types are not nested.
func (in *Interner) Nullable(elem TypeID) TypeID {
	if tt, ok := in.Lookup(elem); ok && tt.Kind == KindNullable {
		return elem
	}
	return in.Intern(MakeNullable(elem))
}

// TypeParam registers a fresh type parameter type named name.
// Two calls with the same name yield distinct types.
func (in *Interner) TypeParam(name string) TypeID {
	in.params = append(in.params, in.Strings.Intern(name))
	slot, err := safecast.Conv[uint32](len(in.params) - 1)
	if err != nil {
		panic(fmt.Errorf("type param overflow: %w", err))
	}
	return in.internRaw(Type{Kind: KindTypeParam, Payload: slot})
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[typeKey(t)] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Payload uint32
}
