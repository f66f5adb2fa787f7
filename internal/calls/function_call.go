package calls

import (
	"callmodel/internal/diag"
	"callmodel/internal/lifetime"
	"callmodel/internal/symbols"
)

type functionCall struct {
	symbol   *FunctionSymbol
	args     *ArgumentMapping
	typeArgs *TypeArgumentMapping
}

func (c *functionCall) Token() *lifetime.Token { return c.symbol.Token() }

// PartiallyApplied returns the function and its receivers.
func (c *functionCall) PartiallyApplied() *FunctionSymbol { return lifetime.Valid(c, c.symbol) }

// ArgumentMapping returns the argument-to-parameter mapping.
func (c *functionCall) ArgumentMapping() *ArgumentMapping { return lifetime.Valid(c, c.args) }

func (c *functionCall) memberSymbol() symbols.SymbolID { return c.symbol.signature.Symbol() }

func (*functionCall) isCall()         {}
func (*functionCall) isFunctionCall() {}

// newFunctionCall validates the parts shared by all function-shaped calls.
// typeArgs may be nil for calls that never carry type arguments.
func newFunctionCall(pas *FunctionSymbol, args *ArgumentMapping, typeArgs *TypeArgumentMapping, kinds ...symbols.SymbolKind) (functionCall, error) {
	if pas == nil || args == nil {
		return functionCall{}, violation(diag.CallNilComponent, "function call without symbol or argument mapping")
	}
	owners := []lifetime.Owner{args}
	if typeArgs != nil {
		owners = append(owners, typeArgs)
	}
	if err := checkToken(pas.Token(), owners...); err != nil {
		return functionCall{}, err
	}
	sig := pas.signature
	if !kindIn(sig.SymbolKind(), kinds) {
		return functionCall{}, violation(diag.CallWrongSymbolKind, "symbol %d is a %s", sig.Symbol(), sig.SymbolKind())
	}
	if !args.signature.SameAs(sig) {
		return functionCall{}, violation(diag.CallUnknownParameter, "argument mapping was built for symbol %d, not %d", args.signature.Symbol(), sig.Symbol())
	}
	if typeArgs != nil {
		if err := typeArgs.matches(sig); err != nil {
			return functionCall{}, err
		}
	}
	return functionCall{symbol: pas, args: args, typeArgs: typeArgs}, nil
}

func kindIn(k symbols.SymbolKind, kinds []symbols.SymbolKind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// SimpleFunctionCall is a call to a function or constructor.
type SimpleFunctionCall struct {
	functionCall
	implicitInvoke bool
}

// NewSimpleFunctionCall builds a function call. implicitInvoke marks `value(args)`
// resolved to the value's invoke operator; the symbol must then be an operator.
func NewSimpleFunctionCall(pas *FunctionSymbol, args *ArgumentMapping, typeArgs *TypeArgumentMapping, implicitInvoke bool) (*SimpleFunctionCall, error) {
	if typeArgs == nil {
		return nil, violation(diag.CallNilComponent, "function call without type argument mapping")
	}
	base, err := newFunctionCall(pas, args, typeArgs, symbols.SymbolFunction, symbols.SymbolConstructor)
	if err != nil {
		return nil, err
	}
	if implicitInvoke && pas.signature.SymbolFlags()&symbols.SymbolFlagOperator == 0 {
		return nil, violation(diag.CallNonOperator, "implicit invoke of non-operator symbol %d", pas.signature.Symbol())
	}
	return &SimpleFunctionCall{functionCall: base, implicitInvoke: implicitInvoke}, nil
}

func (c *SimpleFunctionCall) Kind() Kind { return lifetime.Valid(c, KindSimpleFunction) }

func (c *SimpleFunctionCall) TypeArguments() *TypeArgumentMapping {
	return lifetime.Valid(c, c.typeArgs)
}

// IsImplicitInvoke reports whether the call applies a value through its invoke
// operator rather than naming a function directly.
func (c *SimpleFunctionCall) IsImplicitInvoke() bool { return lifetime.Valid(c, c.implicitInvoke) }

// AnnotationCall is the constructor call behind an annotation use.
type AnnotationCall struct {
	functionCall
}

// NewAnnotationCall builds an annotation call. Annotation constructors are not
// generic here, so no type argument mapping is taken.
func NewAnnotationCall(pas *FunctionSymbol, args *ArgumentMapping) (*AnnotationCall, error) {
	base, err := newFunctionCall(pas, args, nil, symbols.SymbolConstructor)
	if err != nil {
		return nil, err
	}
	if pas.signature.SymbolFlags()&symbols.SymbolFlagAnnotation == 0 {
		return nil, violation(diag.CallWrongSymbolKind, "constructor %d does not belong to an annotation class", pas.signature.Symbol())
	}
	if len(pas.signature.TypeParameters()) != 0 {
		return nil, violation(diag.CallTypeArgumentKeys, "annotation constructor %d is generic", pas.signature.Symbol())
	}
	return &AnnotationCall{functionCall: base}, nil
}

func (c *AnnotationCall) Kind() Kind { return lifetime.Valid(c, KindAnnotation) }

// TypeArguments is always empty.
func (c *AnnotationCall) TypeArguments() *TypeArgumentMapping {
	lifetime.Assert(c)
	return NoTypeArguments(c.Token())
}

// DelegationKind tells where a delegated constructor call goes.
type DelegationKind uint8

const (
	// SuperCall delegates to a supertype constructor.
	SuperCall DelegationKind = iota + 1
	// ThisCall delegates to another constructor of the same class.
	ThisCall
)

func (k DelegationKind) String() string {
	switch k {
	case SuperCall:
		return "SUPER_CALL"
	case ThisCall:
		return "THIS_CALL"
	default:
		return "UNKNOWN"
	}
}

// DelegatedConstructorCall is `super(...)` or `this(...)` in a constructor.
type DelegatedConstructorCall struct {
	functionCall
	kind DelegationKind
}

// NewDelegatedConstructorCall builds a constructor delegation.
func NewDelegatedConstructorCall(pas *FunctionSymbol, kind DelegationKind, args *ArgumentMapping, typeArgs *TypeArgumentMapping) (*DelegatedConstructorCall, error) {
	if kind != SuperCall && kind != ThisCall {
		return nil, violation(diag.CallUnknownKind, "unknown delegation kind %d", kind)
	}
	if typeArgs == nil {
		return nil, violation(diag.CallNilComponent, "delegated constructor call without type argument mapping")
	}
	base, err := newFunctionCall(pas, args, typeArgs, symbols.SymbolConstructor)
	if err != nil {
		return nil, err
	}
	return &DelegatedConstructorCall{functionCall: base, kind: kind}, nil
}

func (c *DelegatedConstructorCall) Kind() Kind { return lifetime.Valid(c, KindDelegatedConstructor) }

func (c *DelegatedConstructorCall) TypeArguments() *TypeArgumentMapping {
	return lifetime.Valid(c, c.typeArgs)
}

// DelegationKind reports whether this is a super or this delegation.
func (c *DelegatedConstructorCall) DelegationKind() DelegationKind { return lifetime.Valid(c, c.kind) }
