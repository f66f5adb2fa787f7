package calls

import (
	"iter"
	"maps"
	"slices"

	"callmodel/internal/ast"
	"callmodel/internal/diag"
	"callmodel/internal/lifetime"
	"callmodel/internal/symbols"
	"callmodel/internal/types"
)

// ArgumentMapping maps argument expressions to the parameters they bind, in
// source order. A parameter appears more than once only if it is vararg.
type ArgumentMapping struct {
	token     *lifetime.Token
	signature *symbols.FunctionSignature
	args      []ast.ExprID
	params    []*symbols.VariableSignature
	index     map[ast.ExprID]int
}

// ArgumentMappingBuilder accumulates arguments in source order. The first
// violation sticks and is returned by Build.
type ArgumentMappingBuilder struct {
	m   *ArgumentMapping
	err error
}

// NewArgumentMapping starts a mapping for a call to sig.
func NewArgumentMapping(tok *lifetime.Token, sig *symbols.FunctionSignature) *ArgumentMappingBuilder {
	b := &ArgumentMappingBuilder{
		m: &ArgumentMapping{
			token:     tok,
			signature: sig,
			index:     make(map[ast.ExprID]int),
		},
	}
	if sig == nil {
		b.err = violation(diag.CallNilComponent, "argument mapping without signature")
	}
	return b
}

// Add binds arg to param, which must be one of the signature's parameters.
func (b *ArgumentMappingBuilder) Add(arg ast.ExprID, param *symbols.VariableSignature) *ArgumentMappingBuilder {
	if b.err != nil {
		return b
	}
	m := b.m
	switch {
	case !arg.IsValid():
		b.err = violation(diag.CallNilComponent, "argument without expression")
		return b
	case param == nil:
		b.err = violation(diag.CallNilComponent, "argument %d without parameter", arg)
		return b
	}
	if _, dup := m.index[arg]; dup {
		b.err = violation(diag.CallDuplicateArgument, "expression %d is mapped twice", arg)
		return b
	}
	known := slices.ContainsFunc(m.signature.ValueParameters(), func(p *symbols.VariableSignature) bool {
		return p.SameAs(param)
	})
	if !known {
		b.err = violation(diag.CallUnknownParameter, "parameter %d is not declared by symbol %d", param.Symbol(), m.signature.Symbol())
		return b
	}
	repeated := slices.ContainsFunc(m.params, func(p *symbols.VariableSignature) bool {
		return p.SameAs(param)
	})
	if repeated && !param.IsVararg() {
		b.err = violation(diag.CallNonVarargRepeated, "parameter %d is not vararg but receives several arguments", param.Symbol())
		return b
	}
	m.index[arg] = len(m.args)
	m.args = append(m.args, arg)
	m.params = append(m.params, param)
	return b
}

// Build publishes the mapping.
func (b *ArgumentMappingBuilder) Build() (*ArgumentMapping, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.m.token.AssertLive(); err != nil {
		return nil, err
	}
	m := b.m
	b.m = nil
	b.err = violation(diag.CallNilComponent, "argument mapping builder reused after Build")
	return m, nil
}

func (m *ArgumentMapping) Token() *lifetime.Token { return m.token }

// Len returns the number of mapped arguments.
func (m *ArgumentMapping) Len() int { return lifetime.Valid(m, len(m.args)) }

// Lookup returns the parameter bound by arg.
func (m *ArgumentMapping) Lookup(arg ast.ExprID) (*symbols.VariableSignature, bool) {
	lifetime.Assert(m)
	i, ok := m.index[arg]
	if !ok {
		return nil, false
	}
	return m.params[i], true
}

// Arguments returns the argument expressions in source order.
func (m *ArgumentMapping) Arguments() []ast.ExprID {
	return lifetime.Valid(m, slices.Clone(m.args))
}

// ArgumentsFor returns, in source order, the arguments bound to param.
func (m *ArgumentMapping) ArgumentsFor(param symbols.SymbolID) []ast.ExprID {
	lifetime.Assert(m)
	var out []ast.ExprID
	for i, p := range m.params {
		if p.Symbol() == param {
			out = append(out, m.args[i])
		}
	}
	return out
}

// All iterates argument/parameter pairs in source order. The token is
// checked when iteration starts and before every step, so an empty mapping
// of a closed session fails too.
func (m *ArgumentMapping) All() iter.Seq2[ast.ExprID, *symbols.VariableSignature] {
	return func(yield func(ast.ExprID, *symbols.VariableSignature) bool) {
		lifetime.Assert(m)
		for i := range m.args {
			lifetime.Assert(m)
			if !yield(m.args[i], m.params[i]) {
				return
			}
		}
	}
}

// Inference records the outcome of type-argument inference.
type Inference uint8

const (
	// InferenceNotApplicable: the signature declares no type parameters.
	InferenceNotApplicable Inference = iota
	// InferenceSucceeded: every declared type parameter has a type.
	InferenceSucceeded
	// InferenceFailed: the signature is generic but inference gave up.
	InferenceFailed
)

func (i Inference) String() string {
	switch i {
	case InferenceNotApplicable:
		return "not-applicable"
	case InferenceSucceeded:
		return "succeeded"
	case InferenceFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TypeArgumentMapping maps the declared type parameters of a signature to the
// inferred types. It is empty exactly when Inference is not Succeeded.
type TypeArgumentMapping struct {
	token     *lifetime.Token
	inference Inference
	keys      []symbols.SymbolID
	values    map[symbols.SymbolID]types.TypeID
}

// InferredTypeArguments records successful inference. The key set of args must
// equal sig.TypeParameters(); a non-generic sig requires an empty args.
func InferredTypeArguments(tok *lifetime.Token, sig symbols.Signature, args map[symbols.SymbolID]types.TypeID) (*TypeArgumentMapping, error) {
	if sig == nil {
		return nil, violation(diag.CallNilComponent, "type arguments without signature")
	}
	if err := tok.AssertLive(); err != nil {
		return nil, err
	}
	declared := sig.TypeParameters()
	if len(declared) == 0 {
		if len(args) != 0 {
			return nil, violation(diag.CallTypeArgumentKeys, "symbol %d declares no type parameters but got %d arguments", sig.Symbol(), len(args))
		}
		return NoTypeArguments(tok), nil
	}
	if len(args) != len(declared) {
		return nil, violation(diag.CallTypeArgumentKeys, "symbol %d declares %d type parameters, got %d", sig.Symbol(), len(declared), len(args))
	}
	for _, tp := range declared {
		t, ok := args[tp]
		if !ok {
			return nil, violation(diag.CallTypeArgumentKeys, "type parameter %d of symbol %d has no argument", tp, sig.Symbol())
		}
		if t == types.NoTypeID {
			return nil, violation(diag.CallNilComponent, "type parameter %d inferred to no type", tp)
		}
	}
	return &TypeArgumentMapping{
		token:     tok,
		inference: InferenceSucceeded,
		keys:      declared,
		values:    maps.Clone(args),
	}, nil
}

// FailedTypeArguments records that inference failed for sig. For a
// non-generic sig there was nothing to infer and the result is NotApplicable.
func FailedTypeArguments(tok *lifetime.Token, sig symbols.Signature) *TypeArgumentMapping {
	if sig != nil && len(sig.TypeParameters()) > 0 {
		return &TypeArgumentMapping{token: tok, inference: InferenceFailed}
	}
	return NoTypeArguments(tok)
}

// NoTypeArguments is the mapping of a non-generic signature.
func NoTypeArguments(tok *lifetime.Token) *TypeArgumentMapping {
	return &TypeArgumentMapping{token: tok, inference: InferenceNotApplicable}
}

func (m *TypeArgumentMapping) Token() *lifetime.Token { return m.token }
func (m *TypeArgumentMapping) Inference() Inference   { return lifetime.Valid(m, m.inference) }
func (m *TypeArgumentMapping) Len() int               { return lifetime.Valid(m, len(m.keys)) }

// Keys returns the type parameters in declaration order.
func (m *TypeArgumentMapping) Keys() []symbols.SymbolID {
	return lifetime.Valid(m, slices.Clone(m.keys))
}

// Lookup returns the type inferred for tp.
func (m *TypeArgumentMapping) Lookup(tp symbols.SymbolID) (types.TypeID, bool) {
	lifetime.Assert(m)
	t, ok := m.values[tp]
	return t, ok
}

// All iterates type parameters in declaration order with their types.
func (m *TypeArgumentMapping) All() iter.Seq2[symbols.SymbolID, types.TypeID] {
	return func(yield func(symbols.SymbolID, types.TypeID) bool) {
		lifetime.Assert(m)
		for _, k := range m.keys {
			lifetime.Assert(m)
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// matches reports whether m can describe a call to sig.
func (m *TypeArgumentMapping) matches(sig symbols.Signature) error {
	declared := sig.TypeParameters()
	switch m.inference {
	case InferenceNotApplicable:
		if len(declared) != 0 {
			return violation(diag.CallTypeArgumentKeys, "symbol %d is generic; record success or failure of inference", sig.Symbol())
		}
	case InferenceFailed:
		if len(declared) == 0 {
			return violation(diag.CallTypeArgumentKeys, "symbol %d is not generic", sig.Symbol())
		}
	case InferenceSucceeded:
		if !slices.Equal(m.keys, declared) {
			return violation(diag.CallTypeArgumentKeys, "type arguments were inferred for another signature than symbol %d", sig.Symbol())
		}
	default:
		return violation(diag.CallUnknownKind, "unknown inference state %d", m.inference)
	}
	return nil
}
