package calls

import (
	"callmodel/internal/diag"
	"callmodel/internal/lifetime"
	"callmodel/internal/symbols"
)

type signature interface {
	comparable
	symbols.Signature
}

// PartiallyApplied is a resolved symbol bound to its receivers, before any
// argument is applied.
type PartiallyApplied[S signature] struct {
	token     *lifetime.Token
	signature S
	dispatch  Receiver
	extension Receiver
}

// FunctionSymbol is a partially applied function or constructor.
type FunctionSymbol = PartiallyApplied[*symbols.FunctionSignature]

// VariableSymbol is a partially applied variable or property.
type VariableSymbol = PartiallyApplied[*symbols.VariableSignature]

// NewPartiallyApplied binds sig to its receivers. dispatch is required for
// members and extension for extensions; neither may be given otherwise.
func NewPartiallyApplied[S signature](tok *lifetime.Token, sig S, dispatch, extension Receiver) (*PartiallyApplied[S], error) {
	if isNil(sig) {
		return nil, violation(diag.CallNilComponent, "partially applied symbol without signature")
	}
	if err := checkToken(tok, receivers(dispatch, extension)...); err != nil {
		return nil, err
	}
	flags := sig.SymbolFlags()
	if err := checkReceiver("dispatch", flags&symbols.SymbolFlagMember != 0, dispatch, sig); err != nil {
		return nil, err
	}
	if err := checkReceiver("extension", flags&symbols.SymbolFlagExtension != 0, extension, sig); err != nil {
		return nil, err
	}
	return &PartiallyApplied[S]{
		token:     tok,
		signature: sig,
		dispatch:  dispatch,
		extension: extension,
	}, nil
}

func checkReceiver(role string, required bool, r Receiver, sig symbols.Signature) error {
	switch {
	case required && r == nil:
		return violation(diag.CallMissingReceiver, "symbol %d requires a %s receiver", sig.Symbol(), role)
	case !required && r != nil:
		return violation(diag.CallUnexpectedReceiver, "symbol %d takes no %s receiver", sig.Symbol(), role)
	}
	return nil
}

func receivers(rs ...Receiver) []lifetime.Owner {
	out := make([]lifetime.Owner, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (p *PartiallyApplied[S]) Token() *lifetime.Token { return p.token }

// Signature returns the use-site signature.
func (p *PartiallyApplied[S]) Signature() S { return lifetime.Valid(p, p.signature) }

// Symbol returns the resolved declaration.
func (p *PartiallyApplied[S]) Symbol() symbols.SymbolID {
	return lifetime.Valid(p, p.signature.Symbol())
}

// DispatchReceiver returns the member receiver or nil.
func (p *PartiallyApplied[S]) DispatchReceiver() Receiver { return lifetime.Valid(p, p.dispatch) }

// ExtensionReceiver returns the extension receiver or nil.
func (p *PartiallyApplied[S]) ExtensionReceiver() Receiver { return lifetime.Valid(p, p.extension) }

// Equal compares symbol, signature and receivers structurally.
func (p *PartiallyApplied[S]) Equal(other *PartiallyApplied[S]) bool {
	lifetime.Assert(p)
	if other == nil {
		return false
	}
	lifetime.Assert(other)
	return p.signature.SameAs(other.signature) &&
		SameReceiver(p.dispatch, other.dispatch) &&
		SameReceiver(p.extension, other.extension)
}

// sameReceivers reports whether p and other are dispatched against the same values.
func (p *PartiallyApplied[S]) sameReceivers(other *PartiallyApplied[S]) bool {
	return SameReceiver(p.dispatch, other.dispatch) && SameReceiver(p.extension, other.extension)
}
