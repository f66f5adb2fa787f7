package symbols

import (
	"fmt"
	"slices"

	"callmodel/internal/types"
)

// Signature is a symbol specialized for a particular use site: receiver,
// parameter and return types are already substituted.
type Signature interface {
	Symbol() SymbolID
	SymbolKind() SymbolKind
	SymbolFlags() SymbolFlags
	ReturnType() types.TypeID
	ReceiverType() types.TypeID
	TypeParameters() []SymbolID
	SameAs(other Signature) bool
}

// VariableSignature describes a variable or value parameter at a use site.
type VariableSignature struct {
	symbol       SymbolID
	kind         SymbolKind
	flags        SymbolFlags
	returnType   types.TypeID
	receiverType types.TypeID
}

// NewVariableSignature specializes a variable-like symbol.
func NewVariableSignature(sym SymbolID, sd *Symbol, returnType, receiverType types.TypeID) *VariableSignature {
	return &VariableSignature{
		symbol:       sym,
		kind:         sd.Kind,
		flags:        sd.Flags,
		returnType:   returnType,
		receiverType: receiverType,
	}
}

func (s *VariableSignature) Symbol() SymbolID           { return s.symbol }
func (s *VariableSignature) SymbolKind() SymbolKind     { return s.kind }
func (s *VariableSignature) SymbolFlags() SymbolFlags   { return s.flags }
func (s *VariableSignature) ReturnType() types.TypeID   { return s.returnType }
func (s *VariableSignature) ReceiverType() types.TypeID { return s.receiverType }

// TypeParameters is always empty for variables in this model.
func (s *VariableSignature) TypeParameters() []SymbolID { return nil }

// IsVararg reports whether the parameter accepts several arguments.
func (s *VariableSignature) IsVararg() bool { return s.flags&SymbolFlagVararg != 0 }

func (s *VariableSignature) SameAs(other Signature) bool {
	o, ok := other.(*VariableSignature)
	if !ok || s == nil || o == nil {
		return ok && s == o
	}
	return *s == *o
}

// FunctionSignature describes a function or constructor at a use site.
type FunctionSignature struct {
	symbol       SymbolID
	kind         SymbolKind
	flags        SymbolFlags
	returnType   types.TypeID
	receiverType types.TypeID
	typeParams   []SymbolID
	params       []*VariableSignature
}

// NewFunctionSignature specializes a function-like symbol. params must be in
// declaration order.
func NewFunctionSignature(sym SymbolID, sd *Symbol, returnType, receiverType types.TypeID, params []*VariableSignature) *FunctionSignature {
	return &FunctionSignature{
		symbol:       sym,
		kind:         sd.Kind,
		flags:        sd.Flags,
		returnType:   returnType,
		receiverType: receiverType,
		typeParams:   slices.Clone(sd.TypeParams),
		params:       slices.Clone(params),
	}
}

func (s *FunctionSignature) Symbol() SymbolID           { return s.symbol }
func (s *FunctionSignature) SymbolKind() SymbolKind     { return s.kind }
func (s *FunctionSignature) SymbolFlags() SymbolFlags   { return s.flags }
func (s *FunctionSignature) ReturnType() types.TypeID   { return s.returnType }
func (s *FunctionSignature) ReceiverType() types.TypeID { return s.receiverType }

// TypeParameters returns a copy of the declared type parameters.
func (s *FunctionSignature) TypeParameters() []SymbolID { return slices.Clone(s.typeParams) }

// ValueParameters returns a copy of the parameter signatures.
func (s *FunctionSignature) ValueParameters() []*VariableSignature { return slices.Clone(s.params) }

func (s *FunctionSignature) SameAs(other Signature) bool {
	o, ok := other.(*FunctionSignature)
	if !ok || s == nil || o == nil {
		return ok && s == o
	}
	if s.symbol != o.symbol || s.kind != o.kind || s.flags != o.flags ||
		s.returnType != o.returnType || s.receiverType != o.receiverType ||
		!slices.Equal(s.typeParams, o.typeParams) || len(s.params) != len(o.params) {
		return false
	}
	for i := range s.params {
		if !s.params[i].SameAs(o.params[i]) {
			return false
		}
	}
	return true
}

// FunctionSignatureOf returns the declared, unsubstituted signature of fn.
func (t *Table) FunctionSignatureOf(fn SymbolID) (*FunctionSignature, error) {
	sd := t.Get(fn)
	if sd == nil || !sd.Kind.IsFunctionLike() {
		return nil, fmt.Errorf("symbol %d is not function-like", fn)
	}
	params := make([]*VariableSignature, 0, len(sd.Params))
	for _, p := range sd.Params {
		ps, err := t.VariableSignatureOf(p)
		if err != nil {
			return nil, fmt.Errorf("parameter of %s: %w", t.Name(fn), err)
		}
		params = append(params, ps)
	}
	return NewFunctionSignature(fn, sd, sd.Type, sd.Receiver, params), nil
}

// VariableSignatureOf returns the declared signature of a variable or parameter.
func (t *Table) VariableSignatureOf(v SymbolID) (*VariableSignature, error) {
	sd := t.Get(v)
	if sd == nil || !sd.Kind.IsVariableLike() {
		return nil, fmt.Errorf("symbol %d is not variable-like", v)
	}
	return NewVariableSignature(v, sd, sd.Type, sd.Receiver), nil
}
