package fixture

import (
	"errors"
	"fmt"

	"callmodel/internal/ast"
	"callmodel/internal/calls"
	"callmodel/internal/diag"
	"callmodel/internal/lifetime"
	"callmodel/internal/session"
	"callmodel/internal/symbols"
	"callmodel/internal/types"
)

// ErrUnresolved is returned when no declaration fits an expression.
var ErrUnresolved = errors.New("unresolved reference")

// Arg is one call argument. Param names the parameter for a named argument
// and is empty for a positional one. Type feeds type-argument inference.
type Arg struct {
	Expr  ast.ExprID
	Param string
	Type  types.TypeID
}

// Step is the arithmetic of a compound access: AssignStep or IncDecStep.
type Step interface{ isStep() }

// AssignStep is `op= Operand`.
type AssignStep struct {
	Kind    calls.AssignKind
	Operand Arg
}

// IncDecStep is ++ or --.
type IncDecStep struct {
	Kind       calls.IncDecKind
	Precedence calls.Precedence
}

func (AssignStep) isStep() {}
func (IncDecStep) isStep() {}

// Resolver resolves expressions over a World and records the calls in a session.
// When an expression desugars into several calls, the outer call is recorded
// first, so a rejected expression leaves no receiver calls behind.
type Resolver struct {
	w *World
	s *session.Session
}

func NewResolver(w *World, s *session.Session) *Resolver {
	return &Resolver{w: w, s: s}
}

func (r *Resolver) World() *World              { return r.w }
func (r *Resolver) Session() *session.Session { return r.s }

// Read resolves a read of variable v written as expr.
func (r *Resolver) Read(expr ast.ExprID, v symbols.SymbolID) (calls.Call, error) {
	return r.s.Resolve(expr, func(tok *lifetime.Token) (calls.Call, error) {
		return r.access(tok, v, calls.VariableRead{})
	})
}

// Write resolves `v = value` written as expr.
func (r *Resolver) Write(expr ast.ExprID, v symbols.SymbolID, value ast.ExprID) (calls.Call, error) {
	return r.s.Resolve(expr, func(tok *lifetime.Token) (calls.Call, error) {
		return r.access(tok, v, calls.VariableWrite{Value: value})
	})
}

func (r *Resolver) access(tok *lifetime.Token, v symbols.SymbolID, access calls.VariableAccess) (calls.Call, error) {
	pas, err := r.variable(tok, v)
	if err != nil {
		return nil, err
	}
	return calls.NewSimpleVariableAccessCall(pas, calls.NoTypeArguments(tok), access)
}

// Call resolves a call of a top-level function or constructor.
func (r *Resolver) Call(expr ast.ExprID, fn symbols.SymbolID, args ...Arg) (calls.Call, error) {
	return r.s.Resolve(expr, func(tok *lifetime.Token) (calls.Call, error) {
		return r.functionCall(tok, fn, nil, args, false)
	})
}

// CallMember resolves `recv.name(args)` where recv has type recvType.
func (r *Resolver) CallMember(expr, recv ast.ExprID, recvType types.TypeID, name string, args ...Arg) (calls.Call, error) {
	fn, ok := r.w.Member(recvType, name)
	if !ok {
		return nil, r.unresolved(expr, name, recvType)
	}
	return r.s.Resolve(expr, func(tok *lifetime.Token) (calls.Call, error) {
		return r.functionCall(tok, fn, calls.NewExprReceiver(tok, recv, recvType), args, false)
	})
}

// Invoke resolves `callee(args)` where callee is a variable whose type has an
// invoke operator. The callee itself is recorded as a read.
func (r *Resolver) Invoke(expr, callee ast.ExprID, v symbols.SymbolID, args ...Arg) (calls.Call, error) {
	calleeType := r.w.TypeOf(v)
	invoke, ok := r.w.Operator(calleeType, "invoke")
	if !ok {
		return nil, r.unresolved(expr, "invoke", calleeType)
	}
	if _, err := r.Read(callee, v); err != nil {
		return nil, err
	}
	return r.s.Resolve(expr, func(tok *lifetime.Token) (calls.Call, error) {
		return r.functionCall(tok, invoke, calls.NewExprReceiver(tok, callee, calleeType), args, true)
	})
}

// Annotate resolves an annotation use of the annotation class constructor ctor.
func (r *Resolver) Annotate(expr ast.ExprID, ctor symbols.SymbolID, args ...Arg) (calls.Call, error) {
	return r.s.Resolve(expr, func(tok *lifetime.Token) (calls.Call, error) {
		pas, err := r.function(tok, ctor, nil)
		if err != nil {
			return nil, err
		}
		mapping, err := r.mapArgs(tok, pas.Signature(), args)
		if err != nil {
			return nil, err
		}
		return calls.NewAnnotationCall(pas, mapping)
	})
}

// Delegate resolves `super(args)` or `this(args)` in a constructor.
func (r *Resolver) Delegate(expr ast.ExprID, ctor symbols.SymbolID, kind calls.DelegationKind, args ...Arg) (calls.Call, error) {
	return r.s.Resolve(expr, func(tok *lifetime.Token) (calls.Call, error) {
		pas, err := r.function(tok, ctor, nil)
		if err != nil {
			return nil, err
		}
		mapping, err := r.mapArgs(tok, pas.Signature(), args)
		if err != nil {
			return nil, err
		}
		typeArgs, err := r.inferTypeArgs(tok, pas.Signature(), mapping, args)
		if err != nil {
			return nil, err
		}
		return calls.NewDelegatedConstructorCall(pas, kind, mapping, typeArgs)
	})
}

// Compound resolves `target op= operand`, `target++` or `++target` where
// target is the variable v. A dedicated in-place operator on v's type wins and
// yields a plain function call dispatched on a read of target; otherwise the
// read-modify-write is a CompoundVariableAccessCall.
func (r *Resolver) Compound(expr, target ast.ExprID, v symbols.SymbolID, step Step) (calls.Call, error) {
	varType := r.w.TypeOf(v)
	if assign, ok := step.(AssignStep); ok {
		if inPlace, found := r.w.Operator(varType, assign.Kind.AssignOperatorName()); found {
			call, err := r.s.Resolve(expr, func(tok *lifetime.Token) (calls.Call, error) {
				return r.functionCall(tok, inPlace, calls.NewExprReceiver(tok, target, varType), []Arg{assign.Operand}, false)
			})
			if err != nil {
				return nil, err
			}
			if _, err := r.Read(target, v); err != nil {
				return nil, err
			}
			return call, nil
		}
	}
	opFn, err := r.stepOperator(expr, varType, step)
	if err != nil {
		return nil, err
	}
	return r.s.Resolve(expr, func(tok *lifetime.Token) (calls.Call, error) {
		variable, err := r.variable(tok, v)
		if err != nil {
			return nil, err
		}
		op, err := r.compoundOperation(tok, opFn, calls.NewExprReceiver(tok, target, varType), step)
		if err != nil {
			return nil, err
		}
		return calls.NewCompoundVariableAccessCall(variable, op)
	})
}

// IndexedCompound resolves `container[indices] op= operand` or
// `container[indices]++`, written as expr with indexed the `container[indices]`
// part. When get yields a value with its own in-place operator, the result is
// a chain of function calls: get at indexed, then the in-place operator at
// expr. Otherwise get and set pair into a CompoundArrayAccessCall.
func (r *Resolver) IndexedCompound(expr, indexed, container ast.ExprID, cv symbols.SymbolID, indices []Arg, step Step) (calls.Call, error) {
	containerType := r.w.TypeOf(cv)
	get, ok := r.w.Operator(containerType, "get")
	if !ok {
		return nil, r.unresolved(indexed, "get", containerType)
	}
	elemType := r.w.TypeOf(get)

	if assign, isAssign := step.(AssignStep); isAssign {
		if inPlace, found := r.w.Operator(elemType, assign.Kind.AssignOperatorName()); found {
			call, err := r.s.Resolve(expr, func(tok *lifetime.Token) (calls.Call, error) {
				return r.functionCall(tok, inPlace, calls.NewExprReceiver(tok, indexed, elemType), []Arg{assign.Operand}, false)
			})
			if err != nil {
				return nil, err
			}
			if _, err := r.Read(container, cv); err != nil {
				return nil, err
			}
			if _, err := r.s.Resolve(indexed, func(tok *lifetime.Token) (calls.Call, error) {
				return r.functionCall(tok, get, calls.NewExprReceiver(tok, container, containerType), indices, false)
			}); err != nil {
				return nil, err
			}
			return call, nil
		}
	}

	set, ok := r.w.Operator(containerType, "set")
	if !ok {
		return nil, r.unresolved(indexed, "set", containerType)
	}
	opFn, err := r.stepOperator(expr, elemType, step)
	if err != nil {
		return nil, err
	}
	if _, err := r.Read(container, cv); err != nil {
		return nil, err
	}
	return r.s.Resolve(expr, func(tok *lifetime.Token) (calls.Call, error) {
		getSym, err := r.function(tok, get, calls.NewExprReceiver(tok, container, containerType))
		if err != nil {
			return nil, err
		}
		setSym, err := r.function(tok, set, calls.NewExprReceiver(tok, container, containerType))
		if err != nil {
			return nil, err
		}
		op, err := r.compoundOperation(tok, opFn, calls.NewExprReceiver(tok, indexed, elemType), step)
		if err != nil {
			return nil, err
		}
		exprs := make([]ast.ExprID, len(indices))
		for i, a := range indices {
			exprs[i] = a.Expr
		}
		return calls.NewCompoundArrayAccessCall(op, exprs, getSym, setSym)
	})
}

func (r *Resolver) stepOperator(expr ast.ExprID, operand types.TypeID, step Step) (symbols.SymbolID, error) {
	var name string
	switch s := step.(type) {
	case AssignStep:
		name = s.Kind.OperatorName()
	case IncDecStep:
		name = s.Kind.OperatorName()
	default:
		return symbols.NoSymbolID, fmt.Errorf("fixture: unknown step %T", step)
	}
	fn, ok := r.w.Operator(operand, name)
	if !ok {
		return symbols.NoSymbolID, r.unresolved(expr, name, operand)
	}
	return fn, nil
}

func (r *Resolver) compoundOperation(tok *lifetime.Token, fn symbols.SymbolID, recv calls.Receiver, step Step) (calls.CompoundOperation, error) {
	pas, err := r.function(tok, fn, recv)
	if err != nil {
		return nil, err
	}
	switch s := step.(type) {
	case AssignStep:
		return calls.NewCompoundAssign(s.Kind, s.Operand.Expr, pas)
	case IncDecStep:
		return calls.NewCompoundIncDec(s.Kind, s.Precedence, pas)
	}
	return nil, fmt.Errorf("fixture: unknown step %T", step)
}

func (r *Resolver) functionCall(tok *lifetime.Token, fn symbols.SymbolID, recv calls.Receiver, args []Arg, implicitInvoke bool) (calls.Call, error) {
	pas, err := r.function(tok, fn, recv)
	if err != nil {
		return nil, err
	}
	mapping, err := r.mapArgs(tok, pas.Signature(), args)
	if err != nil {
		return nil, err
	}
	typeArgs, err := r.inferTypeArgs(tok, pas.Signature(), mapping, args)
	if err != nil {
		return nil, err
	}
	return calls.NewSimpleFunctionCall(pas, mapping, typeArgs, implicitInvoke)
}

// function binds fn to recv in the role its declaration asks for.
func (r *Resolver) function(tok *lifetime.Token, fn symbols.SymbolID, recv calls.Receiver) (*calls.FunctionSymbol, error) {
	sig, err := r.w.Table.FunctionSignatureOf(fn)
	if err != nil {
		return nil, err
	}
	dispatch, extension := r.receiverRoles(sig.SymbolFlags(), recv)
	return calls.NewPartiallyApplied(tok, sig, dispatch, extension)
}

// variable binds v; members get the implicit receiver of their class.
func (r *Resolver) variable(tok *lifetime.Token, v symbols.SymbolID) (*calls.VariableSymbol, error) {
	sig, err := r.w.Table.VariableSignatureOf(v)
	if err != nil {
		return nil, err
	}
	var recv calls.Receiver
	if sig.SymbolFlags()&symbols.SymbolFlagMember != 0 {
		owner := r.w.Table.Get(v).Owner
		recv = calls.NewImplicitReceiver(tok, owner, sig.ReceiverType())
	}
	dispatch, extension := r.receiverRoles(sig.SymbolFlags(), recv)
	return calls.NewPartiallyApplied(tok, sig, dispatch, extension)
}

func (r *Resolver) receiverRoles(flags symbols.SymbolFlags, recv calls.Receiver) (dispatch, extension calls.Receiver) {
	if flags&symbols.SymbolFlagExtension != 0 {
		return nil, recv
	}
	return recv, nil
}

func (r *Resolver) mapArgs(tok *lifetime.Token, sig *symbols.FunctionSignature, args []Arg) (*calls.ArgumentMapping, error) {
	params := sig.ValueParameters()
	b := calls.NewArgumentMapping(tok, sig)
	for i, a := range args {
		p, err := r.paramFor(sig, params, i, a)
		if err != nil {
			return nil, err
		}
		b.Add(a.Expr, p)
	}
	return b.Build()
}

func (r *Resolver) paramFor(sig *symbols.FunctionSignature, params []*symbols.VariableSignature, i int, a Arg) (*symbols.VariableSignature, error) {
	if a.Param != "" {
		for _, p := range params {
			if r.w.Table.Name(p.Symbol()) == a.Param {
				return p, nil
			}
		}
	} else {
		switch {
		case i < len(params):
			return params[i], nil
		case len(params) > 0 && params[len(params)-1].IsVararg():
			return params[len(params)-1], nil
		}
	}
	return nil, &calls.InvariantError{
		Code:    diag.CallUnknownParameter,
		Message: fmt.Sprintf("no parameter of %s for argument %d", r.w.Table.QualifiedName(sig.Symbol()), i),
	}
}

// inferTypeArgs binds each type parameter to the type of the first argument
// passed to a parameter declared with exactly that type parameter.
func (r *Resolver) inferTypeArgs(tok *lifetime.Token, sig *symbols.FunctionSignature, mapping *calls.ArgumentMapping, args []Arg) (*calls.TypeArgumentMapping, error) {
	declared := sig.TypeParameters()
	if len(declared) == 0 {
		return calls.NoTypeArguments(tok), nil
	}
	argTypes := make(map[ast.ExprID]types.TypeID, len(args))
	for _, a := range args {
		argTypes[a.Expr] = a.Type
	}
	inferred := make(map[symbols.SymbolID]types.TypeID, len(declared))
	for _, tp := range declared {
		tpType := r.w.TypeOf(tp)
		for arg, p := range mapping.All() {
			if p.ReturnType() == tpType && argTypes[arg] != types.NoTypeID {
				inferred[tp] = argTypes[arg]
				break
			}
		}
		if _, ok := inferred[tp]; !ok {
			return calls.FailedTypeArguments(tok, sig), nil
		}
	}
	return calls.InferredTypeArguments(tok, sig, inferred)
}

// unresolved reports a failed lookup through the session and returns it.
func (r *Resolver) unresolved(expr ast.ExprID, name string, recv types.TypeID) error {
	err := fmt.Errorf("%w: %s on %s at %q", ErrUnresolved, name, r.w.Table.Types.Format(recv), r.w.Exprs.Text(expr))
	_, err = r.s.Resolve(expr, func(*lifetime.Token) (calls.Call, error) { return nil, err })
	return err
}
