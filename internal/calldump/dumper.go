// Package calldump renders resolved calls as indented text and as msgpack
// records. Every value is read through the guarded accessors, so dumping a
// call of a closed session fails with lifetime.ErrStale.
package calldump

import (
	"fmt"
	"strings"

	"callmodel/internal/ast"
	"callmodel/internal/calls"
	"callmodel/internal/lifetime"
	"callmodel/internal/symbols"
	"callmodel/internal/types"
)

// Dumper names symbols, types and expressions of one world.
type Dumper struct {
	table *symbols.Table
	exprs *ast.Exprs
}

func New(table *symbols.Table, exprs *ast.Exprs) *Dumper {
	return &Dumper{table: table, exprs: exprs}
}

// node is one line of a dump: "key = value" or "key:" followed by children.
type node struct {
	key      string
	value    string
	children []node
}

func leaf(key, value string) node { return node{key: key, value: value} }

func branch(key string, children ...node) node { return node{key: key, children: children} }

// tree builds the dump tree of call. The root key is the variant name.
func (d *Dumper) tree(call calls.Call) (root node, err error) {
	defer lifetime.Recover(&err)
	if call == nil {
		return node{}, fmt.Errorf("calldump: nil call")
	}
	return calls.Accept[node](call, treeVisitor{d}), nil
}

type treeVisitor struct{ d *Dumper }

func (v treeVisitor) VisitSimpleFunctionCall(c *calls.SimpleFunctionCall) node {
	n := v.d.functionCall(c)
	n.children = append(n.children, leaf("isImplicitInvoke", fmt.Sprint(c.IsImplicitInvoke())))
	return n
}

func (v treeVisitor) VisitAnnotationCall(c *calls.AnnotationCall) node {
	return v.d.functionCall(c)
}

func (v treeVisitor) VisitDelegatedConstructorCall(c *calls.DelegatedConstructorCall) node {
	n := v.d.functionCall(c)
	n.children = append(n.children, leaf("kind", c.DelegationKind().String()))
	return n
}

func (v treeVisitor) VisitSimpleVariableAccessCall(c *calls.SimpleVariableAccessCall) node {
	access := branch("simpleAccess", leaf("kind", c.Access().AccessKind().String()))
	if w, ok := c.Access().(calls.VariableWrite); ok {
		access.children = append(access.children, leaf("value", v.d.expr(w.Value)))
	}
	return branch(c.Kind().String(),
		v.d.partiallyApplied("partiallyAppliedSymbol", c.PartiallyApplied()),
		v.d.typeArguments(c.TypeArguments()),
		access,
	)
}

func (v treeVisitor) VisitCompoundVariableAccessCall(c *calls.CompoundVariableAccessCall) node {
	return branch(c.Kind().String(),
		v.d.compound(c.CompoundOperation()),
		v.d.partiallyApplied("variablePartiallyAppliedSymbol", c.VariableSymbol()),
	)
}

func (v treeVisitor) VisitCompoundArrayAccessCall(c *calls.CompoundArrayAccessCall) node {
	indices := make([]string, 0)
	for _, idx := range c.IndexArguments() {
		indices = append(indices, v.d.expr(idx))
	}
	return branch(c.Kind().String(),
		v.d.compound(c.CompoundOperation()),
		leaf("indexArguments", "["+strings.Join(indices, ", ")+"]"),
		v.d.partiallyApplied("getPartiallyAppliedSymbol", c.GetSymbol()),
		v.d.partiallyApplied("setPartiallyAppliedSymbol", c.SetSymbol()),
	)
}

func (d *Dumper) functionCall(c calls.FunctionCall) node {
	return branch(c.Kind().String(),
		d.arguments(c.ArgumentMapping()),
		d.partiallyApplied("partiallyAppliedSymbol", c.PartiallyApplied()),
		d.typeArguments(c.TypeArguments()),
	)
}

func (d *Dumper) partiallyApplied(key string, p any) node {
	switch p := p.(type) {
	case *calls.FunctionSymbol:
		return d.partiallyAppliedOf(key, p.Signature(), p.DispatchReceiver(), p.ExtensionReceiver())
	case *calls.VariableSymbol:
		return d.partiallyAppliedOf(key, p.Signature(), p.DispatchReceiver(), p.ExtensionReceiver())
	}
	return leaf(key, "null")
}

func (d *Dumper) partiallyAppliedOf(key string, sig symbols.Signature, dispatch, extension calls.Receiver) node {
	return branch(key,
		leaf("dispatchReceiver", d.receiver(dispatch)),
		leaf("extensionReceiver", d.receiver(extension)),
		leaf("signature", d.signature(sig)),
	)
}

func (d *Dumper) arguments(m *calls.ArgumentMapping) node {
	n := branch("argumentMapping")
	for arg, p := range m.All() {
		n.children = append(n.children, leaf(d.expr(arg), d.signature(p)))
	}
	if len(n.children) == 0 {
		return leaf("argumentMapping", "{}")
	}
	return n
}

func (d *Dumper) typeArguments(m *calls.TypeArgumentMapping) node {
	n := branch("typeArgumentsMapping", leaf("inference", m.Inference().String()))
	for tp, t := range m.All() {
		n.children = append(n.children, leaf(d.table.Name(tp), d.typ(t)))
	}
	return n
}

func (d *Dumper) compound(op calls.CompoundOperation) node {
	switch op := op.(type) {
	case *calls.CompoundAssign:
		return branch("compoundOperation",
			leaf("shape", op.Shape().String()),
			leaf("kind", op.Kind().String()),
			leaf("operand", d.expr(op.Operand())),
			d.partiallyApplied("operationPartiallyAppliedSymbol", op.Operation()),
		)
	case *calls.CompoundIncDec:
		return branch("compoundOperation",
			leaf("shape", op.Shape().String()),
			leaf("kind", op.Kind().String()),
			leaf("precedence", op.Precedence().String()),
			d.partiallyApplied("operationPartiallyAppliedSymbol", op.Operation()),
		)
	}
	panic(fmt.Sprintf("calldump: unknown compound operation %T", op))
}

func (d *Dumper) receiver(r calls.Receiver) string {
	switch r := r.(type) {
	case nil:
		return "null"
	case *calls.ExprReceiver:
		return fmt.Sprintf("%s: %s", d.expr(r.Expr()), d.typ(r.Type()))
	case *calls.ImplicitReceiver:
		return fmt.Sprintf("this@%s: %s", d.table.Name(r.Symbol()), d.typ(r.Type()))
	case *calls.SmartCastReceiver:
		return fmt.Sprintf("(%s) as %s", d.receiver(r.Original()), d.typ(r.Type()))
	}
	return "<unknown receiver>"
}

// signature renders a declaration header, e.g. "fun Int.plus(other: Int): Int".
func (d *Dumper) signature(sig symbols.Signature) string {
	var sb strings.Builder
	switch sig := sig.(type) {
	case *symbols.FunctionSignature:
		name := d.table.Name(sig.Symbol())
		if sig.SymbolKind() == symbols.SymbolConstructor {
			sb.WriteString("constructor ")
			name = d.typ(sig.ReturnType())
		} else {
			sb.WriteString("fun ")
		}
		if tps := sig.TypeParameters(); len(tps) > 0 {
			names := make([]string, len(tps))
			for i, tp := range tps {
				names[i] = d.table.Name(tp)
			}
			sb.WriteString("<" + strings.Join(names, ", ") + "> ")
		}
		if recv := sig.ReceiverType(); recv != types.NoTypeID {
			sb.WriteString(d.typ(recv) + ".")
		}
		sb.WriteString(name + "(")
		for i, p := range sig.ValueParameters() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(d.signature(p))
		}
		sb.WriteString(")")
		if sig.SymbolKind() != symbols.SymbolConstructor {
			sb.WriteString(": " + d.typ(sig.ReturnType()))
		}
	case *symbols.VariableSignature:
		switch {
		case sig.SymbolKind() == symbols.SymbolValueParam && sig.IsVararg():
			sb.WriteString("vararg ")
		case sig.SymbolKind() == symbols.SymbolValueParam:
		case sig.SymbolFlags()&symbols.SymbolFlagMutable != 0:
			sb.WriteString("var ")
		default:
			sb.WriteString("val ")
		}
		if recv := sig.ReceiverType(); recv != types.NoTypeID {
			sb.WriteString(d.typ(recv) + ".")
		}
		sb.WriteString(d.table.Name(sig.Symbol()) + ": " + d.typ(sig.ReturnType()))
	}
	return sb.String()
}

func (d *Dumper) expr(id ast.ExprID) string {
	if !id.IsValid() {
		return "null"
	}
	return d.exprs.Text(id)
}

func (d *Dumper) typ(id types.TypeID) string {
	if id == types.NoTypeID {
		return "null"
	}
	return d.table.Types.Format(id)
}
