package calls

import (
	"callmodel/internal/ast"
	"callmodel/internal/diag"
	"callmodel/internal/lifetime"
	"callmodel/internal/symbols"
)

// CompoundShape tells which CompoundOperation variant applies.
type CompoundShape uint8

const (
	ShapeAssign CompoundShape = iota + 1
	ShapeIncDec
)

func (s CompoundShape) String() string {
	switch s {
	case ShapeAssign:
		return "op-assign"
	case ShapeIncDec:
		return "inc-dec"
	default:
		return "unknown"
	}
}

// AssignKind is the arithmetic behind an operator assignment.
type AssignKind uint8

const (
	AssignPlus AssignKind = iota + 1
	AssignMinus
	AssignTimes
	AssignDiv
	AssignRem
)

func (k AssignKind) String() string {
	switch k {
	case AssignPlus:
		return "PLUS"
	case AssignMinus:
		return "MINUS"
	case AssignTimes:
		return "TIMES"
	case AssignDiv:
		return "DIV"
	case AssignRem:
		return "REM"
	default:
		return "UNKNOWN"
	}
}

// OperatorName is the conventional name of the binary operator function.
func (k AssignKind) OperatorName() string {
	switch k {
	case AssignPlus:
		return "plus"
	case AssignMinus:
		return "minus"
	case AssignTimes:
		return "times"
	case AssignDiv:
		return "div"
	case AssignRem:
		return "rem"
	default:
		return ""
	}
}

// AssignOperatorName is the name of a dedicated in-place operator, e.g. plusAssign.
func (k AssignKind) AssignOperatorName() string {
	if name := k.OperatorName(); name != "" {
		return name + "Assign"
	}
	return ""
}

// IncDecKind is the direction of ++/--.
type IncDecKind uint8

const (
	Inc IncDecKind = iota + 1
	Dec
)

func (k IncDecKind) String() string {
	switch k {
	case Inc:
		return "INC"
	case Dec:
		return "DEC"
	default:
		return "UNKNOWN"
	}
}

// OperatorName is the conventional name of the unary operator function.
func (k IncDecKind) OperatorName() string {
	switch k {
	case Inc:
		return "inc"
	case Dec:
		return "dec"
	default:
		return ""
	}
}

// Precedence tells whether ++/-- was written before or after the operand.
type Precedence uint8

const (
	Prefix Precedence = iota + 1
	Postfix
)

func (p Precedence) String() string {
	switch p {
	case Prefix:
		return "PREFIX"
	case Postfix:
		return "POSTFIX"
	default:
		return "UNKNOWN"
	}
}

// CompoundOperation is the arithmetic step synthesized for `x op= y` or `x++`.
type CompoundOperation interface {
	lifetime.Owner
	Shape() CompoundShape
	// Operation is the operator function, e.g. Int.plus or Int.inc.
	Operation() *FunctionSymbol
	isCompoundOperation()
}

// CompoundAssign is `target op= operand`.
type CompoundAssign struct {
	kind      AssignKind
	operand   ast.ExprID
	operation *FunctionSymbol
}

// NewCompoundAssign builds the operator-assignment step.
func NewCompoundAssign(kind AssignKind, operand ast.ExprID, operation *FunctionSymbol) (*CompoundAssign, error) {
	if kind.OperatorName() == "" {
		return nil, violation(diag.CallUnknownKind, "unknown assignment kind %d", kind)
	}
	if !operand.IsValid() {
		return nil, violation(diag.CallNilComponent, "operator assignment without operand")
	}
	if err := checkOperation(operation); err != nil {
		return nil, err
	}
	return &CompoundAssign{kind: kind, operand: operand, operation: operation}, nil
}

func (c *CompoundAssign) Token() *lifetime.Token     { return c.operation.Token() }
func (c *CompoundAssign) Shape() CompoundShape       { return lifetime.Valid(c, ShapeAssign) }
func (c *CompoundAssign) Kind() AssignKind           { return lifetime.Valid(c, c.kind) }
func (c *CompoundAssign) Operand() ast.ExprID        { return lifetime.Valid(c, c.operand) }
func (c *CompoundAssign) Operation() *FunctionSymbol { return lifetime.Valid(c, c.operation) }

func (*CompoundAssign) isCompoundOperation() {}

// CompoundIncDec is `++x`, `x++`, `--x` or `x--`.
type CompoundIncDec struct {
	kind       IncDecKind
	precedence Precedence
	operation  *FunctionSymbol
}

// NewCompoundIncDec builds the increment/decrement step.
func NewCompoundIncDec(kind IncDecKind, precedence Precedence, operation *FunctionSymbol) (*CompoundIncDec, error) {
	if kind.OperatorName() == "" {
		return nil, violation(diag.CallUnknownKind, "unknown inc/dec kind %d", kind)
	}
	if precedence != Prefix && precedence != Postfix {
		return nil, violation(diag.CallUnknownKind, "unknown precedence %d", precedence)
	}
	if err := checkOperation(operation); err != nil {
		return nil, err
	}
	return &CompoundIncDec{kind: kind, precedence: precedence, operation: operation}, nil
}

func (c *CompoundIncDec) Token() *lifetime.Token     { return c.operation.Token() }
func (c *CompoundIncDec) Shape() CompoundShape       { return lifetime.Valid(c, ShapeIncDec) }
func (c *CompoundIncDec) Kind() IncDecKind           { return lifetime.Valid(c, c.kind) }
func (c *CompoundIncDec) Precedence() Precedence     { return lifetime.Valid(c, c.precedence) }
func (c *CompoundIncDec) Operation() *FunctionSymbol { return lifetime.Valid(c, c.operation) }

func (*CompoundIncDec) isCompoundOperation() {}

func checkOperation(op *FunctionSymbol) error {
	if op == nil {
		return violation(diag.CallNilComponent, "compound operation without operator function")
	}
	if err := op.Token().AssertLive(); err != nil {
		return err
	}
	sig := op.Signature()
	if sig.SymbolKind() != symbols.SymbolFunction || sig.SymbolFlags()&symbols.SymbolFlagOperator == 0 {
		return violation(diag.CallNonOperator, "symbol %d is not an operator function", sig.Symbol())
	}
	return nil
}
