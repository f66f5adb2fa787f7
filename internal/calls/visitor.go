package calls

import "fmt"

// Visitor has one method per Call variant.
type Visitor[R any] interface {
	VisitSimpleFunctionCall(*SimpleFunctionCall) R
	VisitAnnotationCall(*AnnotationCall) R
	VisitDelegatedConstructorCall(*DelegatedConstructorCall) R
	VisitSimpleVariableAccessCall(*SimpleVariableAccessCall) R
	VisitCompoundVariableAccessCall(*CompoundVariableAccessCall) R
	VisitCompoundArrayAccessCall(*CompoundArrayAccessCall) R
}

// Accept dispatches c to the matching Visitor method. It panics on a nil or
// unknown variant, so a new variant cannot be silently skipped.
func Accept[R any](c Call, v Visitor[R]) R {
	switch c := c.(type) {
	case *SimpleFunctionCall:
		return v.VisitSimpleFunctionCall(c)
	case *AnnotationCall:
		return v.VisitAnnotationCall(c)
	case *DelegatedConstructorCall:
		return v.VisitDelegatedConstructorCall(c)
	case *SimpleVariableAccessCall:
		return v.VisitSimpleVariableAccessCall(c)
	case *CompoundVariableAccessCall:
		return v.VisitCompoundVariableAccessCall(c)
	case *CompoundArrayAccessCall:
		return v.VisitCompoundArrayAccessCall(c)
	default:
		panic(fmt.Sprintf("calls: unknown call variant %T", c))
	}
}
