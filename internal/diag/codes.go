package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Call snapshot construction
	CallInfo                Code = 7000
	CallTokenMismatch       Code = 7001
	CallMissingReceiver     Code = 7002
	CallUnexpectedReceiver  Code = 7003
	CallWrongSymbolKind     Code = 7004
	CallTypeArgumentKeys    Code = 7005
	CallDuplicateArgument   Code = 7006
	CallNonVarargRepeated   Code = 7007
	CallUnknownParameter    Code = 7008
	CallReceiverMismatch    Code = 7009
	CallNonOperator         Code = 7010
	CallEmptyIndex          Code = 7011
	CallNilComponent        Code = 7012
	CallExprAlreadyResolved Code = 7013
	CallUnknownKind         Code = 7014

	// Session
	SessInfo            Code = 7500
	SessClosed          Code = 7501
	SessModuleKindClash Code = 7502
)

var (
	codeDescription = map[Code]string{
		UnknownCode:             "Unknown error",
		CallInfo:                "Call information",
		CallTokenMismatch:       "Snapshot parts belong to different sessions",
		CallMissingReceiver:     "Required receiver is absent",
		CallUnexpectedReceiver:  "Receiver given for a symbol that takes none",
		CallWrongSymbolKind:     "Symbol kind does not fit the call shape",
		CallTypeArgumentKeys:    "Type argument keys differ from declared type parameters",
		CallDuplicateArgument:   "Argument expression mapped twice",
		CallNonVarargRepeated:   "Non-vararg parameter receives several arguments",
		CallUnknownParameter:    "Argument mapped to a parameter of another signature",
		CallReceiverMismatch:    "Indexed get and set receivers disagree",
		CallNonOperator:         "Compound operation symbol is not an operator",
		CallEmptyIndex:          "Indexed access without index arguments",
		CallNilComponent:        "Required component is missing",
		CallExprAlreadyResolved: "Expression already has a resolved call",
		CallUnknownKind:         "Unknown enumeration value",
		SessInfo:                "Session information",
		SessClosed:              "Session already closed",
		SessModuleKindClash:     "Conflicting module kind directives",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 7000 && ic < 7500:
		return fmt.Sprintf("CALL%04d", ic)
	case ic >= 7500 && ic < 8000:
		return fmt.Sprintf("SESS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return c.ID()
}
