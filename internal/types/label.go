package types

import (
	"strings"
)

// Format renders id the way declarations spell it, e.g. MutableMap<String, String>?.
func (in *Interner) Format(id TypeID) string {
	var sb strings.Builder
	in.format(&sb, id)
	return sb.String()
}

func (in *Interner) format(sb *strings.Builder, id TypeID) {
	tt, ok := in.Lookup(id)
	if !ok {
		sb.WriteString("<invalid>")
		return
	}
	switch tt.Kind {
	case KindUnit:
		sb.WriteString("Unit")
	case KindNothing:
		sb.WriteString("Nothing")
	case KindAny:
		sb.WriteString("Any")
	case KindBool:
		sb.WriteString("Boolean")
	case KindInt:
		sb.WriteString("Int")
	case KindString:
		sb.WriteString("String")
	case KindNullable:
		in.format(sb, tt.Elem)
		sb.WriteByte('?')
	case KindTypeParam:
		sb.WriteString(in.Strings.MustLookup(in.params[tt.Payload]))
	case KindNominal:
		info := in.nominals[tt.Payload]
		sb.WriteString(in.Strings.MustLookup(info.Name))
		if len(info.Args) > 0 {
			sb.WriteByte('<')
			for i, arg := range info.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				in.format(sb, arg)
			}
			sb.WriteByte('>')
		}
	case KindFn:
		info := in.fns[tt.Payload]
		sb.WriteByte('(')
		for i, p := range info.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			in.format(sb, p)
		}
		sb.WriteString(") -> ")
		in.format(sb, info.Result)
	default:
		sb.WriteString(tt.Kind.String())
	}
}
