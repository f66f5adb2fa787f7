package trace

import "time"

// Kind is the type of a trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1 // span start
	KindSpanEnd                   // span end
	KindPoint                     // instant event
	KindError                     // rejected operation
	KindHeartbeat                 // periodic liveness signal
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindError:
		return "error"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeCommand Scope = iota + 1 // one CLI command
	ScopeSession                  // a resolution session from open to close
	ScopeResolve                  // resolution of one expression
	ScopeCall                     // parts of a resolved call
)

func (s Scope) String() string {
	switch s {
	case ScopeCommand:
		return "command"
	case ScopeSession:
		return "session"
	case ScopeResolve:
		return "resolve"
	case ScopeCall:
		return "call"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time     time.Time         // wall-clock timestamp
	Seq      uint64            // global sequence number
	Kind     Kind              // event kind
	Scope    Scope             // granularity
	SpanID   uint64            // span identifier, 0 for points outside spans
	ParentID uint64            // parent span, 0 if root
	GID      uint64            // goroutine id
	Name     string            // e.g. "session:main", "record"
	Detail   string            // optional message
	Extra    map[string]string // extensible key-value pairs
}
