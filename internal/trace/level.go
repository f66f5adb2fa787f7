package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota // no tracing
	LevelError               // only rejected constructions
	LevelPhase               // commands and session boundaries
	LevelDetail              // per-expression resolution
	LevelDebug               // everything including call internals
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelPhase:
		return "phase"
	case LevelDetail:
		return "detail"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "off":
		return LevelOff, nil
	case "error":
		return LevelError, nil
	case "phase":
		return LevelPhase, nil
	case "detail":
		return LevelDetail, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|phase|detail|debug)", s)
	}
}

// ShouldEmit reports whether events of scope pass this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelPhase:
		return scope <= ScopeSession
	case LevelDetail:
		return scope <= ScopeResolve
	case LevelDebug:
		return true
	}
	return false
}

// ShouldEmitEvent is ShouldEmit extended with the kinds that bypass scope
// filtering: heartbeats always, errors at every level but off.
func (l Level) ShouldEmitEvent(ev *Event) bool {
	switch {
	case l == LevelOff:
		return false
	case ev.Kind == KindHeartbeat, ev.Kind == KindError:
		return true
	}
	return l.ShouldEmit(ev.Scope)
}
