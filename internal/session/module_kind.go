package session

import (
	"errors"
	"fmt"
	"strings"
)

// ModuleKind is the kind of module a session resolves calls in.
type ModuleKind uint8

const (
	ModuleSource ModuleKind = iota + 1
	ModuleLibraryBinary
	ModuleLibrarySource
	ModuleScript
)

func (k ModuleKind) String() string {
	switch k {
	case ModuleSource:
		return "Source"
	case ModuleLibraryBinary:
		return "LibraryBinary"
	case ModuleLibrarySource:
		return "LibrarySource"
	case ModuleScript:
		return "ScriptSource"
	default:
		return "Unknown"
	}
}

// ErrModuleKindClash is returned when a module names more than one kind.
var ErrModuleKindClash = errors.New("a module may only specify one MODULE_KIND")

// ParseModuleKind converts a MODULE_KIND directive value.
func ParseModuleKind(s string) (ModuleKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "source":
		return ModuleSource, nil
	case "librarybinary":
		return ModuleLibraryBinary, nil
	case "librarysource":
		return ModuleLibrarySource, nil
	case "scriptsource", "script":
		return ModuleScript, nil
	default:
		return 0, fmt.Errorf("unknown module kind %q (expected: Source|LibraryBinary|LibrarySource|ScriptSource)", s)
	}
}

// ModuleKindFromDirectives picks the module kind from the MODULE_KIND
// directives of one module. No directive yields def.
func ModuleKindFromDirectives(directives []string, def ModuleKind) (ModuleKind, error) {
	switch len(directives) {
	case 0:
		return def, nil
	case 1:
		return ParseModuleKind(directives[0])
	default:
		return 0, fmt.Errorf("%w: got %s", ErrModuleKindClash, strings.Join(directives, ", "))
	}
}
