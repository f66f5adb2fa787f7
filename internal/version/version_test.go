package version

import (
	"strings"
	"testing"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Fatal("Version should have a default value")
	}
	if Current() != Version {
		t.Fatalf("Current() = %q, want %q", Current(), Version)
	}
}

func TestVersion_BlankFallsBackToDev(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "  "
	if got := Current(); got != "dev" {
		t.Fatalf("Current() = %q, want dev", got)
	}
	if got := Pretty(true); got != "dev" {
		t.Fatalf("Pretty() = %q, want dev", got)
	}
}

func TestVersion_Pretty(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "1.2.3-rc1"
	if got := Pretty(false); got != "1.2.3-rc1" {
		t.Fatalf("plain = %q", got)
	}
	colored := Pretty(true)
	if !strings.Contains(colored, "\x1b[") || !strings.HasSuffix(colored, "-rc1") {
		t.Fatalf("colored = %q", colored)
	}
}

func TestVersion_PrettyKeepsBuildMetadata(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "2.0.1+g1a2b3c"
	if got := Pretty(false); got != "2.0.1+g1a2b3c" {
		t.Fatalf("plain = %q", got)
	}
	Version = "nightly"
	if got := Pretty(true); got != "nightly" {
		t.Fatalf("non-semver = %q", got)
	}
}
